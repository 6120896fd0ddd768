package main

import "testing"

func TestScoreFromFactorsSingleFactorIsItsContribution(t *testing.T) {
	for _, value := range []float64{0, 25, 50, 73, 100} {
		factors := []ConfidenceFactor{
			{Label: "Category confidence", Polarity: "positive", Weight: weightCategoryConfidence, Contribution: value},
		}
		got := scoreFromFactors(factors)
		if got != int(value) {
			t.Fatalf("single factor %v: score=%d, want %d", value, got, int(value))
		}
	}
}

func TestScoreFromFactorsNoFactorsIsNeutral(t *testing.T) {
	if got := scoreFromFactors(nil); got != neutralScore {
		t.Fatalf("score=%d, want neutral %d", got, neutralScore)
	}
}

func TestScoreConfidenceCategoryAndDocumentation(t *testing.T) {
	rec := AnalysisRecord{
		IsRndCandidate:     true, // no rnd_confidence, so the R&D factor stays inactive
		CategoryConfidence: pct(90),
	}
	result := ScoreConfidence(rec)

	// (90*0.40 + 80*0.15) / 0.55 = 87.27 -> 87
	if result.Score != 87 {
		t.Fatalf("score=%d, want 87", result.Score)
	}
	if result.Level != ConfidenceHigh {
		t.Fatalf("level=%q, want %q", result.Level, ConfidenceHigh)
	}
	if len(result.Factors) != 2 {
		t.Fatalf("factors=%d, want 2", len(result.Factors))
	}
	if result.Factors[0].Label != "Category confidence 90%" {
		t.Fatalf("unexpected first factor label %q", result.Factors[0].Label)
	}
	if result.Factors[1].Label != "Documentation complete" {
		t.Fatalf("unexpected second factor label %q", result.Factors[1].Label)
	}
}

func TestScoreConfidenceAllFactorsWeightsSumToOne(t *testing.T) {
	rec := AnalysisRecord{
		CategoryConfidence:  pct(85),
		IsRndCandidate:      true,
		RndConfidence:       pct(70),
		DeductionConfidence: pct(60),
	}
	result := ScoreConfidence(rec)

	if len(result.Factors) != 4 {
		t.Fatalf("factors=%d, want 4", len(result.Factors))
	}
	var total float64
	for _, f := range result.Factors {
		total += f.Weight
	}
	if total < 0.999 || total > 1.001 {
		t.Fatalf("weights sum to %v, want 1.0", total)
	}

	// (85*0.40 + 70*0.25 + 60*0.20 + 80*0.15) / 1.0 = 75.5 -> 76
	if result.Score != 76 {
		t.Fatalf("score=%d, want 76", result.Score)
	}
	if result.Level != ConfidenceMedium {
		t.Fatalf("level=%q, want %q", result.Level, ConfidenceMedium)
	}
}

func TestScoreConfidenceDocumentationMissing(t *testing.T) {
	rec := AnalysisRecord{RequiresDocumentation: true}
	result := ScoreConfidence(rec)

	if len(result.Factors) != 1 {
		t.Fatalf("factors=%d, want 1", len(result.Factors))
	}
	f := result.Factors[0]
	if f.Label != "Documentation missing" || f.Polarity != "negative" {
		t.Fatalf("unexpected factor %+v", f)
	}
	if f.Contribution != negativeFactorDefault {
		t.Fatalf("contribution=%v, want %v", f.Contribution, negativeFactorDefault)
	}
	if result.Score != negativeFactorDefault {
		t.Fatalf("score=%d, want %d", result.Score, negativeFactorDefault)
	}
	if result.Level != ConfidenceLow {
		t.Fatalf("level=%q, want %q", result.Level, ConfidenceLow)
	}
}

func TestScoreConfidenceAlwaysInRange(t *testing.T) {
	records := []AnalysisRecord{
		{},
		{CategoryConfidence: pct(-20)},
		{CategoryConfidence: pct(150)},
		{CategoryConfidence: pct(0), DeductionConfidence: pct(0), RequiresDocumentation: true},
		{CategoryConfidence: pct(100), IsRndCandidate: true, RndConfidence: pct(100), DeductionConfidence: pct(100)},
	}
	for _, rec := range records {
		result := ScoreConfidence(rec)
		if result.Score < 0 || result.Score > 100 {
			t.Fatalf("score %d out of range for %+v", result.Score, rec)
		}
	}
}

func TestRndFactorInactiveWithoutConfidenceValue(t *testing.T) {
	rec := AnalysisRecord{IsRndCandidate: true, CategoryConfidence: pct(60)}
	result := ScoreConfidence(rec)
	for _, f := range result.Factors {
		if f.Weight == weightRndConfidence {
			t.Fatalf("R&D factor active without a confidence value: %+v", f)
		}
	}
}

func TestConfidenceLevelThresholds(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, ConfidenceHigh},
		{80, ConfidenceHigh},
		{79, ConfidenceMedium},
		{60, ConfidenceMedium},
		{59, ConfidenceLow},
		{0, ConfidenceLow},
	}
	for _, tt := range tests {
		if got := confidenceLevel(tt.score); got != tt.want {
			t.Fatalf("confidenceLevel(%d)=%q, want %q", tt.score, got, tt.want)
		}
	}
}
