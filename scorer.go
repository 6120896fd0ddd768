package main

import (
	"fmt"
	"math"
)

// Confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Factor weights. They sum to 1.0 when all four factors are active;
// inactive factors are excluded from the denominator, not zero-filled.
const (
	weightCategoryConfidence  = 0.40
	weightRndConfidence       = 0.25
	weightDeductionConfidence = 0.20
	weightDocumentation       = 0.15
)

// Default contributions for factors with no numeric confidence of their
// own, such as the boolean documentation check.
const (
	positiveFactorDefault = 80
	negativeFactorDefault = 30
)

const neutralScore = 50

// ConfidenceResult is the scorer output for one analysis record.
type ConfidenceResult struct {
	Score   int
	Level   string
	Factors []ConfidenceFactor
}

// ScoreConfidence derives a 0-100 confidence score, a level, and the list
// of contributing factors for one analysis record.
func ScoreConfidence(rec AnalysisRecord) ConfidenceResult {
	factors := buildConfidenceFactors(rec)
	score := scoreFromFactors(factors)
	return ConfidenceResult{
		Score:   score,
		Level:   confidenceLevel(score),
		Factors: factors,
	}
}

func buildConfidenceFactors(rec AnalysisRecord) []ConfidenceFactor {
	var factors []ConfidenceFactor

	if rec.CategoryConfidence.Valid {
		factors = append(factors, percentageFactor(
			"Category confidence", rec.CategoryConfidence.Float64, weightCategoryConfidence))
	}
	if rec.IsRndCandidate && rec.RndConfidence.Valid {
		factors = append(factors, percentageFactor(
			"R&D confidence", rec.RndConfidence.Float64, weightRndConfidence))
	}
	if rec.DeductionConfidence.Valid {
		factors = append(factors, percentageFactor(
			"Deduction confidence", rec.DeductionConfidence.Float64, weightDeductionConfidence))
	}

	// Documentation completeness is always scored.
	if rec.RequiresDocumentation {
		factors = append(factors, ConfidenceFactor{
			Label:        "Documentation missing",
			Polarity:     "negative",
			Weight:       weightDocumentation,
			Contribution: negativeFactorDefault,
		})
	} else {
		factors = append(factors, ConfidenceFactor{
			Label:        "Documentation complete",
			Polarity:     "positive",
			Weight:       weightDocumentation,
			Contribution: positiveFactorDefault,
		})
	}

	return factors
}

func percentageFactor(name string, value, weight float64) ConfidenceFactor {
	value = clampPercent(value)
	polarity := "positive"
	if value < 50 {
		polarity = "negative"
	}
	return ConfidenceFactor{
		Label:        fmt.Sprintf("%s %.0f%%", name, value),
		Polarity:     polarity,
		Weight:       weight,
		Contribution: value,
	}
}

// scoreFromFactors computes the weight-normalized average contribution.
// With a single factor the score equals that factor's contribution; with
// no factors at all it degrades to the neutral default.
func scoreFromFactors(factors []ConfidenceFactor) int {
	if len(factors) == 0 {
		return neutralScore
	}
	var weighted, totalWeight float64
	for _, f := range factors {
		weighted += f.Contribution * f.Weight
		totalWeight += f.Weight
	}
	if totalWeight == 0 {
		return neutralScore
	}
	score := int(math.Round(weighted / totalWeight))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func confidenceLevel(score int) string {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 60:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
