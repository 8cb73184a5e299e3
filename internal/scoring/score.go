package scoring

import (
	"math"
	"sort"

	"fieldpulse/pkg/contracts/domain"
)

// DefaultCredibilityK is the job volume at which an entity's own raw score
// fully replaces the population average.
const DefaultCredibilityK = 100

// NormalizeWeights re-normalizes a weight vector to sum to 1. A sum of zero
// or less falls back to treating the sum as 1, leaving the raw weights in
// place; this is a defined degenerate case, not an error.
func NormalizeWeights(w domain.Weights) domain.Weights {
	total := w.InRange + w.Set1d + w.ApptEq + w.Median
	if total <= 0 {
		total = 1
	}
	return domain.Weights{
		InRange: w.InRange / total,
		Set1d:   w.Set1d / total,
		ApptEq:  w.ApptEq / total,
		Median:  w.Median / total,
	}
}

// MedianDaysToScore maps a median delivery-to-completion day count onto the
// 0-100 sub-score curve:
//
//	<=1 day          100
//	(1,2]            100 down to 95
//	(2,5]            95 down to 80
//	(5,10]           80 down to 50
//	>10              max(0, 50 - 3*(days-10))
func MedianDaysToScore(m float64) float64 {
	switch {
	case m <= 1:
		return 100
	case m <= 2:
		return 100 - (m-1)*5
	case m <= 5:
		return 95 - (m-2)*5
	case m <= 10:
		return 80 - (m-5)*6
	default:
		return math.Max(0, 50-(m-10)*3)
	}
}

// ComputeScores fills RawScore and FinalScore on a result collection and
// sorts it descending by final score. The raw score sums weight x sub-score
// over components whose sub-score exists; weights of missing components are
// omitted outright, so an entity lacking a signal has a lower attainable
// maximum. The final score shrinks the raw score toward the population
// average in proportion to job volume relative to k.
func ComputeScores(items []domain.AggregatedResult, weights domain.Weights, k float64) []domain.AggregatedResult {
	w := NormalizeWeights(weights)
	if k <= 0 {
		k = DefaultCredibilityK
	}

	for i := range items {
		it := &items[i]
		parts := make([]float64, 0, 4)
		if it.PctInRange != nil {
			parts = append(parts, w.InRange*(*it.PctInRange)*100)
		}
		if it.PctSet1d != nil {
			parts = append(parts, w.Set1d*(*it.PctSet1d)*100)
		}
		if it.PctApptEq != nil {
			parts = append(parts, w.ApptEq*(*it.PctApptEq)*100)
		}
		if it.MedDays != nil {
			parts = append(parts, w.Median*MedianDaysToScore(*it.MedDays))
		}
		it.RawScore = nil
		if len(parts) > 0 {
			sum := 0.0
			for _, p := range parts {
				sum += p
			}
			it.RawScore = &sum
		}
	}

	avg := populationAverage(items)

	for i := range items {
		it := &items[i]
		if it.RawScore == nil {
			it.FinalScore = nil
			continue
		}
		cred := math.Min(1, float64(it.Jobs)/k)
		final := cred*(*it.RawScore) + (1-cred)*avg
		it.FinalScore = &final
	}

	SortByFinalScore(items)
	return items
}

// populationAverage is the mean raw score over entities that have one,
// defaulting to 50 when none do.
func populationAverage(items []domain.AggregatedResult) float64 {
	sum, n := 0.0, 0
	for _, it := range items {
		if it.RawScore != nil {
			sum += *it.RawScore
			n++
		}
	}
	if n == 0 {
		return 50
	}
	return sum / float64(n)
}

// SortByFinalScore orders a collection descending by final score; entities
// without one sort last.
func SortByFinalScore(items []domain.AggregatedResult) {
	sort.SliceStable(items, func(i, j int) bool {
		return scoreOrNeg(items[i]) > scoreOrNeg(items[j])
	})
}

func scoreOrNeg(it domain.AggregatedResult) float64 {
	if it.FinalScore == nil {
		return -1
	}
	return *it.FinalScore
}
