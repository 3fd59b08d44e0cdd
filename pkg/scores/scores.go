// Package scores computes regression fit scores for predicted-vs-actual
// comparisons. Scores keep their insertion order so annotations render in
// the order the caller chose.
package scores

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Score is one named metric value.
type Score struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Compute returns the standard comparison scores (R², RMSE, MAE) for the
// given series, in that order. The series must be equally sized and
// non-empty.
func Compute(actual, predicted []float64) ([]Score, error) {
	if len(actual) == 0 {
		return nil, fmt.Errorf("scores: no values")
	}
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("scores: series length mismatch: %d vs %d", len(actual), len(predicted))
	}

	var sqSum, absSum float64
	for i := range actual {
		diff := predicted[i] - actual[i]
		sqSum += diff * diff
		absSum += math.Abs(diff)
	}
	n := float64(len(actual))

	return []Score{
		{Label: "R2", Value: stat.RSquaredFrom(predicted, actual, nil)},
		{Label: "RMSE", Value: math.Sqrt(sqSum / n)},
		{Label: "MAE", Value: absSum / n},
	}, nil
}
