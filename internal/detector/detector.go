// Package detector scores drive feature vectors for anomalousness.
package detector

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidContamination marks a contamination rate outside (0, 0.5].
var ErrInvalidContamination = errors.New("contamination must be in (0, 0.5]")

// Detector assigns each feature-matrix row an anomaly score in [0, 1]
// (higher is more anomalous) and a binary flag derived from the
// contamination rate. Implementations are deterministic only up to their
// configured random seed.
type Detector interface {
	FitPredict(matrix [][]float64, contamination float64) (scores []float64, flags []bool, err error)
}

// ValidateContamination rejects rates outside the supported range.
func ValidateContamination(contamination float64) error {
	if contamination <= 0 || contamination > 0.5 {
		return fmt.Errorf("%w: got %v", ErrInvalidContamination, contamination)
	}
	return nil
}

// flagTop marks the round(contamination*n) highest-scored rows, so total
// flagged tracks contamination within rounding. Ties break on row index to
// keep repeated runs stable.
func flagTop(scores []float64, contamination float64) []bool {
	n := len(scores)
	flags := make([]bool, n)
	k := int(math.Round(contamination * float64(n)))
	if k <= 0 {
		return flags
	}
	if k > n {
		k = n
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	for _, idx := range order[:k] {
		flags[idx] = true
	}
	return flags
}
