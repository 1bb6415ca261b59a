package detector

import (
	"fmt"

	"github.com/hed1ad/goguardml/pkg/detectors/iforest"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultTrees      = 100
	defaultSampleSize = 256
	defaultSeed       = 42
)

// IsolationForest binds the external isolation-forest implementation to
// the Detector contract. The ensemble algorithm itself lives in the
// library; this wrapper only standardizes the matrix, fits, scores, and
// applies the contamination threshold.
type IsolationForest struct {
	trees      int
	sampleSize int
	seed       int64
}

// Option configures an IsolationForest.
type Option func(*IsolationForest)

// WithTrees sets the number of estimators in the ensemble.
func WithTrees(n int) Option {
	return func(f *IsolationForest) {
		if n > 0 {
			f.trees = n
		}
	}
}

// WithSampleSize sets the per-tree subsample size.
func WithSampleSize(n int) Option {
	return func(f *IsolationForest) {
		if n > 0 {
			f.sampleSize = n
		}
	}
}

// WithSeed fixes the forest's randomness for reproducible runs.
func WithSeed(seed int64) Option {
	return func(f *IsolationForest) {
		f.seed = seed
	}
}

// NewIsolationForest constructs the default detector.
func NewIsolationForest(opts ...Option) *IsolationForest {
	f := &IsolationForest{
		trees:      defaultTrees,
		sampleSize: defaultSampleSize,
		seed:       defaultSeed,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FitPredict standardizes the matrix, fits the forest, and returns per-row
// anomaly scores plus contamination-derived flags.
func (f *IsolationForest) FitPredict(matrix [][]float64, contamination float64) ([]float64, []bool, error) {
	if err := ValidateContamination(contamination); err != nil {
		return nil, nil, err
	}
	if len(matrix) == 0 {
		return []float64{}, []bool{}, nil
	}

	sampleSize := f.sampleSize
	if sampleSize > len(matrix) {
		sampleSize = len(matrix)
	}

	scaled := standardize(matrix)

	forest := iforest.New(
		iforest.WithTrees(f.trees),
		iforest.WithSampleSize(sampleSize),
		iforest.WithContamination(contamination),
		iforest.WithSeed(f.seed),
	)
	if err := forest.Fit(scaled); err != nil {
		return nil, nil, fmt.Errorf("fit isolation forest: %w", err)
	}
	scores, err := forest.Predict(scaled)
	if err != nil {
		return nil, nil, fmt.Errorf("score feature matrix: %w", err)
	}

	return scores, flagTop(scores, contamination), nil
}

// standardize z-scores each column so features with large raw magnitudes
// (power-on hours) do not dominate the axis-aligned splits. Zero-variance
// columns collapse to zero.
func standardize(matrix [][]float64) [][]float64 {
	rows := len(matrix)
	cols := len(matrix[0])

	column := make([]float64, rows)
	means := make([]float64, cols)
	stddevs := make([]float64, cols)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			column[r] = matrix[r][c]
		}
		means[c] = stat.Mean(column, nil)
		stddevs[c] = stat.StdDev(column, nil)
	}

	scaled := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		scaled[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			if stddevs[c] == 0 || rows < 2 {
				scaled[r][c] = 0
				continue
			}
			scaled[r][c] = (matrix[r][c] - means[c]) / stddevs[c]
		}
	}
	return scaled
}
