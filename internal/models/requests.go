package models

// AnalysisRequest configures a single batch analysis run. Every run is a
// fresh, complete pass over the data directory; nothing is carried over
// from previous runs.
type AnalysisRequest struct {
	// DataPath is the directory holding daily CSV snapshots.
	DataPath string
	// Contamination is the assumed fraction of anomalous records, in (0, 0.5].
	Contamination float64
	// Seed fixes the detector's randomness so repeated runs over identical
	// inputs produce identical flags.
	Seed int64
}
