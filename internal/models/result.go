package models

import "time"

// EvaluationSummary aggregates detector output against ground-truth labels.
type EvaluationSummary struct {
	TotalRecords     int
	FlaggedAnomalies int
	ActualFailures   int
	TruePositives    int
	Precision        float64
	Recall           float64
	Classes          []ClassMetrics
}

// ClassMetrics reports per-class classification quality.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ScoredDrive pairs a drive with its anomaly score.
type ScoredDrive struct {
	SerialNumber        string
	Failed              bool
	Score               float64
	ReallocatedSectors  float64
	UncorrectableErrors float64
	PendingSectors      float64
}

// HistogramBucket is one bin of the anomaly-score distribution, with
// separate counts for flagged and unflagged records.
type HistogramBucket struct {
	Low     float64
	High    float64
	Normal  int
	Flagged int
}

// ScatterPoint is one flagged drive plotted as temperature against
// reallocated-sector count.
type ScatterPoint struct {
	SerialNumber       string
	Temperature        float64
	ReallocatedSectors float64
	Score              float64
}

// AnalysisResult is the complete output of one pipeline run.
type AnalysisResult struct {
	RunID         string
	DataPath      string
	Contamination float64
	Seed          int64

	FailureRate  float64
	SkippedFiles []string

	Summary        EvaluationSummary
	TopAnomalies   []ScoredDrive
	ScoreHistogram []HistogramBucket
	AnomalyScatter []ScatterPoint

	Duration  time.Duration
	CreatedAt time.Time
}
