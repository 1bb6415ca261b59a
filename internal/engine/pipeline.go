package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/drivestack/drivehealth/internal/detector"
	"github.com/drivestack/drivehealth/internal/evaluator"
	"github.com/drivestack/drivehealth/internal/features"
	"github.com/drivestack/drivehealth/internal/loader"
	"github.com/drivestack/drivehealth/internal/metrics"
	"github.com/drivestack/drivehealth/internal/models"
)

const (
	topAnomalyCount  = 10
	histogramBuckets = 20
)

// DataSource loads drive records from a snapshot directory.
type DataSource interface {
	Load(dir string) (records []models.DriveRecord, skippedFiles []string, err error)
}

// DetectorFactory builds a detector for a single run. The seed comes from
// the analysis request so dashboard re-runs stay reproducible.
type DetectorFactory func(seed int64) detector.Detector

// Pipeline orchestrates the load -> feature -> detect -> evaluate flow.
// It holds no state between runs; every Run is a fresh batch job whose
// intermediate tables are discarded on return.
type Pipeline struct {
	logger      *slog.Logger
	source      DataSource
	newDetector DetectorFactory
}

// NewPipeline constructs the analysis pipeline.
func NewPipeline(logger *slog.Logger, source DataSource, factory DetectorFactory) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if source == nil {
		source = loader.New(logger)
	}
	if factory == nil {
		factory = func(seed int64) detector.Detector {
			return detector.NewIsolationForest(detector.WithSeed(seed))
		}
	}
	return &Pipeline{logger: logger, source: source, newDetector: factory}
}

// Run executes one complete analysis pass and assembles the result,
// including the presentation data (top anomalies, histogram, scatter).
func (p *Pipeline) Run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	started := time.Now()

	result, err := p.run(ctx, req)
	duration := time.Since(started)
	if err != nil {
		metrics.ObserveRun(duration, metrics.OutcomeError)
		return models.AnalysisResult{}, err
	}

	result.Duration = duration
	metrics.ObserveRun(duration, metrics.OutcomeSuccess)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	if err := detector.ValidateContamination(req.Contamination); err != nil {
		return models.AnalysisResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}

	records, skipped, err := p.source.Load(req.DataPath)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("load data: %w", err)
	}
	metrics.ObserveDataset(len(records), len(skipped))
	if len(records) == 0 {
		return models.AnalysisResult{}, fmt.Errorf("load data: empty dataset from %s", req.DataPath)
	}

	failures := make([]bool, len(records))
	actualFailures := 0
	for i, rec := range records {
		failures[i] = rec.Failed
		if rec.Failed {
			actualFailures++
		}
	}
	failureRate := float64(actualFailures) / float64(len(records))
	p.logger.Info("dataset loaded",
		slog.Int("records", len(records)),
		slog.Int("failures", actualFailures),
		slog.Float64("failure_rate", failureRate),
	)

	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}

	matrix := features.Matrix(records)
	scores, flags, err := p.newDetector(req.Seed).FitPredict(matrix, req.Contamination)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("detect anomalies: %w", err)
	}
	if len(scores) != len(records) || len(flags) != len(records) {
		return models.AnalysisResult{}, fmt.Errorf("detect anomalies: detector returned %d scores and %d flags for %d rows", len(scores), len(flags), len(records))
	}

	summary, err := evaluator.Evaluate(flags, failures)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("evaluate run: %w", err)
	}
	metrics.ObserveFlagged(summary.FlaggedAnomalies)

	return models.AnalysisResult{
		RunID:          uuid.NewString(),
		DataPath:       req.DataPath,
		Contamination:  req.Contamination,
		Seed:           req.Seed,
		FailureRate:    failureRate,
		SkippedFiles:   skipped,
		Summary:        summary,
		TopAnomalies:   topAnomalies(records, scores, topAnomalyCount),
		ScoreHistogram: buildHistogram(scores, flags, histogramBuckets),
		AnomalyScatter: scatterPoints(records, scores, flags),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// topAnomalies returns the limit highest-scored drives, most anomalous first.
func topAnomalies(records []models.DriveRecord, scores []float64, limit int) []models.ScoredDrive {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if limit > len(order) {
		limit = len(order)
	}
	top := make([]models.ScoredDrive, 0, limit)
	for _, idx := range order[:limit] {
		rec := records[idx]
		top = append(top, models.ScoredDrive{
			SerialNumber:        rec.SerialNumber,
			Failed:              rec.Failed,
			Score:               scores[idx],
			ReallocatedSectors:  rec.ReallocatedSectors,
			UncorrectableErrors: rec.UncorrectableErrors,
			PendingSectors:      rec.PendingSectors,
		})
	}
	return top
}

// buildHistogram bins the score distribution, counting flagged and normal
// records separately so the dashboard can colour the two populations.
func buildHistogram(scores []float64, flags []bool, buckets int) []models.HistogramBucket {
	if len(scores) == 0 || buckets <= 0 {
		return nil
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if min == max {
		bucket := models.HistogramBucket{Low: min, High: max}
		for _, f := range flags {
			if f {
				bucket.Flagged++
			} else {
				bucket.Normal++
			}
		}
		return []models.HistogramBucket{bucket}
	}

	width := (max - min) / float64(buckets)
	hist := make([]models.HistogramBucket, buckets)
	for i := range hist {
		hist[i].Low = min + float64(i)*width
		hist[i].High = hist[i].Low + width
	}
	hist[buckets-1].High = max

	for i, s := range scores {
		idx := int((s - min) / width)
		if idx >= buckets {
			idx = buckets - 1
		}
		if flags[i] {
			hist[idx].Flagged++
		} else {
			hist[idx].Normal++
		}
	}
	return hist
}

// scatterPoints plots temperature against reallocated sectors for flagged
// drives only.
func scatterPoints(records []models.DriveRecord, scores []float64, flags []bool) []models.ScatterPoint {
	points := make([]models.ScatterPoint, 0)
	for i, flagged := range flags {
		if !flagged {
			continue
		}
		points = append(points, models.ScatterPoint{
			SerialNumber:       records[i].SerialNumber,
			Temperature:        records[i].Temperature,
			ReallocatedSectors: records[i].ReallocatedSectors,
			Score:              scores[i],
		})
	}
	return points
}
