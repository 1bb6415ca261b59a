package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/drivestack/drivehealth/internal/detector"
	"github.com/drivestack/drivehealth/internal/models"
	"github.com/drivestack/drivehealth/internal/utils"
)

type fakeSource struct {
	records []models.DriveRecord
	skipped []string
	err     error
}

func (f *fakeSource) Load(dir string) ([]models.DriveRecord, []string, error) {
	return f.records, f.skipped, f.err
}

// fakeDetector scores each row by its first feature value, making flag
// placement fully predictable in tests.
type fakeDetector struct{}

func (f *fakeDetector) FitPredict(matrix [][]float64, contamination float64) ([]float64, []bool, error) {
	if err := detector.ValidateContamination(contamination); err != nil {
		return nil, nil, err
	}
	scores := make([]float64, len(matrix))
	for i, row := range matrix {
		scores[i] = row[0] / 1000
	}
	k := int(contamination*float64(len(matrix)) + 0.5)
	flags := make([]bool, len(matrix))
	for i := 0; i < len(matrix); i++ {
		flags[i] = false
	}
	// Flag the k largest first-feature rows.
	for n := 0; n < k; n++ {
		best, bestIdx := -1.0, -1
		for i, s := range scores {
			if flags[i] {
				continue
			}
			if s > best {
				best, bestIdx = s, i
			}
		}
		if bestIdx >= 0 {
			flags[bestIdx] = true
		}
	}
	return scores, flags, nil
}

func fakeFactory(det detector.Detector) DetectorFactory {
	return func(seed int64) detector.Detector { return det }
}

// testRecords builds n drives where the last `failed` of them carry both
// the failure label and dramatically elevated error counters.
func testRecords(n, failed int) []models.DriveRecord {
	records := make([]models.DriveRecord, 0, n)
	for i := 0; i < n-failed; i++ {
		records = append(records, models.DriveRecord{
			SerialNumber: fmt.Sprintf("OK-%03d", i),
			PowerOnHours: 10000,
			Temperature:  30,
		})
	}
	for i := 0; i < failed; i++ {
		records = append(records, models.DriveRecord{
			SerialNumber:        fmt.Sprintf("BAD-%03d", i),
			Failed:              true,
			ReallocatedSectors:  500 + float64(i),
			UncorrectableErrors: 40,
			PendingSectors:      120,
			PowerOnHours:        30000,
			Temperature:         61,
		})
	}
	return records
}

func TestPipelineRunPerfectDetection(t *testing.T) {
	records := testRecords(100, 5)
	pipeline := NewPipeline(nil, &fakeSource{records: records}, fakeFactory(&fakeDetector{}))

	result, err := pipeline.Run(context.Background(), models.AnalysisRequest{
		DataPath:      "testdata",
		Contamination: 0.05,
		Seed:          42,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Summary.TotalRecords != 100 {
		t.Fatalf("total records = %d", result.Summary.TotalRecords)
	}
	if result.Summary.FlaggedAnomalies != 5 {
		t.Fatalf("flagged = %d, want 5 for contamination 0.05 over 100 rows", result.Summary.FlaggedAnomalies)
	}
	// The fake detector scores on reallocated sectors, so the 5 failed
	// drives are exactly the 5 flagged ones.
	if result.Summary.Precision != 1.0 || result.Summary.Recall != 1.0 {
		t.Fatalf("precision=%v recall=%v, want 1.0/1.0", result.Summary.Precision, result.Summary.Recall)
	}
	if result.FailureRate != 0.05 {
		t.Fatalf("failure rate = %v, want 0.05", result.FailureRate)
	}
	if result.RunID == "" {
		t.Fatalf("expected a run ID")
	}
}

func TestPipelineTopAnomaliesSorted(t *testing.T) {
	records := testRecords(50, 3)
	pipeline := NewPipeline(nil, &fakeSource{records: records}, fakeFactory(&fakeDetector{}))

	result, err := pipeline.Run(context.Background(), models.AnalysisRequest{Contamination: 0.1, Seed: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.TopAnomalies) != 10 {
		t.Fatalf("top anomalies = %d, want 10", len(result.TopAnomalies))
	}
	for i := 1; i < len(result.TopAnomalies); i++ {
		if result.TopAnomalies[i].Score > result.TopAnomalies[i-1].Score {
			t.Fatalf("top anomalies not sorted by score")
		}
	}
	// The highest-scored drives are the failed ones.
	for i := 0; i < 3; i++ {
		if !result.TopAnomalies[i].Failed {
			t.Fatalf("expected failed drive at rank %d, got %+v", i, result.TopAnomalies[i])
		}
	}
}

func TestPipelineChartData(t *testing.T) {
	records := testRecords(40, 2)
	pipeline := NewPipeline(nil, &fakeSource{records: records}, fakeFactory(&fakeDetector{}))

	result, err := pipeline.Run(context.Background(), models.AnalysisRequest{Contamination: 0.05, Seed: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	totalBinned := 0
	for _, bucket := range result.ScoreHistogram {
		totalBinned += bucket.Normal + bucket.Flagged
	}
	if totalBinned != 40 {
		t.Fatalf("histogram bins %d records, want 40", totalBinned)
	}

	if len(result.AnomalyScatter) != result.Summary.FlaggedAnomalies {
		t.Fatalf("scatter has %d points for %d flagged drives", len(result.AnomalyScatter), result.Summary.FlaggedAnomalies)
	}
	for _, point := range result.AnomalyScatter {
		if point.Temperature != 61 {
			t.Fatalf("scatter point for unflagged drive: %+v", point)
		}
	}
}

func TestPipelineRejectsInvalidContamination(t *testing.T) {
	pipeline := NewPipeline(nil, &fakeSource{records: testRecords(10, 1)}, fakeFactory(&fakeDetector{}))

	_, err := pipeline.Run(context.Background(), models.AnalysisRequest{Contamination: 0.8})
	if !errors.Is(err, detector.ErrInvalidContamination) {
		t.Fatalf("expected ErrInvalidContamination, got %v", err)
	}
}

func TestPipelinePropagatesLoadFailure(t *testing.T) {
	wantErr := &utils.NotFoundError{Path: "missing"}
	pipeline := NewPipeline(nil, &fakeSource{err: wantErr}, fakeFactory(&fakeDetector{}))

	_, err := pipeline.Run(context.Background(), models.AnalysisRequest{Contamination: 0.01})
	var notFound *utils.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestPipelineCarriesSkippedFiles(t *testing.T) {
	pipeline := NewPipeline(nil, &fakeSource{
		records: testRecords(20, 1),
		skipped: []string{"broken.csv"},
	}, fakeFactory(&fakeDetector{}))

	result, err := pipeline.Run(context.Background(), models.AnalysisRequest{Contamination: 0.05, Seed: 9})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.SkippedFiles) != 1 || result.SkippedFiles[0] != "broken.csv" {
		t.Fatalf("skipped files = %v", result.SkippedFiles)
	}
}

func TestPipelineRepeatableWithFixedSeed(t *testing.T) {
	records := testRecords(80, 4)
	pipeline := NewPipeline(nil, &fakeSource{records: records}, nil)

	req := models.AnalysisRequest{Contamination: 0.05, Seed: 42}
	first, err := pipeline.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := pipeline.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.Summary.FlaggedAnomalies != second.Summary.FlaggedAnomalies ||
		first.Summary.TruePositives != second.Summary.TruePositives ||
		first.Summary.Precision != second.Summary.Precision ||
		first.Summary.Recall != second.Summary.Recall {
		t.Fatalf("seeded runs diverged: %+v vs %+v", first.Summary, second.Summary)
	}
	if len(first.TopAnomalies) != len(second.TopAnomalies) {
		t.Fatalf("top anomaly counts differ")
	}
	for i := range first.TopAnomalies {
		if first.TopAnomalies[i] != second.TopAnomalies[i] {
			t.Fatalf("top anomaly %d differs: %+v vs %+v", i, first.TopAnomalies[i], second.TopAnomalies[i])
		}
	}
}
