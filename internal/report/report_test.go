package report

import (
	"strings"
	"testing"
	"time"

	"github.com/drivestack/drivehealth/internal/models"
)

func sampleResult() models.AnalysisResult {
	return models.AnalysisResult{
		RunID:         "run-1",
		DataPath:      "training_data/",
		Contamination: 0.01,
		Seed:          42,
		FailureRate:   0.005,
		SkippedFiles:  []string{"2013-04-09.csv"},
		Summary: models.EvaluationSummary{
			TotalRecords:     1000,
			FlaggedAnomalies: 10,
			ActualFailures:   5,
			TruePositives:    4,
			Precision:        0.4,
			Recall:           0.8,
			Classes: []models.ClassMetrics{
				{Label: "normal", Precision: 0.999, Recall: 0.994, F1: 0.996, Support: 995},
				{Label: "failed", Precision: 0.4, Recall: 0.8, F1: 0.533, Support: 5},
			},
		},
		TopAnomalies: []models.ScoredDrive{
			{SerialNumber: "Z300ABCD", Failed: true, Score: 0.91, ReallocatedSectors: 412},
			{SerialNumber: "Z300EFGH", Failed: false, Score: 0.77, PendingSectors: 9},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestRenderContainsSummary(t *testing.T) {
	out := Render(sampleResult())

	for _, want := range []string{
		"Records analyzed:    1000",
		"Anomalies detected:  10",
		"Actual failures:     5",
		"Precision:           0.400",
		"Recall:              0.800",
		"Files skipped:       1 (2013-04-09.csv)",
		"Z300ABCD",
		"FAILED",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPerClassTable(t *testing.T) {
	out := Render(sampleResult())
	if !strings.Contains(out, "Per-class metrics:") {
		t.Fatalf("missing per-class section:\n%s", out)
	}
	for _, label := range []string{"normal", "failed"} {
		if !strings.Contains(out, label) {
			t.Fatalf("missing class %q:\n%s", label, out)
		}
	}
}

func TestRenderWithoutOptionalSections(t *testing.T) {
	res := sampleResult()
	res.SkippedFiles = nil
	res.TopAnomalies = nil
	res.Summary.Classes = nil

	out := Render(res)
	if strings.Contains(out, "Files skipped") {
		t.Fatalf("unexpected skipped-files line:\n%s", out)
	}
	if strings.Contains(out, "most anomalous drives") {
		t.Fatalf("unexpected top-anomalies section:\n%s", out)
	}
}
