package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drivestack/drivehealth/internal/models"
	"github.com/drivestack/drivehealth/internal/utils"
)

type fakeRunner struct {
	lastReq models.AnalysisRequest
	result  models.AnalysisResult
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func testDefaults() models.AnalysisRequest {
	return models.AnalysisRequest{DataPath: "training_data/", Contamination: 0.01, Seed: 42}
}

func TestRunAnalysisAppliesDefaults(t *testing.T) {
	runner := &fakeRunner{result: models.AnalysisResult{RunID: "run-1"}}
	handler := NewHandler(nil, runner, testDefaults())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(`{"contamination": 0.05}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if runner.lastReq.DataPath != "training_data/" {
		t.Fatalf("default data path not applied: %q", runner.lastReq.DataPath)
	}
	if runner.lastReq.Contamination != 0.05 {
		t.Fatalf("contamination override not applied: %v", runner.lastReq.Contamination)
	}
	if runner.lastReq.Seed != 42 {
		t.Fatalf("default seed not applied: %d", runner.lastReq.Seed)
	}
}

func TestRunAnalysisResponseBody(t *testing.T) {
	runner := &fakeRunner{result: models.AnalysisResult{
		RunID:         "run-2",
		DataPath:      "training_data/",
		Contamination: 0.01,
		Summary: models.EvaluationSummary{
			TotalRecords:     100,
			FlaggedAnomalies: 1,
			ActualFailures:   1,
			TruePositives:    1,
			Precision:        1,
			Recall:           1,
		},
		TopAnomalies: []models.ScoredDrive{{SerialNumber: "S9", Failed: true, Score: 0.93}},
		AnomalyScatter: []models.ScatterPoint{
			{SerialNumber: "S9", Temperature: 58, ReallocatedSectors: 300, Score: 0.93},
		},
		Duration:  250 * time.Millisecond,
		CreatedAt: time.Now().UTC(),
	}}
	handler := NewHandler(nil, runner, testDefaults())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		RunID   string `json:"run_id"`
		Summary struct {
			TotalRecords int     `json:"total_records"`
			Precision    float64 `json:"precision"`
		} `json:"summary"`
		TopAnomalies []struct {
			SerialNumber string `json:"serial_number"`
		} `json:"top_anomalies"`
		AnomalyScatter []struct {
			Temperature float64 `json:"temperature"`
		} `json:"anomaly_scatter"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.RunID != "run-2" || body.Summary.TotalRecords != 100 || body.Summary.Precision != 1 {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
	if len(body.TopAnomalies) != 1 || body.TopAnomalies[0].SerialNumber != "S9" {
		t.Fatalf("top anomalies missing: %s", rec.Body.String())
	}
	if len(body.AnomalyScatter) != 1 || body.AnomalyScatter[0].Temperature != 58 {
		t.Fatalf("scatter missing: %s", rec.Body.String())
	}
}

func TestRunAnalysisMissingData(t *testing.T) {
	runner := &fakeRunner{err: &utils.NotFoundError{Path: "nowhere/"}}
	handler := NewHandler(nil, runner, testDefaults())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(`{"data_path": "nowhere/"}`))
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "nowhere/") {
		t.Fatalf("error body missing path: %s", rec.Body.String())
	}
}

func TestRunAnalysisBadBody(t *testing.T) {
	handler := NewHandler(nil, &fakeRunner{}, testDefaults())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(`{"contamination": "lots"}`))
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRunAnalysisContractViolation(t *testing.T) {
	runner := &fakeRunner{err: &utils.ContractError{Op: "evaluator.Evaluate", Want: 10, Got: 9}}
	handler := NewHandler(nil, runner, testDefaults())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	runner := &fakeRunner{result: models.AnalysisResult{RunID: "run-3"}}
	handler := NewHandler(nil, runner, testDefaults())
	router := handler.Routes()

	// Complete one run so the counter moves.
	runReq := httptest.NewRequest(http.MethodPost, "/api/v1/analysis", nil)
	router.ServeHTTP(httptest.NewRecorder(), runReq)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		RunsCompleted int     `json:"runs_completed"`
		Uptime        float64 `json:"uptime_seconds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if body.RunsCompleted != 1 {
		t.Fatalf("runs_completed = %d, want 1", body.RunsCompleted)
	}
}

func TestHealthz(t *testing.T) {
	handler := NewHandler(nil, &fakeRunner{}, testDefaults())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}
