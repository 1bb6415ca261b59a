package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/drivestack/drivehealth/internal/detector"
	"github.com/drivestack/drivehealth/internal/models"
	"github.com/drivestack/drivehealth/internal/utils"
)

// AnalysisRunner executes one complete pipeline pass.
type AnalysisRunner interface {
	Run(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
}

// Handler owns the dashboard HTTP routes. Each analysis request triggers a
// fresh, complete pipeline run; no state is shared between requests beyond
// run-latency bookkeeping.
type Handler struct {
	logger   *slog.Logger
	runner   AnalysisRunner
	defaults models.AnalysisRequest
	stats    *utils.RunStats
	started  time.Time
}

// NewHandler constructs the dashboard handler. The defaults fill fields a
// request body leaves out.
func NewHandler(logger *slog.Logger, runner AnalysisRunner, defaults models.AnalysisRequest) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		runner:   runner,
		defaults: defaults,
		stats:    utils.NewRunStats(1024),
		started:  time.Now(),
	}
}

// Routes assembles the chi router for the dashboard API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analysis", h.runAnalysis)
		r.Get("/status", h.status)
	})
	return r
}

// analysisRequest is the wire form of an analysis trigger. Pointer fields
// distinguish "absent, use the default" from explicit zero values.
type analysisRequest struct {
	DataPath      *string  `json:"data_path"`
	Contamination *float64 `json:"contamination"`
	Seed          *int64   `json:"seed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) runAnalysis(w http.ResponseWriter, r *http.Request) {
	var body analysisRequest
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
	}

	req := h.defaults
	if body.DataPath != nil {
		req.DataPath = *body.DataPath
	}
	if body.Contamination != nil {
		req.Contamination = *body.Contamination
	}
	if body.Seed != nil {
		req.Seed = *body.Seed
	}

	started := time.Now()
	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		h.logger.Error("analysis run failed", slog.String("data_path", req.DataPath), slog.Any("error", err))
		render.Status(r, statusFor(err))
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}
	h.stats.Observe(time.Since(started))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toAnalysisResponse(result))
}

// statusFor maps pipeline error kinds onto HTTP status codes: missing data
// is the caller's path problem, bad parameters are a bad request, and a
// contract violation is an internal bug.
func statusFor(err error) int {
	var notFound *utils.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, detector.ErrInvalidContamination) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type statusResponse struct {
	RunsCompleted int     `json:"runs_completed"`
	RunP50Millis  float64 `json:"run_p50_ms"`
	RunP95Millis  float64 `json:"run_p95_ms"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, statusResponse{
		RunsCompleted: h.stats.Count(),
		RunP50Millis:  float64(h.stats.Percentile(50)) / float64(time.Millisecond),
		RunP95Millis:  float64(h.stats.Percentile(95)) / float64(time.Millisecond),
		UptimeSeconds: time.Since(h.started).Seconds(),
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "ok")
}

// Wire representations of the analysis result. The domain models stay
// tag-free; mapping happens here at the boundary.

type analysisResponse struct {
	RunID         string  `json:"run_id"`
	DataPath      string  `json:"data_path"`
	Contamination float64 `json:"contamination"`
	Seed          int64   `json:"seed"`

	FailureRate  float64  `json:"failure_rate"`
	SkippedFiles []string `json:"skipped_files,omitempty"`

	Summary        summaryResponse    `json:"summary"`
	TopAnomalies   []scoredDriveJSON  `json:"top_anomalies"`
	ScoreHistogram []histogramBucket  `json:"score_histogram"`
	AnomalyScatter []scatterPointJSON `json:"anomaly_scatter"`

	DurationMillis float64   `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

type summaryResponse struct {
	TotalRecords     int                `json:"total_records"`
	FlaggedAnomalies int                `json:"flagged_anomalies"`
	ActualFailures   int                `json:"actual_failures"`
	TruePositives    int                `json:"true_positives"`
	Precision        float64            `json:"precision"`
	Recall           float64            `json:"recall"`
	Classes          []classMetricsJSON `json:"classes,omitempty"`
}

type classMetricsJSON struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

type scoredDriveJSON struct {
	SerialNumber        string  `json:"serial_number"`
	Failed              bool    `json:"failed"`
	Score               float64 `json:"score"`
	ReallocatedSectors  float64 `json:"reallocated_sectors"`
	UncorrectableErrors float64 `json:"uncorrectable_errors"`
	PendingSectors      float64 `json:"pending_sectors"`
}

type histogramBucket struct {
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Normal  int     `json:"normal"`
	Flagged int     `json:"flagged"`
}

type scatterPointJSON struct {
	SerialNumber       string  `json:"serial_number"`
	Temperature        float64 `json:"temperature"`
	ReallocatedSectors float64 `json:"reallocated_sectors"`
	Score              float64 `json:"score"`
}

func toAnalysisResponse(res models.AnalysisResult) analysisResponse {
	out := analysisResponse{
		RunID:          res.RunID,
		DataPath:       res.DataPath,
		Contamination:  res.Contamination,
		Seed:           res.Seed,
		FailureRate:    res.FailureRate,
		SkippedFiles:   res.SkippedFiles,
		DurationMillis: float64(res.Duration) / float64(time.Millisecond),
		CreatedAt:      res.CreatedAt,
		Summary: summaryResponse{
			TotalRecords:     res.Summary.TotalRecords,
			FlaggedAnomalies: res.Summary.FlaggedAnomalies,
			ActualFailures:   res.Summary.ActualFailures,
			TruePositives:    res.Summary.TruePositives,
			Precision:        res.Summary.Precision,
			Recall:           res.Summary.Recall,
		},
	}
	for _, class := range res.Summary.Classes {
		out.Summary.Classes = append(out.Summary.Classes, classMetricsJSON{
			Label:     class.Label,
			Precision: class.Precision,
			Recall:    class.Recall,
			F1:        class.F1,
			Support:   class.Support,
		})
	}
	for _, drive := range res.TopAnomalies {
		out.TopAnomalies = append(out.TopAnomalies, scoredDriveJSON{
			SerialNumber:        drive.SerialNumber,
			Failed:              drive.Failed,
			Score:               drive.Score,
			ReallocatedSectors:  drive.ReallocatedSectors,
			UncorrectableErrors: drive.UncorrectableErrors,
			PendingSectors:      drive.PendingSectors,
		})
	}
	for _, bucket := range res.ScoreHistogram {
		out.ScoreHistogram = append(out.ScoreHistogram, histogramBucket(bucket))
	}
	for _, point := range res.AnomalyScatter {
		out.AnomalyScatter = append(out.AnomalyScatter, scatterPointJSON(point))
	}
	return out
}
