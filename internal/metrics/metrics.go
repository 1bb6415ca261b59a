package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed analysis runs.
	OutcomeSuccess = "success"
	// OutcomeError labels failed analysis runs (data or contract issues).
	OutcomeError = "error"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drivehealth",
			Name:      "runs_total",
			Help:      "Total number of analysis runs, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	runSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "drivehealth",
			Name:      "run_seconds",
			Help:      "Analysis run latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	recordsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drivehealth",
			Name:      "records_loaded",
			Help:      "Drive records loaded by the most recent run.",
		},
	)

	filesSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "drivehealth",
			Name:      "files_skipped_total",
			Help:      "Snapshot files skipped for schema mismatch or read errors.",
		},
	)

	anomaliesFlagged = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drivehealth",
			Name:      "anomalies_flagged",
			Help:      "Anomalies flagged by the most recent run.",
		},
	)
)

// Register attaches drivehealth collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		runsTotal,
		runSeconds,
		recordsLoaded,
		filesSkippedTotal,
		anomaliesFlagged,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRun records a run duration and outcome label.
func ObserveRun(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	runsTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	runSeconds.Observe(duration.Seconds())
}

// ObserveDataset records loader output for the current run.
func ObserveDataset(records, skippedFiles int) {
	recordsLoaded.Set(float64(records))
	filesSkippedTotal.Add(float64(skippedFiles))
}

// ObserveFlagged records how many records the detector flagged.
func ObserveFlagged(count int) {
	anomaliesFlagged.Set(float64(count))
}
