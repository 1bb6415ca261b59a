package utils

import (
	"sort"
	"sync"
	"time"
)

// RunStats keeps recent pipeline run durations and computes percentiles
// for the status endpoint. The sample window is bounded; the total run
// count is not.
type RunStats struct {
	mu      sync.RWMutex
	samples []time.Duration
	maxSize int
	total   int
}

// NewRunStats creates a tracker storing up to maxSize duration samples.
func NewRunStats(maxSize int) *RunStats {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &RunStats{maxSize: maxSize}
}

// Observe records a completed run.
func (s *RunStats) Observe(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.samples = append(s.samples, d)
	if len(s.samples) > s.maxSize {
		// Drop oldest sample to bound memory.
		copy(s.samples[0:], s.samples[1:])
		s.samples = s.samples[:s.maxSize]
	}
}

// Percentile returns the percentile (0-100) duration over the current
// window. Returns zero when no runs have been observed.
func (s *RunStats) Percentile(p float64) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.samples) == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), s.samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	index := int((p / 100.0) * float64(len(sorted)-1))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// Count returns the total number of runs observed since startup.
func (s *RunStats) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
