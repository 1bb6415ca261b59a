// Package features derives secondary signals from raw S.M.A.R.T. counters.
// Every feature is a deterministic pure function of a single record.
package features

import (
	"github.com/drivestack/drivehealth/internal/models"
)

const (
	// Drives running above this temperature get the high-temp flag.
	highTempThresholdC = 50.0
	hoursPerYear       = 8760.0
)

// Names lists the feature columns in matrix order: the six raw counters
// followed by the derived columns.
func Names() []string {
	return []string{
		"reallocated_sectors",
		"power_on_hours",
		"uncorrectable_errors",
		"temperature",
		"pending_sectors",
		"offline_uncorrectable",
		"total_errors",
		"error_rate",
		"high_temp",
		"age_years",
		"has_reallocated",
		"has_uncorrectable",
		"has_pending",
		"risk_score",
	}
}

// Vector computes the feature vector for one record.
func Vector(rec models.DriveRecord) []float64 {
	totalErrors := rec.ReallocatedSectors + rec.UncorrectableErrors + rec.PendingSectors

	return []float64{
		rec.ReallocatedSectors,
		rec.PowerOnHours,
		rec.UncorrectableErrors,
		rec.Temperature,
		rec.PendingSectors,
		rec.OfflineUncorrectable,
		totalErrors,
		safeDiv(totalErrors, rec.PowerOnHours+1),
		indicator(rec.Temperature > highTempThresholdC),
		rec.PowerOnHours / hoursPerYear,
		indicator(rec.ReallocatedSectors > 0),
		indicator(rec.UncorrectableErrors > 0),
		indicator(rec.PendingSectors > 0),
		riskScore(rec),
	}
}

// Matrix builds the feature matrix for a whole dataset, one row per record.
func Matrix(records []models.DriveRecord) [][]float64 {
	matrix := make([][]float64, len(records))
	for i, rec := range records {
		matrix[i] = Vector(rec)
	}
	return matrix
}

// riskScore combines saturating-normalized error counters into a single
// composite in [0, 1]. Weights favour reallocation and media errors, the
// strongest failure precursors in the raw data.
func riskScore(rec models.DriveRecord) float64 {
	score := 0.30*saturate(rec.ReallocatedSectors) +
		0.25*saturate(rec.UncorrectableErrors) +
		0.25*saturate(rec.PendingSectors) +
		0.10*saturate(rec.OfflineUncorrectable)
	if rec.Temperature > highTempThresholdC {
		score += 0.10
	}
	return score
}

// saturate maps a non-negative counter into [0, 1) with diminishing returns.
func saturate(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return v / (v + 1)
}

// safeDiv treats a zero denominator as a zero result rather than a fault;
// raw counters legitimately may be zero.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
