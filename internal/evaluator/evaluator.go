// Package evaluator scores detector output against ground-truth labels.
package evaluator

import (
	"github.com/drivestack/drivehealth/internal/models"
	"github.com/drivestack/drivehealth/internal/utils"
)

// Class labels in the per-class report.
const (
	ClassNormal = "normal"
	ClassFailed = "failed"
)

// Evaluate compares per-row anomaly flags with per-row failure labels and
// derives precision and recall for the failed class plus a per-class
// breakdown. Both slices must be aligned row-for-row; a length mismatch is
// a *utils.ContractError and indicates a bug upstream.
func Evaluate(flags, failures []bool) (models.EvaluationSummary, error) {
	if len(flags) != len(failures) {
		return models.EvaluationSummary{}, &utils.ContractError{
			Op:   "evaluator.Evaluate",
			Want: len(failures),
			Got:  len(flags),
		}
	}

	var flagged, actual, truePositives, trueNegatives int
	for i := range flags {
		if flags[i] {
			flagged++
		}
		if failures[i] {
			actual++
		}
		switch {
		case flags[i] && failures[i]:
			truePositives++
		case !flags[i] && !failures[i]:
			trueNegatives++
		}
	}

	total := len(flags)
	precision := safeRatio(truePositives, flagged)
	recall := safeRatio(truePositives, actual)

	normalPrecision := safeRatio(trueNegatives, total-flagged)
	normalRecall := safeRatio(trueNegatives, total-actual)

	return models.EvaluationSummary{
		TotalRecords:     total,
		FlaggedAnomalies: flagged,
		ActualFailures:   actual,
		TruePositives:    truePositives,
		Precision:        precision,
		Recall:           recall,
		Classes: []models.ClassMetrics{
			{
				Label:     ClassNormal,
				Precision: normalPrecision,
				Recall:    normalRecall,
				F1:        f1(normalPrecision, normalRecall),
				Support:   total - actual,
			},
			{
				Label:     ClassFailed,
				Precision: precision,
				Recall:    recall,
				F1:        f1(precision, recall),
				Support:   actual,
			},
		},
	}, nil
}

// safeRatio defines x/0 as 0 so empty classes never yield NaN.
func safeRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
