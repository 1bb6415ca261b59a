// Package report renders analysis results for the command line.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/drivestack/drivehealth/internal/models"
)

// Render formats an AnalysisResult as the textual report printed in CLI mode.
func Render(res models.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Drive Health Analysis (run %s)\n", res.RunID)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(&b, "Data path:           %s\n", res.DataPath)
	fmt.Fprintf(&b, "Records analyzed:    %d\n", res.Summary.TotalRecords)
	if len(res.SkippedFiles) > 0 {
		fmt.Fprintf(&b, "Files skipped:       %d (%s)\n", len(res.SkippedFiles), strings.Join(res.SkippedFiles, ", "))
	}
	fmt.Fprintf(&b, "Actual failures:     %d (%.4f%% failure rate)\n", res.Summary.ActualFailures, res.FailureRate*100)
	fmt.Fprintf(&b, "Anomalies detected:  %d\n", res.Summary.FlaggedAnomalies)
	fmt.Fprintf(&b, "Contamination:       %.4f\n", res.Contamination)
	fmt.Fprintf(&b, "Seed:                %d\n", res.Seed)
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Precision:           %.3f\n", res.Summary.Precision)
	fmt.Fprintf(&b, "Recall:              %.3f\n", res.Summary.Recall)

	if len(res.Summary.Classes) > 0 {
		fmt.Fprintf(&b, "\nPer-class metrics:\n")
		tw := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "class\tprecision\trecall\tf1\tsupport")
		for _, class := range res.Summary.Classes {
			fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%d\n",
				class.Label, class.Precision, class.Recall, class.F1, class.Support)
		}
		tw.Flush()
	}

	if len(res.TopAnomalies) > 0 {
		fmt.Fprintf(&b, "\nTop %d most anomalous drives:\n", len(res.TopAnomalies))
		tw := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "serial\tstatus\tscore\treallocated\tuncorrectable\tpending")
		for _, drive := range res.TopAnomalies {
			status := "normal"
			if drive.Failed {
				status = "FAILED"
			}
			fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.0f\t%.0f\t%.0f\n",
				drive.SerialNumber, status, drive.Score,
				drive.ReallocatedSectors, drive.UncorrectableErrors, drive.PendingSectors)
		}
		tw.Flush()
	}

	fmt.Fprintf(&b, "\nCompleted in %s\n", res.Duration.Round(time.Millisecond))
	return b.String()
}
