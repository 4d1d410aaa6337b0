package eval

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/voyagent/voyagent/pkg/models"
)

// WriteReport prints a colored per-scenario report and the run summary.
func WriteReport(w io.Writer, results []Result, summary Summary) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	fmt.Fprintf(w, "Evaluation run: mode=%s, %d scenario(s)\n", summary.Mode, summary.Total)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, res := range results {
		status := green.Sprint("PASS")
		if !res.Passed {
			status = red.Sprint("FAIL")
		}
		fmt.Fprintf(w, "%s  %-10s %-32s %8s\n", status, res.Scenario.ID, res.Scenario.Name, res.Latency.Round(time.Millisecond))

		if res.Err != nil {
			detail := yellow.Sprint("error")
			if !res.Scenario.ExpectError {
				detail = red.Sprint("error")
			}
			fmt.Fprintf(w, "      %s: %v\n", detail, res.Err)
		}
		if len(res.MissingProviders) > 0 {
			fmt.Fprintf(w, "      missing providers: %s\n", joinProviders(res.MissingProviders))
		}
		if len(res.MissingContent) > 0 {
			fmt.Fprintf(w, "      content %.0f%%, missing: %s\n", res.ContentScore*100, strings.Join(res.MissingContent, ", "))
		}
		if res.Response != nil && len(res.Response.ProvidersInvoked) > 0 {
			fmt.Fprintf(w, "      providers: %s\n", joinProviders(res.Response.ProvidersInvoked))
		}
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	line := fmt.Sprintf("%d/%d passed, average latency %s", summary.Passed, summary.Total, summary.AvgLatency.Round(time.Millisecond))
	if summary.Passed == summary.Total {
		green.Fprintln(w, line)
	} else {
		red.Fprintln(w, line)
	}
}

func joinProviders(ids []models.ProviderID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
