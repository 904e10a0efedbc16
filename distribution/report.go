package distribution

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var (
	banner = strings.Repeat("=", 60)
	rule   = strings.Repeat("-", 60)
)

// WriteReport prints the distribution statistics for tally. Percentages
// are relative to numRuns, the requested run count, so failed runs
// lower every name's share.
func WriteReport(w io.Writer, tally Tally, numRuns int) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\n%s\n", banner)
	fmt.Fprintln(bw, "DISTRIBUTION STATISTICS")
	fmt.Fprintln(bw, banner)
	fmt.Fprintf(bw, "Total runs: %d\n", numRuns)
	fmt.Fprintf(bw, "Successful runs: %d\n", tally.Total())
	fmt.Fprintln(bw)

	entries := tally.Sorted()

	fmt.Fprintf(bw, "%-30s %-10s %-10s\n", "Name", "Count", "Percentage")
	fmt.Fprintln(bw, rule)
	for _, e := range entries {
		fmt.Fprintf(bw, "%-30s %-10d %.2f%%\n", e.Name, e.Count, percentage(e.Count, numRuns))
	}
	fmt.Fprintln(bw, rule)

	if len(entries) > 0 {
		expected := 100 / float64(len(entries))
		fmt.Fprintf(bw, "\nExpected percentage per name (equal distribution): %.2f%%\n", expected)

		fmt.Fprintln(bw, "\nDeviation from expected:")
		for _, e := range entries {
			deviation := percentage(e.Count, numRuns) - expected
			fmt.Fprintf(bw, "%-30s %+.2f%%\n", e.Name, deviation)
		}
	}

	return bw.Flush()
}

func percentage(count, numRuns int) float64 {
	if numRuns == 0 {
		return 0
	}
	return float64(count) / float64(numRuns) * 100
}
