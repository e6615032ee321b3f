package report

import (
	"fmt"
	"io"
	"strings"
)

// PrintAnalysis writes the human-readable suite report.
func PrintAnalysis(w io.Writer, a Analysis) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintf(w, "\n📊 TEST RESULTS ANALYSIS\n%s\n", rule)
	fmt.Fprintf(w, "Total Tests     : %d\n", a.TotalTests)
	fmt.Fprintf(w, "Successful      : %d\n", a.SuccessfulTests)
	fmt.Fprintf(w, "Success Rate    : %.2f%%\n", a.SuccessRate)
	fmt.Fprintf(w, "Average Latency : %.3fs\n", a.AverageLatency)
	fmt.Fprintf(w, "Min Latency     : %.3fs\n", a.MinLatency)
	fmt.Fprintf(w, "Max Latency     : %.3fs\n", a.MaxLatency)

	if len(a.ActionMetrics) > 0 {
		fmt.Fprintf(w, "\n🎯 RESULTS BY ACTION\n")
		for _, action := range a.Actions() {
			m := a.ActionMetrics[action]
			name := action
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(w, "   %-20s %3d/%-3d  %6.2f%%  avg %.3fs  rejected %d\n", name, m.Successful, m.Total, m.SuccessRate, m.AvgLatency, m.Rejected)
		}
	}
	fmt.Fprintf(w, "%s\n", rule)
}
