package report

import (
	"sort"

	"voiceq/internal/runner"
)

// ActionMetrics summarises the results that expected one action. Rejected
// counts service-reported errors, which are never successful.
type ActionMetrics struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Rejected    int     `json:"rejected"`
	SuccessRate float64 `json:"success_rate"`
	AvgLatency  float64 `json:"avg_latency"`
}

// Analysis is the suite-level summary. Latencies are in seconds.
type Analysis struct {
	TotalTests      int                      `json:"total_tests"`
	SuccessfulTests int                      `json:"successful_tests"`
	SuccessRate     float64                  `json:"success_rate"`
	AverageLatency  float64                  `json:"average_latency"`
	MinLatency      float64                  `json:"min_latency"`
	MaxLatency      float64                  `json:"max_latency"`
	Outcomes        map[runner.Outcome]int   `json:"outcomes"`
	ActionMetrics   map[string]ActionMetrics `json:"action_metrics"`
}

// Analyze groups results by expected action. It does not modify results and
// returns zeros for an empty input.
func Analyze(results []runner.CommandResult) Analysis {
	a := Analysis{
		Outcomes:      map[runner.Outcome]int{},
		ActionMetrics: map[string]ActionMetrics{},
	}
	if len(results) == 0 {
		return a
	}

	type group struct {
		total, success, rejected int
		latency                  float64
	}
	groups := map[string]*group{}

	var sum float64
	a.MinLatency = results[0].Latency.Seconds()
	for _, r := range results {
		l := r.Latency.Seconds()
		sum += l
		if l < a.MinLatency {
			a.MinLatency = l
		}
		if l > a.MaxLatency {
			a.MaxLatency = l
		}
		if r.Success {
			a.SuccessfulTests++
		}
		a.Outcomes[r.Outcome]++

		g, ok := groups[r.ExpectedAction]
		if !ok {
			g = &group{}
			groups[r.ExpectedAction] = g
		}
		g.total++
		g.latency += l
		if r.Success {
			g.success++
		}
		if r.Outcome == runner.OutcomeServiceError {
			g.rejected++
		}
	}

	a.TotalTests = len(results)
	a.SuccessRate = 100 * float64(a.SuccessfulTests) / float64(a.TotalTests)
	a.AverageLatency = sum / float64(a.TotalTests)

	for action, g := range groups {
		a.ActionMetrics[action] = ActionMetrics{
			Total:       g.total,
			Successful:  g.success,
			Rejected:    g.rejected,
			SuccessRate: 100 * float64(g.success) / float64(g.total),
			AvgLatency:  g.latency / float64(g.total),
		}
	}
	return a
}

// Actions returns the analysed action names in sorted order.
func (a Analysis) Actions() []string {
	out := make([]string, 0, len(a.ActionMetrics))
	for k := range a.ActionMetrics {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Visualization holds the per-action series a chart would plot.
type Visualization struct {
	SuccessRateByCommand map[string]float64 `json:"success_rate_by_command"`
	LatencyByCommand     map[string]float64 `json:"latency_by_command"`
	OverallSuccessRate   float64            `json:"overall_success_rate"`
	OverallLatency       float64            `json:"overall_latency"`
}

func VisualizationData(a Analysis) Visualization {
	v := Visualization{
		SuccessRateByCommand: make(map[string]float64, len(a.ActionMetrics)),
		LatencyByCommand:     make(map[string]float64, len(a.ActionMetrics)),
		OverallSuccessRate:   a.SuccessRate,
		OverallLatency:       a.AverageLatency,
	}
	for action, m := range a.ActionMetrics {
		v.SuccessRateByCommand[action] = m.SuccessRate
		v.LatencyByCommand[action] = m.AvgLatency
	}
	return v
}
