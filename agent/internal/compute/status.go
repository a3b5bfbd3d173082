package compute

import "github.com/smokesignal/smokesignal/pkg/types"

// Thresholds at which signal counts escalate the status. Both are inclusive.
const (
	OutageThreshold      = 4
	DegradationThreshold = 3
)

// Sentiment and latency labels carried in a TargetResult.
const (
	SentimentOutage = "Outage Reports"
	SentimentLag    = "Lag Reports"
	SentimentQuiet  = "Quiet"
	SentimentNoData = "No Data"

	LatencyDown    = "Down"
	LatencySlow    = "Slow"
	LatencyNormal  = "Normal"
	LatencyUnknown = "?"
)

// Aggregate maps in-window signal counts to a result. Outage is checked
// first, so a target over both thresholds is CRITICAL.
func Aggregate(outage, degradation int) types.TargetResult {
	switch {
	case outage >= OutageThreshold:
		return types.TargetResult{
			Status:    types.StatusCritical,
			Sentiment: SentimentOutage,
			Latency:   LatencyDown,
			Color:     types.ColorRed,
		}
	case degradation >= DegradationThreshold:
		return types.TargetResult{
			Status:    types.StatusWarning,
			Sentiment: SentimentLag,
			Latency:   LatencySlow,
			Color:     types.ColorYellow,
		}
	default:
		return types.TargetResult{
			Status:    types.StatusNormal,
			Sentiment: SentimentQuiet,
			Latency:   LatencyNormal,
			Color:     types.ColorGreen,
		}
	}
}

// Fallback is the result for a target whose feed could not be fetched,
// parsed, or returned in time.
func Fallback() types.TargetResult {
	return types.TargetResult{
		Status:    types.StatusUnknown,
		Sentiment: SentimentNoData,
		Latency:   LatencyUnknown,
		Color:     types.ColorYellow,
	}
}
