package compute

import (
	"testing"

	"github.com/smokesignal/smokesignal/pkg/types"
)

func TestAggregate_Table(t *testing.T) {
	tests := []struct {
		name        string
		outage      int
		degradation int
		want        types.TargetResult
	}{
		{"quiet", 0, 0, types.TargetResult{Status: types.StatusNormal, Sentiment: "Quiet", Latency: "Normal", Color: "green"}},
		{"below both", 3, 2, types.TargetResult{Status: types.StatusNormal, Sentiment: "Quiet", Latency: "Normal", Color: "green"}},
		{"degradation at threshold", 0, 3, types.TargetResult{Status: types.StatusWarning, Sentiment: "Lag Reports", Latency: "Slow", Color: "yellow"}},
		{"outage at threshold", 4, 0, types.TargetResult{Status: types.StatusCritical, Sentiment: "Outage Reports", Latency: "Down", Color: "red"}},
		{"outage wins over degradation", 4, 10, types.TargetResult{Status: types.StatusCritical, Sentiment: "Outage Reports", Latency: "Down", Color: "red"}},
		{"three outage reports do not escalate", 3, 0, types.TargetResult{Status: types.StatusNormal, Sentiment: "Quiet", Latency: "Normal", Color: "green"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Aggregate(tc.outage, tc.degradation); got != tc.want {
				t.Errorf("Aggregate(%d, %d) = %+v, want %+v", tc.outage, tc.degradation, got, tc.want)
			}
		})
	}
}

func TestAggregate_Monotonic(t *testing.T) {
	for o := 0; o < 10; o++ {
		for d := 0; d < 10; d++ {
			base := Aggregate(o, d).Status.Severity()
			if up := Aggregate(o+1, d).Status.Severity(); up < base {
				t.Errorf("outage %d→%d lowered severity %d→%d", o, o+1, base, up)
			}
			if up := Aggregate(o, d+1).Status.Severity(); up < base {
				t.Errorf("degradation %d→%d lowered severity %d→%d", d, d+1, base, up)
			}
		}
	}
}

func TestFallback(t *testing.T) {
	want := types.TargetResult{Status: types.StatusUnknown, Sentiment: "No Data", Latency: "?", Color: "yellow"}
	if got := Fallback(); got != want {
		t.Errorf("Fallback() = %+v, want %+v", got, want)
	}
}
