package alerts

import (
	"testing"

	"github.com/smokesignal/smokesignal/pkg/types"
)

func TestEvalCondition(t *testing.T) {
	critical := types.TargetResult{Status: types.StatusCritical, Latency: "Down"}
	warning := types.TargetResult{Status: types.StatusWarning, Latency: "Slow"}
	normal := types.TargetResult{Status: types.StatusNormal, Latency: "Normal"}
	unknown := types.TargetResult{Status: types.StatusUnknown, Latency: "?"}

	tests := []struct {
		cond      string
		r         types.TargetResult
		wantFire  bool
		wantValue string
	}{
		{"status == CRITICAL", critical, true, "CRITICAL"},
		{"status == critical", critical, true, "CRITICAL"},
		{"status == CRITICAL", warning, false, "WARNING"},
		{"status != NORMAL", unknown, true, "UNKNOWN"},
		{"status != NORMAL", normal, false, "NORMAL"},
		{"severity >= 1", warning, true, "1"},
		{"severity >= 1", critical, true, "2"},
		{"severity >= 1", normal, false, "0"},
		{"severity >= 1", unknown, false, "-1"},
		{"severity < 0", unknown, true, "-1"},
		{"latency == Down", critical, true, "Down"},
		{"status > CRITICAL", critical, false, "CRITICAL"},
		{"severity >= high", critical, false, ""},
		{"uptime < 99", critical, false, ""},
		{"status CRITICAL", critical, false, ""},
	}
	for _, tc := range tests {
		t.Run(tc.cond, func(t *testing.T) {
			fire, value := evalCondition(tc.cond, tc.r)
			if fire != tc.wantFire {
				t.Errorf("fires: got %v, want %v", fire, tc.wantFire)
			}
			if value != tc.wantValue {
				t.Errorf("value: got %q, want %q", value, tc.wantValue)
			}
		})
	}
}

func TestCompareFloat(t *testing.T) {
	tests := []struct {
		v, threshold float64
		op           string
		want         bool
	}{
		{2, 1, ">", true},
		{1, 1, ">", false},
		{1, 1, ">=", true},
		{0, 1, "<", true},
		{1, 1, "<=", true},
		{1, 1, "==", true},
		{2, 1, "!=", true},
		{2, 1, "~", false},
	}
	for _, tc := range tests {
		if got := compareFloat(tc.v, tc.op, tc.threshold); got != tc.want {
			t.Errorf("compareFloat(%v %s %v): got %v, want %v", tc.v, tc.op, tc.threshold, got, tc.want)
		}
	}
}
