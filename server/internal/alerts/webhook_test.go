package alerts

import (
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func firingAlert() *Alert {
	return &Alert{
		ID:       "outage:GPT-4:1",
		RuleName: "outage",
		Target:   "GPT-4",
		Severity: "critical",
		Message:  "GPT-4 is CRITICAL",
		Value:    "CRITICAL",
		FiredAt:  t0,
		State:    StateFiring,
	}
}

func encode(t *testing.T, kind string, a *Alert) string {
	t.Helper()
	payload, err := payloadFor(kind, a)
	if err != nil {
		t.Fatalf("payloadFor(%q): %v", kind, err)
	}
	b, err := sonic.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestPayloadFor_Slack(t *testing.T) {
	body := encode(t, "slack", firingAlert())
	for _, want := range []string{`*[CRITICAL]* GPT-4 is CRITICAL`, `"color":"#FF4F6A"`, `"value":"GPT-4"`} {
		if !strings.Contains(body, want) {
			t.Errorf("slack payload missing %q: %s", want, body)
		}
	}
}

func TestPayloadFor_TeamsResolved(t *testing.T) {
	a := firingAlert()
	resolvedAt := t0.Add(5 * time.Minute)
	a.State, a.ResolvedAt = StateResolved, &resolvedAt

	body := encode(t, "teams", a)
	for _, want := range []string{
		`"@type":"MessageCard"`,
		`"themeColor":"2EB67D"`,
		`[RESOLVED] SmokeSignal Alert: outage on GPT-4`,
		`"name":"Resolved"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("teams payload missing %q: %s", want, body)
		}
	}
}

func TestPayloadFor_HTTPEvent(t *testing.T) {
	if body := encode(t, "http", firingAlert()); !strings.Contains(body, `"event":"alert.firing"`) {
		t.Errorf("firing event: %s", body)
	}
	a := firingAlert()
	a.State = StateResolved
	if body := encode(t, "http", a); !strings.Contains(body, `"event":"alert.resolved"`) {
		t.Errorf("resolved event: %s", body)
	}
}

func TestPayloadFor_UnknownKind(t *testing.T) {
	if _, err := payloadFor("pagerduty", firingAlert()); err == nil {
		t.Error("expected error for unknown webhook type")
	}
}
