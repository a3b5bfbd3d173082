package alerts

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/bytedance/sonic"
)

// Webhook event names carried by the generic http payload.
const (
	eventFiring   = "alert.firing"
	eventResolved = "alert.resolved"
)

// notice is an alert event rendered once and shared by every webhook format.
type notice struct {
	label string // [CRITICAL], [WARNING], [INFO] or [RESOLVED]
	color string // hex without '#'
	title string
	facts [][2]string
}

func render(a *Alert) notice {
	n := notice{
		label: "[INFO]",
		color: "00D4FF",
		title: fmt.Sprintf("SmokeSignal Alert: %s on %s", a.RuleName, a.Target),
		facts: [][2]string{
			{"Target", a.Target},
			{"Rule", a.RuleName},
			{"Observed", a.Value},
			{"Fired", a.FiredAt.UTC().Format("2006-01-02 15:04:05 MST")},
		},
	}
	switch {
	case a.State == StateResolved:
		n.label, n.color = "[RESOLVED]", "2EB67D"
		if a.ResolvedAt != nil {
			n.facts = append(n.facts, [2]string{"Resolved", a.ResolvedAt.UTC().Format("2006-01-02 15:04:05 MST")})
		}
	case a.Severity == "critical":
		n.label, n.color = "[CRITICAL]", "FF4F6A"
	case a.Severity == "warning":
		n.label, n.color = "[WARNING]", "FFAB40"
	}
	return n
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Fields []slackField `json:"fields"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type teamsCard struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor"`
	Summary    string         `json:"summary"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []teamsSection `json:"sections"`
}

type teamsSection struct {
	Facts []teamsFact `json:"facts"`
}

type teamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type httpEvent struct {
	Event string `json:"event"`
	Alert *Alert `json:"alert"`
}

// payloadFor builds the request body for one webhook kind.
func payloadFor(kind string, a *Alert) (any, error) {
	n := render(a)
	switch kind {
	case "slack":
		msg := slackMessage{
			Text:        fmt.Sprintf("*%s* %s", n.label, a.Message),
			Attachments: []slackAttachment{{Color: "#" + n.color}},
		}
		for _, f := range n.facts {
			msg.Attachments[0].Fields = append(msg.Attachments[0].Fields,
				slackField{Title: f[0], Value: f[1], Short: true})
		}
		return msg, nil

	case "teams":
		card := teamsCard{
			Type:       "MessageCard",
			Context:    "http://schema.org/extensions",
			ThemeColor: n.color,
			Summary:    a.RuleName,
			Title:      n.label + " " + n.title,
			Text:       a.Message,
			Sections:   []teamsSection{{}},
		}
		for _, f := range n.facts {
			card.Sections[0].Facts = append(card.Sections[0].Facts, teamsFact{Name: f[0], Value: f[1]})
		}
		return card, nil

	case "http":
		ev := httpEvent{Event: eventFiring, Alert: a}
		if a.State == StateResolved {
			ev.Event = eventResolved
		}
		return ev, nil
	}
	return nil, fmt.Errorf("unknown webhook type %q", kind)
}

// deliver posts a to every configured webhook. Failures are logged only.
func (e *Engine) deliver(a *Alert) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}
		payload, err := payloadFor(wh.Type, a)
		if err == nil {
			err = e.send(url, payload)
		}
		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type, "rule", a.RuleName, "target", a.Target, "err", err)
			continue
		}
		slog.Debug("alerts: webhook delivered",
			"type", wh.Type, "rule", a.RuleName, "target", a.Target, "state", a.State)
	}
}

// send POSTs payload as JSON. Any status of 400 or above is an error.
func (e *Engine) send(url string, payload any) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	resp, err := e.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
