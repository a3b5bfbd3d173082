package api

import (
	"fmt"
	"time"

	"github.com/smokesignal/smokesignal/pkg/types"
)

// DiagnosticHint is one human-readable insight about a target's status.
// The UI displays these as chips on the target card; clicking one shows
// Detail.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip.
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
}

// computeDiagnostics derives hints from one target's result. age is how long
// ago the snapshot was accepted; stale adds a warning to every target.
func computeDiagnostics(name string, r types.TargetResult, stale bool, age time.Duration) []DiagnosticHint {
	hints := make([]DiagnosticHint, 0, 2)

	if stale {
		hints = append(hints, DiagnosticHint{
			Key:   "stale",
			Level: "warning",
			Title: "Stale data",
			Detail: fmt.Sprintf(
				"No new snapshot has arrived for %s. The status shown for %s may no "+
					"longer reflect the feed. Check that the agent is running and can "+
					"reach the server.",
				age.Round(time.Second), name,
			),
		})
	}

	switch r.Status {
	case types.StatusCritical:
		hints = append(hints, DiagnosticHint{
			Key:   "outage_reports",
			Level: "critical",
			Title: "Outage reports",
			Detail: fmt.Sprintf(
				"Enough recent posts about %s mention outage keywords such as \"down\" "+
					"or \"500\" to cross the outage threshold. Users are "+
					"likely unable to use the service right now. Check the vendor status "+
					"page before assuming a local problem.",
				name,
			),
		})

	case types.StatusWarning:
		hints = append(hints, DiagnosticHint{
			Key:   "lag_reports",
			Level: "warning",
			Title: "Lag reports",
			Detail: fmt.Sprintf(
				"Several recent posts about %s complain about slowness or "+
					"timeouts. The service is probably up but degraded. Outage reports "+
					"stay below the outage threshold.",
				name,
			),
		})

	case types.StatusUnknown:
		hints = append(hints, DiagnosticHint{
			Key:   "no_data",
			Level: "info",
			Title: "No data",
			Detail: fmt.Sprintf(
				"The agent could not fetch or parse the feed for %s during its last "+
					"cycle, so no judgement was made. This is usually a transient network "+
					"problem or rate limiting by the feed host. The next cycle will retry.",
				name,
			),
		})

	case types.StatusNormal:
		if !stale {
			hints = append(hints, DiagnosticHint{
				Key:    "healthy",
				Level:  "ok",
				Title:  "All quiet",
				Detail: fmt.Sprintf("Recent posts about %s do not show a notable volume of complaints.", name),
			})
		}
	}

	return hints
}
