package types

import (
	"fmt"
	"sort"
)

// Status is the coarse health classification of one monitored target.
type Status string

// Status values as they appear on the wire.
const (
	StatusNormal   Status = "NORMAL"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
	StatusUnknown  Status = "UNKNOWN"
)

// Display colours attached to a TargetResult.
const (
	ColorRed    = "red"
	ColorYellow = "yellow"
	ColorGreen  = "green"
)

// Severity orders the known statuses: Normal (0) < Warning (1) < Critical (2).
// Unknown sits outside the order and reports -1.
func (s Status) Severity() int {
	switch s {
	case StatusNormal:
		return 0
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is one of the four defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusWarning, StatusCritical, StatusUnknown:
		return true
	}
	return false
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("types: unknown status %q", s)
	}
	return st, nil
}

// TargetResult is the per-target outcome of one monitoring cycle.
// All four fields are plain strings so consumers can render them directly.
type TargetResult struct {
	Status    Status `json:"status"`
	Sentiment string `json:"sentiment"`
	Latency   string `json:"latency"`
	Color     string `json:"color"`
}

// Snapshot maps target name to its result for a single cycle.
// A snapshot always replaces the previous one in full.
type Snapshot map[string]TargetResult

// Names returns the target names in lexical order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every entry has a name and a known status.
func (s Snapshot) Validate() error {
	for name, r := range s {
		if name == "" {
			return fmt.Errorf("types: snapshot contains an empty target name")
		}
		if !r.Status.Valid() {
			return fmt.Errorf("types: target %q: unknown status %q", name, r.Status)
		}
	}
	return nil
}

// Worst returns the most severe status present. Unknown is reported only when
// no target has a known status. An empty snapshot yields Unknown.
func (s Snapshot) Worst() Status {
	worst := StatusUnknown
	for _, r := range s {
		if r.Status.Severity() > worst.Severity() {
			worst = r.Status
		}
	}
	return worst
}

// Counts tallies targets per status.
func (s Snapshot) Counts() map[Status]int {
	out := make(map[Status]int, 4)
	for _, r := range s {
		out[r.Status]++
	}
	return out
}
