package compute

import (
	"time"

	"github.com/smokesignal/smokesignal/agent/internal/feed"
	"github.com/smokesignal/smokesignal/pkg/types"
)

// Counts is the tally behind one Evaluation.
type Counts struct {
	Examined    int // entries considered after the MaxEntries cap
	InWindow    int // entries that passed the window filter
	Outage      int
	Degradation int
}

// Evaluation is the outcome of one target's cycle.
type Evaluation struct {
	Counts Counts
	Result types.TargetResult
}

// Evaluate filters entries to the recency window, classifies each survivor
// and aggregates the counts. It is pure: the same inputs give the same output.
func Evaluate(entries []feed.Entry, kw Keywords, now time.Time) Evaluation {
	examined := len(entries)
	if examined > MaxEntries {
		examined = MaxEntries
	}
	recent := Filter(entries, now, MaxEntries)

	c := Counts{Examined: examined, InWindow: len(recent)}
	m := NewMatcher(kw)
	for _, e := range recent {
		switch m.Classify(e.Title) {
		case CategoryOutage:
			c.Outage++
		case CategoryDegradation:
			c.Degradation++
		}
	}

	return Evaluation{
		Counts: c,
		Result: Aggregate(c.Outage, c.Degradation),
	}
}
