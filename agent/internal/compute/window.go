package compute

import (
	"time"

	"github.com/smokesignal/smokesignal/agent/internal/feed"
)

// RecencyWindow is the maximum age of an entry that still counts.
const RecencyWindow = 2 * time.Hour

// MaxEntries is how many leading feed entries are examined per cycle.
const MaxEntries = 25

// Filter returns the entries among the first limit that were published no
// more than RecencyWindow before now. An entry exactly RecencyWindow old is
// kept. Entries without a publish time are dropped; entries dated after now
// are kept. Input order is preserved. limit <= 0 examines every entry.
func Filter(entries []feed.Entry, now time.Time, limit int) []feed.Entry {
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]feed.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Published.IsZero() {
			continue
		}
		if now.Sub(e.Published) > RecencyWindow {
			continue
		}
		out = append(out, e)
	}
	return out
}
