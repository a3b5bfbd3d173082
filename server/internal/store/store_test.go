package store

import (
	"sync"
	"testing"
	"time"

	"github.com/smokesignal/smokesignal/pkg/types"
)

func result(st types.Status) types.TargetResult {
	return types.TargetResult{Status: st}
}

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestPutAndLatest(t *testing.T) {
	st := New(5 * time.Minute)
	gen := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	st.Put(types.Snapshot{"Claude": result(types.StatusNormal)}, "agent-1", gen)

	e, ok := st.Latest()
	if !ok {
		t.Fatal("Latest: expected entry, got none")
	}
	if e.Origin != "agent-1" || !e.GeneratedAt.Equal(gen) {
		t.Errorf("provenance: got origin=%q generated=%v", e.Origin, e.GeneratedAt)
	}
	if e.Snapshot["Claude"].Status != types.StatusNormal {
		t.Errorf("Claude status: got %q", e.Snapshot["Claude"].Status)
	}
}

func TestLatest_Empty(t *testing.T) {
	st := New(5 * time.Minute)
	if _, ok := st.Latest(); ok {
		t.Fatal("Latest on empty store: expected false, got true")
	}
	if _, ok := st.Get("Claude"); ok {
		t.Fatal("Get on empty store: expected false, got true")
	}
}

func TestPut_FullReplace(t *testing.T) {
	st := New(5 * time.Minute)
	st.Put(types.Snapshot{"A": result(types.StatusNormal), "B": result(types.StatusNormal)}, "x", time.Time{})
	st.Put(types.Snapshot{"A": result(types.StatusCritical)}, "x", time.Time{})

	if r, ok := st.Get("A"); !ok || r.Status != types.StatusCritical {
		t.Errorf("A: got %+v, %v", r, ok)
	}
	if _, ok := st.Get("B"); ok {
		t.Error("B survived a full replacement")
	}
}

func TestPut_CopiesSnapshot(t *testing.T) {
	st := New(time.Minute)
	snap := types.Snapshot{"A": result(types.StatusNormal)}
	st.Put(snap, "x", time.Time{})
	snap["A"] = result(types.StatusCritical)

	if r, _ := st.Get("A"); r.Status != types.StatusNormal {
		t.Errorf("caller mutation leaked into store: %q", r.Status)
	}
}

func TestStale(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	st := New(10 * time.Minute)
	st.now = fixedClock(base)

	if st.Stale() {
		t.Error("empty store reported stale")
	}
	st.Put(types.Snapshot{"A": result(types.StatusNormal)}, "x", time.Time{})

	st.now = fixedClock(base.Add(10 * time.Minute))
	if st.Stale() {
		t.Error("snapshot exactly StaleAfter old reported stale")
	}
	st.now = fixedClock(base.Add(11 * time.Minute))
	if !st.Stale() {
		t.Error("snapshot older than StaleAfter not reported stale")
	}
}

func TestStale_Disabled(t *testing.T) {
	base := time.Now()
	st := New(0)
	st.now = fixedClock(base)
	st.Put(types.Snapshot{}, "x", time.Time{})
	st.now = fixedClock(base.Add(100 * time.Hour))
	if st.Stale() {
		t.Error("StaleAfter=0 must never report stale")
	}
}

func TestOnPut_Notified(t *testing.T) {
	st := New(time.Minute)
	var got []*Entry
	st.OnPut(func(e *Entry) { got = append(got, e) })

	st.Put(types.Snapshot{"A": result(types.StatusWarning)}, "x", time.Time{})
	st.Put(types.Snapshot{"A": result(types.StatusNormal)}, "x", time.Time{})

	if len(got) != 2 {
		t.Fatalf("subscriber calls: got %d, want 2", len(got))
	}
	if got[1].Snapshot["A"].Status != types.StatusNormal {
		t.Errorf("second entry: got %q", got[1].Snapshot["A"].Status)
	}
}

func TestConcurrentAccess(t *testing.T) {
	st := New(5 * time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.Put(types.Snapshot{"A": result(types.StatusNormal)}, "x", time.Time{})
		}()
		go func() {
			defer wg.Done()
			st.Latest()
			st.Get("A")
			st.Stale()
		}()
	}
	wg.Wait()
	if _, ok := st.Latest(); !ok {
		t.Error("expected an entry after concurrent puts")
	}
}
