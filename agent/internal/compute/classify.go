package compute

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category is the signal an entry title carries.
type Category int

const (
	CategoryNone Category = iota
	CategoryOutage
	CategoryDegradation
)

func (c Category) String() string {
	switch c {
	case CategoryOutage:
		return "outage"
	case CategoryDegradation:
		return "degradation"
	default:
		return "none"
	}
}

// Keywords is a target's complaint vocabulary.
type Keywords struct {
	Outage      []string
	Degradation []string
}

// Matcher classifies titles against one Keywords set. Keywords are folded
// once at construction. A Matcher must not be shared between goroutines.
type Matcher struct {
	fold        cases.Caser
	outage      []string
	degradation []string
}

// NewMatcher folds kw and returns a ready Matcher. Empty keywords are dropped
// since they would match every title.
func NewMatcher(kw Keywords) *Matcher {
	m := &Matcher{fold: cases.Fold()}
	m.outage = m.foldAll(kw.Outage)
	m.degradation = m.foldAll(kw.Degradation)
	return m
}

// Classify returns CategoryOutage if the title contains any outage keyword,
// otherwise CategoryDegradation if it contains any degradation keyword,
// otherwise CategoryNone.
func (m *Matcher) Classify(title string) Category {
	t := m.fold.String(title)
	if containsAny(t, m.outage) {
		return CategoryOutage
	}
	if containsAny(t, m.degradation) {
		return CategoryDegradation
	}
	return CategoryNone
}

// Classify is a one-shot convenience over NewMatcher.
func Classify(title string, outage, degradation []string) Category {
	return NewMatcher(Keywords{Outage: outage, Degradation: degradation}).Classify(title)
}

func (m *Matcher) foldAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, m.fold.String(w))
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
