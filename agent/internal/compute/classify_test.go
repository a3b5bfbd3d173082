package compute

import "testing"

var (
	testOutage      = []string{"down", "outage", "error"}
	testDegradation = []string{"slow", "lag", "taking forever"}
)

func TestClassify(t *testing.T) {
	tests := []struct {
		title string
		want  Category
	}{
		{"Is it down for everyone?", CategoryOutage},
		{"Major OUTAGE right now", CategoryOutage},
		{"so slow today", CategoryDegradation},
		{"Responses TAKING FOREVER", CategoryDegradation},
		{"Love the new release", CategoryNone},
		{"", CategoryNone},
		// Outage takes precedence when both vocabularies match.
		{"slow then down", CategoryOutage},
		{"error after lag", CategoryOutage},
		// Substring containment is intentionally permissive.
		{"Download link for the app", CategoryOutage},
		{"Flagged my post", CategoryDegradation},
	}
	for _, tc := range tests {
		t.Run(tc.title, func(t *testing.T) {
			if got := Classify(tc.title, testOutage, testDegradation); got != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.title, got, tc.want)
			}
		})
	}
}

func TestClassify_KeywordCaseIgnored(t *testing.T) {
	if got := Classify("server is down", []string{"DOWN"}, nil); got != CategoryOutage {
		t.Errorf("upper-case keyword: got %v, want outage", got)
	}
}

func TestClassify_EmptyKeywordNeverMatches(t *testing.T) {
	if got := Classify("anything at all", []string{""}, []string{""}); got != CategoryNone {
		t.Errorf("empty keywords: got %v, want none", got)
	}
}

func TestClassify_NoKeywords(t *testing.T) {
	if got := Classify("down slow error", nil, nil); got != CategoryNone {
		t.Errorf("nil keywords: got %v, want none", got)
	}
}

func TestMatcher_Reuse(t *testing.T) {
	m := NewMatcher(Keywords{Outage: testOutage, Degradation: testDegradation})
	titles := []string{"down", "slow", "fine", "DOWN", "Lag"}
	want := []Category{CategoryOutage, CategoryDegradation, CategoryNone, CategoryOutage, CategoryDegradation}
	for i, title := range titles {
		if got := m.Classify(title); got != want[i] {
			t.Errorf("Classify(%q) = %v, want %v", title, got, want[i])
		}
	}
}

func TestCategory_String(t *testing.T) {
	if CategoryOutage.String() != "outage" || CategoryDegradation.String() != "degradation" || CategoryNone.String() != "none" {
		t.Error("unexpected Category string values")
	}
}
