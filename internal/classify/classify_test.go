package classify

import (
	"testing"
	"time"
)

// Wednesday, fixed reference point for temporal resolution.
var now = time.Date(2025, 6, 18, 14, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyPriorityOrder(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		// Temporal + consumption beats the question rule even with an
		// interrogative opener.
		{"מה אכלתי אתמול", KindHistorical},
		{"what did I eat yesterday", KindHistorical},
		{"כמה קלוריות צרכתי שלשום", KindHistorical},
		// Question mark wins without a temporal anchor, even with no
		// consumption verb at all.
		{"כמה קלוריות יש בתפוח?", KindQuestion},
		{"האם מותר לי קינוח", KindQuestion},
		// Consumption verb, no temporal anchor, no question marker.
		{"אכלתי שניצל עם אורז", KindFoodReport},
		{"שתיתי כוס קולה", KindFoodReport},
		// Nothing matched.
		{"בוקר טוב", KindOther},
		{"", KindOther},
	}
	for _, tc := range cases {
		if got := Classify(tc.text, now); got.Kind != tc.want {
			t.Errorf("Classify(%q).Kind = %s, want %s", tc.text, got.Kind, tc.want)
		}
	}
}

func TestResolveRelativeDays(t *testing.T) {
	cases := []struct {
		text string
		want time.Time
	}{
		{"מה אכלתי אתמול", day(2025, 6, 17)},
		{"מה אכלתי שלשום", day(2025, 6, 16)},
		{"מה אכלתי לפני 5 ימים", day(2025, 6, 13)},
		{"what did I eat 3 days ago", day(2025, 6, 15)},
	}
	for _, tc := range cases {
		got := Classify(tc.text, now)
		if got.Kind != KindHistorical {
			t.Fatalf("Classify(%q).Kind = %s, want historical", tc.text, got.Kind)
		}
		if !got.Date.Equal(tc.want) {
			t.Errorf("Classify(%q).Date = %s, want %s", tc.text, got.Date, tc.want)
		}
	}
}

func TestResolveWeekday(t *testing.T) {
	// now is Wednesday 2025-06-18.
	cases := []struct {
		text string
		want time.Time
	}{
		{"מה אכלתי ביום שני", day(2025, 6, 16)},
		{"מה אכלתי ביום ראשון", day(2025, 6, 15)},
		// Naming today's weekday resolves a full week back, today excluded.
		{"מה אכלתי ביום רביעי", day(2025, 6, 11)},
		{"what did I eat on monday", day(2025, 6, 16)},
	}
	for _, tc := range cases {
		got := Classify(tc.text, now)
		if got.Kind != KindHistorical {
			t.Fatalf("Classify(%q).Kind = %s, want historical", tc.text, got.Kind)
		}
		if !got.Date.Equal(tc.want) {
			t.Errorf("Classify(%q).Date = %s, want %s", tc.text, got.Date, tc.want)
		}
	}
}

func TestResolveExplicitDates(t *testing.T) {
	cases := []struct {
		text string
		want time.Time
	}{
		{"כמה אכלתי ב-02/06/2025", day(2025, 6, 2)},
		{"כמה אכלתי ב-2025-06-02", day(2025, 6, 2)},
		{"מה אכלתי ב-1.6.25", day(2025, 6, 1)},
	}
	for _, tc := range cases {
		got := Classify(tc.text, now)
		if got.Kind != KindHistorical {
			t.Fatalf("Classify(%q).Kind = %s, want historical", tc.text, got.Kind)
		}
		if !got.Date.Equal(tc.want) {
			t.Errorf("Classify(%q).Date = %s, want %s", tc.text, got.Date, tc.want)
		}
	}
}

func TestTemporalWithoutConsumptionIsNotHistorical(t *testing.T) {
	// A date with no eating context should not trigger a food-log lookup.
	got := Classify("אתמול היה יום יפה", now)
	if got.Kind == KindHistorical {
		t.Errorf("Classify() = historical, want non-historical for %q", "אתמול היה יום יפה")
	}
}
