// Package classify decides what an unstructured inbound message means once
// the intake questionnaire is complete.
//
// Rules are evaluated in strict priority order, first match wins:
// historical query, question, food report, other. The ordering is a hard
// contract: "what did I eat yesterday" is a historical query, never a fresh
// food report.
package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind is the classification outcome.
type Kind string

const (
	KindHistorical Kind = "historical"
	KindQuestion   Kind = "question"
	KindFoodReport Kind = "food_report"
	KindOther      Kind = "other"
)

// Intent is the classified interpretation of one inbound message.
type Intent struct {
	Kind Kind
	// Date is the resolved calendar day for historical queries.
	Date time.Time
}

var consumptionKeywords = []string{
	"אכלתי", "שתיתי", "צרכתי", "אכל", "שתה", "אכלה", "שתתה",
	"היה לי", "היתה לי", "קלוריות",
	"ate", "eat", "drank", "drink", "consumed", "calories",
}

var questionPrefixes = []string{
	"מה", "האם", "כמה", "איך", "מתי", "איפה", "למה", "מי", "אפשר", "מותר", "איזה",
	"what", "how", "when", "where", "why", "who", "can", "is", "do", "does",
}

var hebrewWeekdays = map[string]time.Weekday{
	"ראשון": time.Sunday,
	"שני":   time.Monday,
	"שלישי": time.Tuesday,
	"רביעי": time.Wednesday,
	"חמישי": time.Thursday,
	"שישי":  time.Friday,
	"שבת":   time.Saturday,
}

var englishWeekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var (
	daysAgoHebrew  = regexp.MustCompile(`לפני (\d+) ימים`)
	daysAgoEnglish = regexp.MustCompile(`(\d+) days? ago`)
	dateYMD        = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	dateDMY        = regexp.MustCompile(`(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})`)
)

// Classify interprets text relative to the current time. now supplies the
// reference day for temporal resolution.
func Classify(text string, now time.Time) Intent {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	// Rule 1: historical query, a temporal indicator plus a consumption keyword.
	if date, ok := resolveDate(lower, now); ok && containsConsumption(lower) {
		return Intent{Kind: KindHistorical, Date: date}
	}

	// Rule 2: question, a trailing question mark or interrogative opening word.
	if strings.HasSuffix(trimmed, "?") || startsWithQuestionWord(lower) {
		return Intent{Kind: KindQuestion}
	}

	// Rule 3: food report, a consumption keyword without a temporal anchor.
	if containsConsumption(lower) {
		return Intent{Kind: KindFoodReport}
	}

	return Intent{Kind: KindOther}
}

// ResolveDate exposes temporal resolution for callers that already know the
// message is historical.
func ResolveDate(text string, now time.Time) (time.Time, bool) {
	return resolveDate(strings.ToLower(text), now)
}

func resolveDate(lower string, now time.Time) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Day-before-yesterday before yesterday: "שלשום" does not contain
	// "אתמול", but "yesterday" is a substring of "day before yesterday".
	switch {
	case strings.Contains(lower, "שלשום"), strings.Contains(lower, "day before yesterday"):
		return today.AddDate(0, 0, -2), true
	case strings.Contains(lower, "אתמול"), strings.Contains(lower, "yesterday"):
		return today.AddDate(0, 0, -1), true
	}

	if m := daysAgoHebrew.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, -n), true
	}
	if m := daysAgoEnglish.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, -n), true
	}

	if m := dateYMD.FindStringSubmatch(lower); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()), true
	}
	if m := dateDMY.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location()), true
	}

	if wd, ok := findWeekday(lower); ok {
		return lastOccurrence(today, wd), true
	}

	return time.Time{}, false
}

func findWeekday(lower string) (time.Weekday, bool) {
	if strings.Contains(lower, "יום") || strings.Contains(lower, "בשבת") || strings.Contains(lower, "שבת") {
		for name, wd := range hebrewWeekdays {
			if strings.Contains(lower, name) {
				return wd, true
			}
		}
	}
	for name, wd := range englishWeekdays {
		if strings.Contains(lower, name) {
			return wd, true
		}
	}
	return 0, false
}

// lastOccurrence returns the most recent past occurrence of wd, today
// excluded: a weekday naming today resolves to seven days prior.
func lastOccurrence(today time.Time, wd time.Weekday) time.Time {
	delta := int(today.Weekday()) - int(wd)
	if delta <= 0 {
		delta += 7
	}
	return today.AddDate(0, 0, -delta)
}

func containsConsumption(lower string) bool {
	for _, kw := range consumptionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func startsWithQuestionWord(lower string) bool {
	first, _, _ := strings.Cut(lower, " ")
	for _, w := range questionPrefixes {
		if first == w {
			return true
		}
	}
	return false
}
