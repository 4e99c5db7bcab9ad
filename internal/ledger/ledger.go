// Package ledger records eaten items against the daily calorie budget.
//
// Calorie estimates come from the text-generation collaborator; the only
// structure assumed in its reply is "first integer substring". An estimate
// below the plausibility floor earns exactly one re-estimation request before
// the entry is rejected.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/calorico-bot/calorico/internal/models"
)

// MinPlausibleCalories is the floor below which a parsed estimate is treated
// as a likely mistake for a reported meal.
const MinPlausibleCalories = 50

// Generator produces free-form text for a prompt. It is satisfied by the
// genai client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result reports the outcome of a Record call.
type Result struct {
	Accepted  bool
	Entry     models.EatenEntry
	Total     int
	Remaining int
}

// Recorder appends estimated entries to a session's daily ledger.
type Recorder struct {
	gen Generator
}

// NewRecorder creates a Recorder backed by a text generator.
func NewRecorder(gen Generator) *Recorder {
	return &Recorder{gen: gen}
}

var firstInt = regexp.MustCompile(`\d+`)

// ParseEstimate extracts the first integer substring from a collaborator
// reply. A reply with no integer yields (0, false).
func ParseEstimate(response string) (int, bool) {
	m := firstInt.FindString(response)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Record estimates calories for description and, if plausible, appends the
// entry to the session ledger. On rejection or failure the ledger is left
// exactly as it was.
func (r *Recorder) Record(ctx context.Context, sess *models.Session, description string) (Result, error) {
	budget := sess.Profile.CalorieBudget
	unchanged := Result{
		Accepted:  false,
		Total:     sess.Ledger.Total(),
		Remaining: sess.Ledger.Remaining(budget),
	}

	prompt := EstimatePrompt(description)
	response, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Recorder estimate request failed", "user", sess.UserID, "error", err)
		return unchanged, fmt.Errorf("calorie estimate: %w", err)
	}

	calories, parsed := ParseEstimate(response)
	if !parsed {
		// No integer at all: estimate is 0 by contract. The single retry
		// is reserved for a successfully parsed implausible value.
		slog.Warn("Recorder estimate unparseable", "user", sess.UserID, "description", description)
		return unchanged, nil
	}

	if calories < MinPlausibleCalories {
		slog.Debug("Recorder estimate below floor, retrying once",
			"user", sess.UserID, "estimate", calories)
		retry, err := r.gen.Generate(ctx, prompt+"\n"+retryInstruction)
		if err != nil {
			slog.Error("Recorder retry request failed", "user", sess.UserID, "error", err)
			return unchanged, fmt.Errorf("calorie re-estimate: %w", err)
		}
		retryCalories, retryParsed := ParseEstimate(retry)
		if !retryParsed || retryCalories < MinPlausibleCalories {
			slog.Info("Recorder entry rejected after retry",
				"user", sess.UserID, "first", calories, "retry", retryCalories)
			return unchanged, nil
		}
		calories = retryCalories
	}

	entry := models.EatenEntry{Description: description, Calories: calories}
	sess.Ledger.Append(entry)
	return Result{
		Accepted:  true,
		Entry:     entry,
		Total:     sess.Ledger.Total(),
		Remaining: sess.Ledger.Remaining(budget),
	}, nil
}

// FinishDay clears the ledger; remaining returns to the full budget. The
// budget itself is untouched.
func FinishDay(sess *models.Session) {
	sess.Ledger.Reset()
}

const retryInstruction = "שים לב: התוצאה שחישבת נמוכה מ-50 קלוריות, כנראה יש טעות. " +
	"אנא הערך מחדש והחזר תשובה ריאלית בלבד."

// EstimatePrompt builds the calorie-estimation prompt, anchored by a worked
// example so the reply format stays parseable.
func EstimatePrompt(meal string) string {
	var b strings.Builder
	b.WriteString("עבור הארוחה הבאה: ")
	b.WriteString(meal)
	b.WriteString("\n")
	b.WriteString("פירוט כל פריט בשורה נפרדת: שם, כמות (אם יש), קלוריות, חלבון (גרם).\n")
	b.WriteString("בסוף, כתוב שורה מסכמת: סה\"כ קלוריות, סה\"כ חלבון.\n")
	b.WriteString("אל תוסיף טקסט נוסף, רק טבלה פשוטה. אם יש שתייה מתוקה, כלול גם אותה.\n")
	b.WriteString("דוגמה:\n")
	b.WriteString("קלט: 2 ביצים, 2 פרוסות לחם, כף חמאה, סלט ירקות.\n")
	b.WriteString("פלט:\n")
	b.WriteString("ביצים (2): 140 קלוריות, 12 גרם חלבון\n")
	b.WriteString("לחם לבן (2 פרוסות): 140 קלוריות, 4 גרם חלבון\n")
	b.WriteString("חמאה (כף): 100 קלוריות, 0 גרם חלבון\n")
	b.WriteString("סלט ירקות: 30 קלוריות, 1 גרם חלבון\n")
	b.WriteString("סה\"כ: 410 קלוריות, 17 גרם חלבון")
	return b.String()
}
