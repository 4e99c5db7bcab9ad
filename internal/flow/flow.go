// Package flow implements the intake questionnaire as a table-driven
// state machine over models.Session. Each state renders a prompt and
// validates one answer; invalid answers re-render the same prompt
// without advancing.
package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calorico-bot/calorico/internal/models"
	"github.com/calorico-bot/calorico/internal/nutrition"
)

// Prompt is one outgoing message. A non-empty Options slice is rendered
// as a quick-reply keyboard; an empty one removes any open keyboard.
type Prompt struct {
	Text    string
	Options []string
}

// Result is what the engine wants sent back to the user after a turn.
type Result struct {
	Prompts []Prompt
	Done    bool
}

// outcome is the verdict of applying one answer in a state.
type outcome struct {
	next    models.StateType
	reject  string
	notices []string
}

type step struct {
	prompt func(sess *models.Session) Prompt
	apply  func(sess *models.Session, input string) outcome
}

// Begin returns the prompt for the session's current state.
func Begin(sess *models.Session) Result {
	st, ok := steps[sess.State]
	if !ok {
		return Result{}
	}
	return Result{Prompts: []Prompt{st.prompt(sess)}}
}

// Advance feeds one user answer through the current state. On a valid
// answer the session moves to the next state and its prompt is
// returned; on rejection the same state's prompt is re-sent preceded by
// the rejection text.
func Advance(sess *models.Session, input string) (Result, error) {
	st, ok := steps[sess.State]
	if !ok {
		return Result{}, fmt.Errorf("advance from %s: %w", sess.State, models.ErrUnknownState)
	}
	input = strings.TrimSpace(input)

	out := st.apply(sess, input)
	if out.reject != "" {
		return Result{Prompts: []Prompt{
			{Text: out.reject},
			st.prompt(sess),
		}}, nil
	}
	if out.next == sess.State {
		// Multi-select toggle: stay and re-render.
		return Result{Prompts: []Prompt{st.prompt(sess)}}, nil
	}

	sess.State = out.next
	sess.ResetSelection()

	var res Result
	for _, n := range out.notices {
		res.Prompts = append(res.Prompts, Prompt{Text: n})
	}
	if out.next == models.StateDone {
		res.Done = true
		return res, nil
	}
	next, ok := steps[out.next]
	if !ok {
		return res, fmt.Errorf("no step for %s: %w", out.next, models.ErrUnknownState)
	}
	res.Prompts = append(res.Prompts, next.prompt(sess))
	return res, nil
}

// parseIntIn accepts only a bare integer inside [lo, hi].
func parseIntIn(input string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// parseFloatIn accepts an integer or decimal inside [lo, hi].
func parseFloatIn(input string, lo, hi float64) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(input, ",", ".")), 64)
	if err != nil || f < lo || f > hi {
		return 0, false
	}
	return f, true
}

// isNoneAnswer reports whether a free-text answer means "nothing".
func isNoneAnswer(input string) bool {
	t := strings.TrimSpace(input)
	for _, w := range noneWords {
		if t == w || strings.HasPrefix(t, w+" ") {
			return true
		}
	}
	return false
}

// toggleOptions renders a multi-select option list, marking the
// already-selected entries.
func toggleOptions(sess *models.Session, base []string, doneBtn string) []string {
	opts := make([]string, 0, len(base)+1)
	for _, o := range base {
		if sess.Selected[o] {
			opts = append(opts, o+selectedMark)
		} else {
			opts = append(opts, o)
		}
	}
	opts = append(opts, doneBtn)
	return opts
}

// applyToggle flips one selection. The done button is handled by the
// caller before this is reached.
func applyToggle(sess *models.Session, base []string, input string) bool {
	label := strings.TrimSuffix(input, selectedMark)
	for _, o := range base {
		if o == label {
			if sess.Selected[o] {
				delete(sess.Selected, o)
			} else {
				sess.Selected[o] = true
			}
			return true
		}
	}
	return false
}

// selectedList returns the chosen options in their menu order.
func selectedList(sess *models.Session, base []string) []string {
	var out []string
	for _, o := range base {
		if sess.Selected[o] {
			out = append(out, o)
		}
	}
	return out
}

// completionNotices summarizes the finished intake.
func completionNotices(sess *models.Session) []string {
	p := &sess.Profile
	return []string{
		fmt.Sprintf("תודה %s! סיימנו את שאלון ההיכרות.\nהתקציב הקלורי היומי שלך הוא %d קלוריות.", p.Name, p.CalorieBudget),
		fmt.Sprintf("מומלץ לשתות %s ביום.", nutrition.WaterRecommendation(p.WeightKg)),
		"מעכשיו אפשר פשוט לכתוב לי מה אכלת ואני אעקוב אחרי הקלוריות. אפשר גם לשאול אותי כל שאלה על תזונה.",
	}
}
