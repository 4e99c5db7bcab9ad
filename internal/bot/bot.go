// Package bot wires the transport, the questionnaire flow, the intent
// classifier, the calorie recorder, and the reminder loops into one
// engine.
//
// Inbound messages are fanned out to per-user mailboxes so each user's
// messages are handled strictly in order while users never block each
// other.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/calorico-bot/calorico/internal/classify"
	"github.com/calorico-bot/calorico/internal/flow"
	"github.com/calorico-bot/calorico/internal/ledger"
	"github.com/calorico-bot/calorico/internal/menu"
	"github.com/calorico-bot/calorico/internal/messaging"
	"github.com/calorico-bot/calorico/internal/models"
	"github.com/calorico-bot/calorico/internal/nutrition"
	"github.com/calorico-bot/calorico/internal/reminder"
	"github.com/calorico-bot/calorico/internal/store"
)

// Main-menu quick replies shown once the questionnaire is done.
const (
	BtnFinishDay = "סיימתי לאכול להיום"
	BtnDailyMenu = "תפריט יומי"
	BtnPantry    = "מה אפשר להכין ממה שיש בבית?"
)

const (
	mailboxSize = 16

	helpText = "אפשר פשוט לכתוב לי מה אכלת ואני ארשום את הקלוריות.\n" +
		"אפשר לשאול כל שאלה על תזונה, לבקש \"" + BtnDailyMenu + "\" או \"" + BtnPantry + "\",\n" +
		"ולשאול מה אכלת בימים קודמים (למשל \"מה אכלתי אתמול?\").\n" +
		"בסוף היום לוחצים \"" + BtnFinishDay + "\" לסיכום.\n" +
		"פקודות: /help לעזרה, /reset להתחלת השאלון מחדש."

	fallbackText = "לא הצלחתי להבין :) אפשר לכתוב לי מה אכלת, לשאול שאלה על תזונה, או לכתוב /help."
)

// Generator produces free-form answers. genai.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine is the conversation core. One Engine serves all users.
type Engine struct {
	msg       messaging.Service
	generator Generator
	recorder  *ledger.Recorder
	store     store.Store
	reminders *reminder.Manager

	now func() time.Time

	mu            sync.Mutex
	sessions      map[int64]*models.Session
	mailboxes     map[int64]chan string
	pantryPending map[int64]bool

	wg sync.WaitGroup
}

// NewEngine assembles an Engine from its collaborators.
func NewEngine(msg messaging.Service, generator Generator, st store.Store, reminders *reminder.Manager) *Engine {
	return &Engine{
		msg:           msg,
		generator:     generator,
		recorder:      ledger.NewRecorder(generator),
		store:         st,
		reminders:     reminders,
		now:           time.Now,
		sessions:      make(map[int64]*models.Session),
		mailboxes:     make(map[int64]chan string),
		pantryPending: make(map[int64]bool),
	}
}

// Run consumes the transport's inbound channel until it closes or the
// context is canceled, then waits for the per-user workers to drain.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("Bot engine running")
	for {
		select {
		case <-ctx.Done():
			e.closeMailboxes()
			e.wg.Wait()
			return
		case in, ok := <-e.msg.Responses():
			if !ok {
				e.closeMailboxes()
				e.wg.Wait()
				return
			}
			e.dispatch(ctx, in)
		}
	}
}

// dispatch routes one inbound message to its user's mailbox, creating
// the mailbox worker on first contact.
func (e *Engine) dispatch(ctx context.Context, in messaging.Inbound) {
	e.mu.Lock()
	box, ok := e.mailboxes[in.UserID]
	if !ok {
		box = make(chan string, mailboxSize)
		e.mailboxes[in.UserID] = box
		e.wg.Add(1)
		go e.worker(ctx, in.UserID, box)
	}
	e.mu.Unlock()

	select {
	case box <- in.Text:
	default:
		slog.Warn("Mailbox full, dropping message", "userID", in.UserID)
	}
}

func (e *Engine) worker(ctx context.Context, userID int64, box <-chan string) {
	defer e.wg.Done()
	for text := range box {
		e.handle(ctx, userID, text)
	}
}

func (e *Engine) closeMailboxes() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, box := range e.mailboxes {
		close(box)
		delete(e.mailboxes, id)
	}
}

// session returns the user's session, restoring a finished one from the
// stored profile if possible.
func (e *Engine) session(userID int64) *models.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sess, ok := e.sessions[userID]; ok {
		return sess
	}
	sess := models.NewSession(userID)
	if p, err := e.store.LoadProfile(userID); err == nil && p.Complete() {
		sess.Profile = p
		sess.State = models.StateDone
		slog.Info("Session restored from stored profile", "userID", userID)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("Profile load failed, starting fresh", "userID", userID, "error", err)
	}
	e.sessions[userID] = sess
	return sess
}

func (e *Engine) resetSession(userID int64) *models.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess := models.NewSession(userID)
	e.sessions[userID] = sess
	delete(e.pantryPending, userID)
	return sess
}

// handle processes one message for one user. It runs on the user's
// mailbox goroutine, so session access here needs no extra locking.
func (e *Engine) handle(ctx context.Context, userID int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	switch text {
	case "/help":
		e.send(ctx, userID, helpText, e.menuOptions(userID))
		return
	case "/start", "/reset":
		e.reminders.Stop(userID)
		sess := e.resetSession(userID)
		e.sendResult(ctx, userID, flow.Begin(sess))
		return
	}

	sess := e.session(userID)
	if sess.InQuestionnaire() {
		e.handleQuestionnaire(ctx, sess, text)
		return
	}
	e.handleChat(ctx, sess, text)
}

func (e *Engine) handleQuestionnaire(ctx context.Context, sess *models.Session, text string) {
	res, err := flow.Advance(sess, text)
	if err != nil {
		slog.Error("Questionnaire advance failed", "userID", sess.UserID, "state", sess.State, "error", err)
		e.send(ctx, sess.UserID, fallbackText, nil)
		return
	}
	e.sendResult(ctx, sess.UserID, res)
	if !res.Done {
		return
	}

	if sess.Profile.WaterReminderOptIn {
		sess.Profile.WaterReminderActive = true
		e.reminders.StartLoop(ctx, sess.UserID)
	}
	e.persistProfile(sess)
	e.send(ctx, sess.UserID, helpText, e.menuOptions(sess.UserID))
}

func (e *Engine) handleChat(ctx context.Context, sess *models.Session, text string) {
	userID := sess.UserID

	switch text {
	case reminder.BtnDrank:
		e.send(ctx, userID, "כל הכבוד! 💧", e.menuOptions(userID))
		return
	case reminder.BtnDefer:
		e.reminders.DeferOnce(ctx, userID)
		e.send(ctx, userID, "בסדר, אזכיר לך בעוד עשר דקות.", e.menuOptions(userID))
		return
	case reminder.BtnStop:
		e.reminders.Stop(userID)
		sess.Profile.WaterReminderActive = false
		e.persistProfile(sess)
		e.send(ctx, userID, "בסדר, הפסקתי את תזכורות המים. אפשר להפעיל שוב עם /reset.", e.menuOptions(userID))
		return
	case BtnFinishDay:
		e.finishDay(ctx, sess)
		return
	case BtnDailyMenu:
		e.generateAndSend(ctx, userID, menu.DailyMenuPrompt(&sess.Profile))
		return
	case BtnPantry:
		e.setPantryPending(userID, true)
		e.send(ctx, userID, "מה יש לך בבית? כתוב/כתבי את רשימת המצרכים.", nil)
		return
	}

	if e.setPantryPending(userID, false) {
		e.generateAndSend(ctx, userID, menu.PantryPrompt(&sess.Profile, text))
		return
	}

	intent := classify.Classify(text, e.now())
	switch intent.Kind {
	case classify.KindHistorical:
		e.answerHistorical(ctx, sess, intent.Date)
	case classify.KindFoodReport:
		e.recordFood(ctx, sess, text)
	case classify.KindQuestion:
		e.generateAndSend(ctx, userID, menu.QuestionPrompt(&sess.Profile, &sess.Ledger, text))
	default:
		e.generateAndSend(ctx, userID, menu.QuestionPrompt(&sess.Profile, &sess.Ledger, text))
	}
}

// recordFood runs the calorie estimate and reports the ledger state.
func (e *Engine) recordFood(ctx context.Context, sess *models.Session, text string) {
	res, err := e.recorder.Record(ctx, sess, text)
	if err != nil {
		e.send(ctx, sess.UserID, "לא הצלחתי להעריך קלוריות כרגע, נסה/נסי שוב עוד רגע.", e.menuOptions(sess.UserID))
		return
	}
	if !res.Accepted {
		e.send(ctx, sess.UserID, "לא הצלחתי להעריך את הארוחה הזאת. אפשר לנסח שוב עם קצת יותר פירוט?", e.menuOptions(sess.UserID))
		return
	}

	e.persistEntry(sess.UserID, res.Entry)

	reply := fmt.Sprintf("רשמתי: %s - כ-%d קלוריות.\nסה\"כ היום: %d, נותרו %d מתוך %d.",
		res.Entry.Description, res.Entry.Calories, res.Total, res.Remaining, sess.Profile.CalorieBudget)
	if res.Remaining < 0 {
		reply += "\nשים/י לב: עברת את התקציב היומי."
	}
	e.send(ctx, sess.UserID, reply, e.menuOptions(sess.UserID))
}

// finishDay sends the recap, persists the day's closing summary, and
// opens a fresh ledger.
func (e *Engine) finishDay(ctx context.Context, sess *models.Session) {
	summary := menu.DailySummary(&sess.Profile, &sess.Ledger)
	e.persistDaySummary(sess)
	ledger.FinishDay(sess)
	e.send(ctx, sess.UserID, summary, e.menuOptions(sess.UserID))
}

func (e *Engine) persistDaySummary(sess *models.Session) {
	total := sess.Ledger.Total()
	protein, fat, carbs := nutrition.MacroEstimate(total)
	sum := models.DaySummary{
		Day:           e.now().Format("2006-01-02"),
		TotalCalories: total,
		ProteinGrams:  protein,
		FatGrams:      fat,
		CarbGrams:     carbs,
	}
	for _, en := range sess.Ledger.Entries {
		sum.Meals = append(sum.Meals, en.Description)
	}
	if err := e.store.SaveDaySummary(sess.UserID, sum); err != nil {
		slog.Warn("Day summary save failed", "userID", sess.UserID, "day", sum.Day, "error", err)
	}
}

// answerHistorical reads the persisted food log for the resolved day.
func (e *Engine) answerHistorical(ctx context.Context, sess *models.Session, date time.Time) {
	day := date.Format("2006-01-02")
	entries, err := e.store.QueryFoodLog(sess.UserID, day)
	if err != nil {
		slog.Error("Food log query failed", "userID", sess.UserID, "day", day, "error", err)
		e.send(ctx, sess.UserID, "לא הצלחתי לקרוא את היומן כרגע, נסה/נסי שוב עוד רגע.", e.menuOptions(sess.UserID))
		return
	}
	if len(entries) == 0 {
		e.send(ctx, sess.UserID, fmt.Sprintf("לא רשום אצלי כלום בתאריך %s.", day), e.menuOptions(sess.UserID))
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "מה שאכלת בתאריך %s:\n", day)
	total := 0
	for _, en := range entries {
		fmt.Fprintf(&b, "• %s - %d קלוריות\n", en.Description, en.Calories)
		total += en.Calories
	}
	fmt.Fprintf(&b, "סה\"כ: %d קלוריות.", total)
	e.send(ctx, sess.UserID, b.String(), e.menuOptions(sess.UserID))
}

// generateAndSend runs one generation round trip and delivers the
// answer, falling back to a fixed message on failure.
func (e *Engine) generateAndSend(ctx context.Context, userID int64, prompt string) {
	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Generation failed", "userID", userID, "error", err)
		e.send(ctx, userID, fallbackText, e.menuOptions(userID))
		return
	}
	e.send(ctx, userID, answer, e.menuOptions(userID))
}

// persistProfile saves the profile, logging failures without
// interrupting the conversation.
func (e *Engine) persistProfile(sess *models.Session) {
	if err := e.store.SaveProfile(sess.Profile); err != nil {
		slog.Error("Profile save failed", "userID", sess.UserID, "error", err)
	}
}

// persistEntry writes an accepted entry to the food log under today's
// date, logging failures without interrupting the conversation.
func (e *Engine) persistEntry(userID int64, entry models.EatenEntry) {
	entry.Day = e.now().Format("2006-01-02")
	if err := e.store.AppendFoodLog(userID, entry); err != nil {
		slog.Error("Food log append failed", "userID", userID, "error", err)
	}
}

// setPantryPending swaps the pantry-pending flag and returns its
// previous value.
func (e *Engine) setPantryPending(userID int64, pending bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	was := e.pantryPending[userID]
	if pending {
		e.pantryPending[userID] = true
	} else {
		delete(e.pantryPending, userID)
	}
	return was
}

// menuOptions is the standing main-menu keyboard, with the water-stop
// shortcut while reminders run.
func (e *Engine) menuOptions(userID int64) []string {
	opts := []string{BtnFinishDay, BtnDailyMenu, BtnPantry}
	if e.reminders.Active(userID) {
		opts = append(opts, reminder.BtnStop)
	}
	return opts
}

func (e *Engine) send(ctx context.Context, userID int64, text string, options []string) {
	if err := e.msg.SendMessage(ctx, userID, text, options); err != nil {
		slog.Error("Send failed", "userID", userID, "error", err)
	}
}

// sendResult delivers a flow result, one message per prompt.
func (e *Engine) sendResult(ctx context.Context, userID int64, res flow.Result) {
	for _, p := range res.Prompts {
		e.send(ctx, userID, p.Text, p.Options)
	}
}
