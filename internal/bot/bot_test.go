package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/calorico-bot/calorico/internal/messaging"
	"github.com/calorico-bot/calorico/internal/models"
	"github.com/calorico-bot/calorico/internal/reminder"
	"github.com/calorico-bot/calorico/internal/store"
)

type sentMessage struct {
	userID  int64
	text    string
	options []string
}

type fakeMessaging struct {
	mu        sync.Mutex
	sent      []sentMessage
	responses chan messaging.Inbound
}

func newFakeMessaging() *fakeMessaging {
	return &fakeMessaging{responses: make(chan messaging.Inbound, 8)}
}

func (f *fakeMessaging) SendMessage(_ context.Context, userID int64, text string, options []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{userID, text, options})
	return nil
}

func (f *fakeMessaging) Start(context.Context) error { return nil }
func (f *fakeMessaging) Stop() error                 { return nil }

func (f *fakeMessaging) Responses() <-chan messaging.Inbound { return f.responses }

func (f *fakeMessaging) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMessage{}
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeMessaging) allText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var b strings.Builder
	for _, m := range f.sent {
		b.WriteString(m.text)
		b.WriteString("\n")
	}
	return b.String()
}

type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	r := g.responses[0]
	g.responses = g.responses[1:]
	return r, nil
}

func (g *scriptedGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 18, 14, 0, 0, 0, time.Local)
}

func newTestEngine(gen *scriptedGenerator) (*Engine, *fakeMessaging, *store.InMemoryStore) {
	msg := newFakeMessaging()
	st := store.NewInMemoryStore()
	rem := reminder.NewManager(msg, reminder.WithDeferDelay(time.Millisecond))
	e := NewEngine(msg, gen, st, rem)
	e.now = fixedNow
	return e, msg, st
}

func completeProfile(userID int64) models.Profile {
	return models.Profile{
		UserID: userID, Name: "יוסי", Gender: models.GenderMale,
		Age: 30, HeightCm: 170, WeightKg: 70,
		Goal: models.GoalMaintain, CalorieBudget: 1941,
		DietPreferences: []string{models.NoDietPreference},
		Allergies:       []string{models.NoAllergies},
	}
}

// seedDoneUser stores a finished profile so the engine restores the
// session straight into chat mode.
func seedDoneUser(t *testing.T, st *store.InMemoryStore, userID int64) {
	t.Helper()
	if err := st.SaveProfile(completeProfile(userID)); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func TestQuestionnaireCompletesAndPersists(t *testing.T) {
	gen := &scriptedGenerator{}
	e, msg, st := newTestEngine(gen)
	ctx := context.Background()

	e.handle(ctx, 1, "/start")
	for _, answer := range []string{
		"יוסי", "זכר", "30", "170", "70", "שמירה על משקל",
		"לא", "סיימתי בחירת העדפות", "אין", "לא, תודה", "09:00",
	} {
		e.handle(ctx, 1, answer)
	}

	p, err := st.LoadProfile(1)
	if err != nil {
		t.Fatalf("profile not persisted: %v", err)
	}
	if p.CalorieBudget != 1941 {
		t.Errorf("persisted budget = %d, want 1941", p.CalorieBudget)
	}
	if !strings.Contains(msg.allText(), "1941") {
		t.Error("completion message missing budget")
	}
	if last := msg.last(); !contains(last.options, BtnFinishDay) {
		t.Errorf("main menu not shown after completion: %v", last.options)
	}
}

func TestWaterOptInPersistsActiveFlag(t *testing.T) {
	gen := &scriptedGenerator{}
	e, _, st := newTestEngine(gen)
	ctx := context.Background()

	e.handle(ctx, 8, "/start")
	for _, answer := range []string{
		"יוסי", "זכר", "30", "170", "70", "שמירה על משקל",
		"לא", "סיימתי בחירת העדפות", "אין", "כן, אשמח!", "09:00",
	} {
		e.handle(ctx, 8, answer)
	}

	p, err := st.LoadProfile(8)
	if err != nil {
		t.Fatalf("profile not persisted: %v", err)
	}
	if !p.WaterReminderOptIn {
		t.Error("persisted WaterReminderOptIn = false, want true")
	}
	// The stored flag is what lets reminder loops be restored after a
	// process restart, so it must be set before the profile is saved.
	if !p.WaterReminderActive {
		t.Error("persisted WaterReminderActive = false, want true")
	}
	if !e.reminders.Active(8) {
		t.Error("reminder loop not live after opt-in")
	}
}

func TestFoodReportRecordedAndPersisted(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"בערך 300 קלוריות"}}
	e, msg, st := newTestEngine(gen)
	ctx := context.Background()
	seedDoneUser(t, st, 2)

	e.handle(ctx, 2, "אכלתי סלט עם טונה")

	last := msg.last()
	if !strings.Contains(last.text, "300") || !strings.Contains(last.text, "1641") {
		t.Errorf("record reply = %q", last.text)
	}

	entries, err := st.QueryFoodLog(2, "2025-06-18")
	if err != nil {
		t.Fatalf("QueryFoodLog: %v", err)
	}
	if len(entries) != 1 || entries[0].Calories != 300 {
		t.Errorf("persisted entries = %+v", entries)
	}
}

func TestRejectedEstimateNotPersisted(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"בערך 5 קלוריות", "עדיין 10 קלוריות"}}
	e, msg, st := newTestEngine(gen)
	ctx := context.Background()
	seedDoneUser(t, st, 3)

	e.handle(ctx, 3, "אכלתי משהו")

	if !strings.Contains(msg.last().text, "לא הצלחתי להעריך") {
		t.Errorf("reply = %q", msg.last().text)
	}
	entries, _ := st.QueryFoodLog(3, "2025-06-18")
	if len(entries) != 0 {
		t.Errorf("rejected entry persisted: %+v", entries)
	}
}

func TestQuestionRoutedToGenerator(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"כ-95 קלוריות"}}
	e, msg, st := newTestEngine(gen)
	ctx := context.Background()
	seedDoneUser(t, st, 4)

	e.handle(ctx, 4, "כמה קלוריות יש בתפוח?")

	if !strings.Contains(gen.lastPrompt(), "כמה קלוריות יש בתפוח?") {
		t.Errorf("prompt = %q", gen.lastPrompt())
	}
	if msg.last().text != "כ-95 קלוריות" {
		t.Errorf("reply = %q", msg.last().text)
	}
}

func TestHistoricalQueryReadsStore(t *testing.T) {
	gen := &scriptedGenerator{}
	e, msg, st := newTestEngine(gen)
	ctx := context.Background()
	seedDoneUser(t, st, 5)
	st.AppendFoodLog(5, models.EatenEntry{Description: "פיצה", Calories: 800, Day: "2025-06-17"})

	e.handle(ctx, 5, "מה אכלתי אתמול?")

	last := msg.last()
	if !strings.Contains(last.text, "פיצה") || !strings.Contains(last.text, "800") {
		t.Errorf("historical reply = %q", last.text)
	}
	if len(gen.prompts) != 0 {
		t.Error("historical query reached the generator")
	}
}

func TestHistoricalQueryEmptyDay(t *testing.T) {
	gen := &scriptedGenerator{}
	e, msg, st := newTestEngine(gen)
	ctx := context.Background()
	seedDoneUser(t, st, 6)

	e.handle(ctx, 6, "מה אכלתי שלשום?")
	if !strings.Contains(msg.last().text, "2025-06-16") {
		t.Errorf("empty-day reply = %q", msg.last().text)
	}
}

func TestFinishDayResetsLedger(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"450 קלוריות"}}
	e, msg, st := newTestEngine(gen)
	ctx := context.Background()
	seedDoneUser(t, st, 7)

	e.handle(ctx, 7, "אכלתי המבורגר")
	e.handle(ctx, 7, BtnFinishDay)

	if !strings.Contains(msg.last().text, "450") {
		t.Errorf("summary = %q", msg.last().text)
	}
	sess := e.session(7)
	if got := sess.Ledger.Total(); got != 0 {
		t.Errorf("ledger total after finish = %d, want 0", got)
	}

	sum, err := st.LoadDaySummary(7, "2025-06-18")
	if err != nil {
		t.Fatalf("day summary not persisted: %v", err)
	}
	if sum.TotalCalories != 450 {
		t.Errorf("summary total = %d, want 450", sum.TotalCalories)
	}
	if len(sum.Meals) != 1 || sum.Meals[0] != "אכלתי המבורגר" {
		t.Errorf("summary meals = %v", sum.Meals)
	}
	if sum.ProteinGrams == 0 || sum.FatGrams == 0 || sum.CarbGrams == 0 {
		t.Errorf("summary macros not filled: %+v", sum)
	}
}

func TestPantryFlow(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"אפשר להכין שקשוקה"}}
	e, msg, st := newTestEngine(gen)
	ctx := context.Background()
	seedDoneUser(t, st, 8)

	e.handle(ctx, 8, BtnPantry)
	if !strings.Contains(msg.last().text, "מה יש לך בבית") {
		t.Errorf("pantry prompt = %q", msg.last().text)
	}

	e.handle(ctx, 8, "ביצים, עגבניות ופלפל")
	if !strings.Contains(gen.lastPrompt(), "ביצים, עגבניות ופלפל") {
		t.Errorf("pantry generation prompt = %q", gen.lastPrompt())
	}
	if msg.last().text != "אפשר להכין שקשוקה" {
		t.Errorf("pantry reply = %q", msg.last().text)
	}
}

func TestResetRestartsQuestionnaire(t *testing.T) {
	gen := &scriptedGenerator{}
	e, msg, st := newTestEngine(gen)
	ctx := context.Background()
	seedDoneUser(t, st, 9)

	e.handle(ctx, 9, "/reset")
	sess := e.session(9)
	if sess.State != models.StateName {
		t.Errorf("state after reset = %s, want NAME", sess.State)
	}
	if !strings.Contains(msg.last().text, "איך קוראים לך") {
		t.Errorf("reset reply = %q", msg.last().text)
	}
}

func TestHelpCommand(t *testing.T) {
	gen := &scriptedGenerator{}
	e, msg, st := newTestEngine(gen)
	seedDoneUser(t, st, 10)

	e.handle(context.Background(), 10, "/help")
	if !strings.Contains(msg.last().text, "/reset") {
		t.Errorf("help reply = %q", msg.last().text)
	}
}

func TestGenerationFailureFallsBack(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("unavailable")}
	e, msg, st := newTestEngine(gen)
	seedDoneUser(t, st, 11)

	e.handle(context.Background(), 11, "כמה חלבון יש בביצה?")
	if msg.last().text != fallbackText {
		t.Errorf("fallback reply = %q", msg.last().text)
	}
}

func TestRunSerializesPerUser(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"100 קלוריות", "200 קלוריות"}}
	e, msg, st := newTestEngine(gen)
	seedDoneUser(t, st, 12)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	msg.responses <- messaging.Inbound{UserID: 12, Text: "אכלתי בננה"}
	msg.responses <- messaging.Inbound{UserID: 12, Text: "אכלתי יוגורט"}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entries, _ := st.QueryFoodLog(12, "2025-06-18")
		if len(entries) == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	entries, _ := st.QueryFoodLog(12, "2025-06-18")
	if len(entries) != 2 || entries[0].Calories != 100 || entries[1].Calories != 200 {
		t.Fatalf("entries = %+v, want both reports in order", entries)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func contains(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}
