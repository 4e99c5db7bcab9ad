package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/calorico-bot/calorico/internal/models"
)

// scriptedGenerator returns canned responses in order and counts calls.
type scriptedGenerator struct {
	responses []string
	err       error
	calls     int
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.calls > len(g.responses) {
		return "", errors.New("unexpected extra call")
	}
	return g.responses[g.calls-1], nil
}

func newSession(budget int) *models.Session {
	sess := models.NewSession(42)
	sess.Profile.CalorieBudget = budget
	sess.State = models.StateDone
	return sess
}

func TestParseEstimate(t *testing.T) {
	cases := []struct {
		response string
		want     int
		parsed   bool
	}{
		{"סה\"כ: 520 קלוריות", 520, true},
		{"about 300 calories total", 300, true},
		{"אין לי מושג", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, parsed := ParseEstimate(tc.response)
		if got != tc.want || parsed != tc.parsed {
			t.Errorf("ParseEstimate(%q) = (%d, %v), want (%d, %v)",
				tc.response, got, parsed, tc.want, tc.parsed)
		}
	}
}

func TestRecordAccumulates(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"300 קלוריות", "450 קלוריות"}}
	r := NewRecorder(gen)
	sess := newSession(2000)

	first, err := r.Record(context.Background(), sess, "סלט עוף")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !first.Accepted || first.Total != 300 || first.Remaining != 1700 {
		t.Errorf("first = %+v, want accepted total=300 remaining=1700", first)
	}

	second, err := r.Record(context.Background(), sess, "פסטה")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if second.Total != 750 || second.Remaining != 1250 {
		t.Errorf("second = %+v, want total=750 remaining=1250", second)
	}
	if got := sess.Ledger.Total(); got != 750 {
		t.Errorf("ledger total = %d, want 750", got)
	}
}

func TestRecordRetryRecovers(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"10 קלוריות", "220 קלוריות"}}
	r := NewRecorder(gen)
	sess := newSession(2000)

	res, err := r.Record(context.Background(), sess, "המבורגר")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("generator calls = %d, want exactly 2", gen.calls)
	}
	if !res.Accepted || res.Entry.Calories != 220 {
		t.Errorf("result = %+v, want accepted with 220 calories", res)
	}
}

func TestRecordRetryStillTooLowRejects(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"5", "12"}}
	r := NewRecorder(gen)
	sess := newSession(1800)
	sess.Ledger.Append(models.EatenEntry{Description: "בוקר", Calories: 400})

	res, err := r.Record(context.Background(), sess, "מים")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("generator calls = %d, want exactly 2", gen.calls)
	}
	if res.Accepted {
		t.Error("result accepted, want rejected")
	}
	if res.Remaining != 1400 {
		t.Errorf("remaining = %d, want unchanged 1400", res.Remaining)
	}
	if len(sess.Ledger.Entries) != 1 {
		t.Errorf("ledger entries = %d, want 1 (no mutation)", len(sess.Ledger.Entries))
	}
}

func TestRecordUnparseableNoRetry(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"לא הבנתי את הארוחה"}}
	r := NewRecorder(gen)
	sess := newSession(1800)

	res, err := r.Record(context.Background(), sess, "משהו")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1 (no retry for parse failure)", gen.calls)
	}
	if res.Accepted || len(sess.Ledger.Entries) != 0 {
		t.Error("unparseable estimate must not append an entry")
	}
}

func TestRecordCollaboratorFailureLeavesLedger(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("timeout")}
	r := NewRecorder(gen)
	sess := newSession(1800)
	sess.Ledger.Append(models.EatenEntry{Description: "צהריים", Calories: 600})

	_, err := r.Record(context.Background(), sess, "עוגה")
	if err == nil {
		t.Fatal("Record: want error on collaborator failure")
	}
	if len(sess.Ledger.Entries) != 1 || sess.Ledger.Total() != 600 {
		t.Error("collaborator failure must not mutate the ledger")
	}
}

func TestFinishDayResets(t *testing.T) {
	sess := newSession(2000)
	sess.Ledger.Append(models.EatenEntry{Description: "א", Calories: 700})
	sess.Ledger.Append(models.EatenEntry{Description: "ב", Calories: 300})

	FinishDay(sess)

	if len(sess.Ledger.Entries) != 0 {
		t.Errorf("entries after finish = %d, want 0", len(sess.Ledger.Entries))
	}
	if got := sess.Ledger.Remaining(sess.Profile.CalorieBudget); got != 2000 {
		t.Errorf("remaining after finish = %d, want full budget 2000", got)
	}
}
