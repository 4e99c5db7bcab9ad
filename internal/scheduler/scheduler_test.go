package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calorico-bot/calorico/internal/models"
)

type fakeProfiles struct {
	profiles []models.Profile
	err      error
}

func (f *fakeProfiles) ListProfiles() ([]models.Profile, error) {
	return f.profiles, f.err
}

type fakeGenerator struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeSender struct {
	sent map[int64][]string
	err  error
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[int64][]string)}
}

func (f *fakeSender) SendMessage(_ context.Context, userID int64, text string, _ []string) error {
	if f.err != nil {
		return f.err
	}
	f.sent[userID] = append(f.sent[userID], text)
	return nil
}

func completeProfile(userID int64, hour int) models.Profile {
	return models.Profile{
		UserID: userID, Name: "יוסי", Gender: models.GenderMale,
		Age: 30, HeightCm: 170, WeightKg: 70,
		Goal: models.GoalMaintain, CalorieBudget: 1941,
		MenuDeliveryHour: hour,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 18, hour, minute, 0, 0, time.Local)
}

func newTestScheduler(t *testing.T, p ProfileLister, g Generator, s Sender) *MenuScheduler {
	t.Helper()
	m, err := NewMenuScheduler(p, g, s)
	if err != nil {
		t.Fatalf("NewMenuScheduler: %v", err)
	}
	return m
}

func TestSweepDeliversAtMatchingHour(t *testing.T) {
	profiles := &fakeProfiles{profiles: []models.Profile{
		completeProfile(1, 9),
		completeProfile(2, 10),
	}}
	gen := &fakeGenerator{response: "התפריט שלך"}
	sender := newFakeSender()
	m := newTestScheduler(t, profiles, gen, sender)

	m.Sweep(context.Background(), at(9, 0))

	if got := sender.sent[1]; len(got) != 1 || got[0] != "התפריט שלך" {
		t.Errorf("user 1 sends = %v", got)
	}
	if got := sender.sent[2]; len(got) != 0 {
		t.Errorf("user 2 sent menu off-hour: %v", got)
	}
}

func TestSweepSkipsOffMinute(t *testing.T) {
	profiles := &fakeProfiles{profiles: []models.Profile{completeProfile(1, 9)}}
	gen := &fakeGenerator{response: "תפריט"}
	sender := newFakeSender()
	m := newTestScheduler(t, profiles, gen, sender)

	m.Sweep(context.Background(), at(9, 1))
	if len(sender.sent) != 0 {
		t.Errorf("sweep at 09:01 delivered: %v", sender.sent)
	}
}

func TestSweepSkipsIncompleteProfiles(t *testing.T) {
	incomplete := models.Profile{UserID: 3, MenuDeliveryHour: 9}
	profiles := &fakeProfiles{profiles: []models.Profile{incomplete}}
	gen := &fakeGenerator{response: "תפריט"}
	sender := newFakeSender()
	m := newTestScheduler(t, profiles, gen, sender)

	m.Sweep(context.Background(), at(9, 0))
	if len(gen.prompts) != 0 {
		t.Error("generated menu for incomplete profile")
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	profiles := &fakeProfiles{profiles: []models.Profile{
		completeProfile(1, 9),
		completeProfile(2, 9),
	}}
	gen := &fakeGenerator{err: errors.New("unavailable")}
	sender := newFakeSender()
	m := newTestScheduler(t, profiles, gen, sender)

	m.Sweep(context.Background(), at(9, 0))

	// Both users were attempted despite the failures.
	if len(gen.prompts) != 2 {
		t.Errorf("generation attempts = %d, want 2", len(gen.prompts))
	}
	if len(sender.sent) != 0 {
		t.Errorf("sends after generation failure = %v", sender.sent)
	}
}
