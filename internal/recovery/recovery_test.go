package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/calorico-bot/calorico/internal/models"
)

type fakeProfiles struct {
	profiles []models.Profile
	err      error
}

func (f *fakeProfiles) ListProfiles() ([]models.Profile, error) {
	return f.profiles, f.err
}

type fakeStarter struct {
	started []int64
}

func (f *fakeStarter) StartLoop(_ context.Context, userID int64) {
	f.started = append(f.started, userID)
}

func TestRestoreReminders(t *testing.T) {
	profiles := &fakeProfiles{profiles: []models.Profile{
		{UserID: 1, WaterReminderActive: true},
		{UserID: 2, WaterReminderActive: false},
		{UserID: 3, WaterReminderActive: true},
	}}
	starter := &fakeStarter{}

	restored, err := RestoreReminders(context.Background(), profiles, starter)
	if err != nil {
		t.Fatalf("RestoreReminders: %v", err)
	}
	if restored != 2 {
		t.Errorf("restored = %d, want 2", restored)
	}
	if len(starter.started) != 2 || starter.started[0] != 1 || starter.started[1] != 3 {
		t.Errorf("started = %v", starter.started)
	}
}

func TestRestoreRemindersListFailure(t *testing.T) {
	profiles := &fakeProfiles{err: errors.New("db down")}
	starter := &fakeStarter{}

	if _, err := RestoreReminders(context.Background(), profiles, starter); err == nil {
		t.Fatal("expected error")
	}
	if len(starter.started) != 0 {
		t.Errorf("started loops despite failure: %v", starter.started)
	}
}
