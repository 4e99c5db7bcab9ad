// Package recovery restores in-memory reminder state after a restart.
//
// Reminder loops live only in memory, but opt-in status is part of the
// persisted profile. On startup the stored profiles are swept and a
// loop is restarted for every user whose reminders were active when the
// process went down.
package recovery

import (
	"context"
	"log/slog"

	"github.com/calorico-bot/calorico/internal/models"
)

// ProfileLister yields the stored profiles. store.Store satisfies it.
type ProfileLister interface {
	ListProfiles() ([]models.Profile, error)
}

// ReminderStarter starts a user's reminder loop. reminder.Manager
// satisfies it.
type ReminderStarter interface {
	StartLoop(ctx context.Context, userID int64)
}

// RestoreReminders restarts the hydration loop for every profile with
// reminders active and returns how many were restored.
func RestoreReminders(ctx context.Context, profiles ProfileLister, reminders ReminderStarter) (int, error) {
	all, err := profiles.ListProfiles()
	if err != nil {
		slog.Error("Reminder recovery failed to list profiles", "error", err)
		return 0, err
	}
	restored := 0
	for _, p := range all {
		if !p.WaterReminderActive {
			continue
		}
		reminders.StartLoop(ctx, p.UserID)
		restored++
	}
	slog.Info("Reminder recovery complete", "restored", restored, "profiles", len(all))
	return restored, nil
}
