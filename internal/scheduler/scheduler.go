// Package scheduler delivers the daily menu at each user's chosen
// morning hour.
//
// A single gocron job ticks every minute and sweeps the stored
// profiles; users whose delivery hour matches the current wall-clock
// minute get their menu generated and sent. Matching on the exact
// "HH:00" minute means each user is picked up once per day.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/calorico-bot/calorico/internal/menu"
	"github.com/calorico-bot/calorico/internal/models"
)

// ProfileLister yields the profiles to sweep. store.Store satisfies it.
type ProfileLister interface {
	ListProfiles() ([]models.Profile, error)
}

// Generator produces the menu text. genai.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Sender delivers the menu. messaging.Service satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, userID int64, text string, options []string) error
}

// MenuScheduler runs the minute sweep.
type MenuScheduler struct {
	profiles  ProfileLister
	generator Generator
	sender    Sender
	cron      gocron.Scheduler
}

// NewMenuScheduler creates the scheduler. Start must be called to begin
// sweeping.
func NewMenuScheduler(profiles ProfileLister, generator Generator, sender Sender) (*MenuScheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &MenuScheduler{
		profiles:  profiles,
		generator: generator,
		sender:    sender,
		cron:      cron,
	}, nil
}

// Start registers the minute job and starts ticking.
func (m *MenuScheduler) Start(ctx context.Context) error {
	_, err := m.cron.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() {
			m.Sweep(ctx, time.Now())
		}),
	)
	if err != nil {
		return fmt.Errorf("register menu sweep job: %w", err)
	}
	m.cron.Start()
	slog.Info("Menu scheduler started")
	return nil
}

// Stop shuts the scheduler down and waits for a running sweep.
func (m *MenuScheduler) Stop() error {
	return m.cron.Shutdown()
}

// Sweep sends the daily menu to every user whose delivery hour matches
// now. Failures are logged per user and never abort the sweep.
func (m *MenuScheduler) Sweep(ctx context.Context, now time.Time) {
	profiles, err := m.profiles.ListProfiles()
	if err != nil {
		slog.Error("Menu sweep failed to list profiles", "error", err)
		return
	}
	clock := now.Format("15:04")
	for _, p := range profiles {
		if p.MenuDeliveryHour == 0 || !p.Complete() {
			continue
		}
		if clock != fmt.Sprintf("%02d:00", p.MenuDeliveryHour) {
			continue
		}
		text, err := m.generator.Generate(ctx, menu.DailyMenuPrompt(&p))
		if err != nil {
			slog.Error("Menu generation failed", "userID", p.UserID, "error", err)
			continue
		}
		if err := m.sender.SendMessage(ctx, p.UserID, text, nil); err != nil {
			slog.Error("Menu delivery failed", "userID", p.UserID, "error", err)
			continue
		}
		slog.Info("Daily menu delivered", "userID", p.UserID, "hour", p.MenuDeliveryHour)
	}
}
