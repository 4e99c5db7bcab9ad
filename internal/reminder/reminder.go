// Package reminder runs the per-user recurring hydration reminders.
//
// Each opted-in user gets at most one live reminder loop. A loop sleeps
// for the configured interval, then checks whether it was stopped and
// either exits or sends the next reminder. Stopping is therefore
// honored at the next wake, never mid-sleep.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Quick-reply labels attached to every reminder message. The bot matches
// inbound text against these to drive the loop.
const (
	BtnDrank = "שתיתי, תודה"
	BtnDefer = "תזכיר לי בעוד עשר דקות"
	BtnStop  = "תפסיק להזכיר לי לשתות מים"
)

const (
	// DefaultInterval is the gap between recurring reminders.
	DefaultInterval = 90 * time.Minute
	// DeferDelay is the one-shot delay for "remind me in ten minutes".
	DeferDelay = 10 * time.Minute
)

const reminderText = "תזכורת קטנה: הגיע הזמן לשתות כוס מים 💧"

// Sender delivers a reminder message with its quick replies.
// messaging.Service satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, userID int64, text string, options []string) error
}

type loop struct {
	mu      sync.Mutex
	stopped bool
}

func (l *loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
}

func (l *loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Manager owns all live reminder loops.
type Manager struct {
	sender     Sender
	interval   time.Duration
	deferDelay time.Duration

	mu    sync.Mutex
	loops map[int64]*loop
}

// Option configures a Manager.
type Option func(*Manager)

// WithInterval overrides the recurring interval, for tests.
func WithInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// WithDeferDelay overrides the one-shot defer delay, for tests.
func WithDeferDelay(d time.Duration) Option {
	return func(m *Manager) { m.deferDelay = d }
}

// NewManager creates a Manager delivering reminders through sender.
func NewManager(sender Sender, opts ...Option) *Manager {
	m := &Manager{
		sender:     sender,
		interval:   DefaultInterval,
		deferDelay: DeferDelay,
		loops:      make(map[int64]*loop),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// StartLoop launches the recurring reminder loop for a user. If the
// user already has a live loop this is a no-op, so repeated opt-ins do
// not stack reminders. A loop that was stopped but has not yet reached
// its next wake does not count as live; opting back in replaces it with
// a fresh loop. The first reminder fires one full interval after the
// start, not immediately.
func (m *Manager) StartLoop(ctx context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, live := m.loops[userID]; live {
		if !old.isStopped() {
			slog.Debug("Reminder loop already live", "userID", userID)
			return
		}
		slog.Debug("Replacing stopped reminder loop", "userID", userID)
	}
	l := &loop{}
	m.loops[userID] = l
	go m.run(ctx, userID, l)
}

func (m *Manager) run(ctx context.Context, userID int64, l *loop) {
	slog.Info("Reminder loop started", "userID", userID, "interval", m.interval)
	defer m.remove(userID, l)

	t := time.NewTimer(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Reminder loop canceled", "userID", userID)
			return
		case <-t.C:
		}
		if l.isStopped() {
			slog.Info("Reminder loop stopped", "userID", userID)
			return
		}
		if err := m.sender.SendMessage(ctx, userID, reminderText,
			[]string{BtnDrank, BtnDefer, BtnStop}); err != nil {
			slog.Error("Reminder send failed", "userID", userID, "error", err)
		}
		t.Reset(m.interval)
	}
}

func (m *Manager) remove(userID int64, l *loop) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loops[userID] == l {
		delete(m.loops, userID)
	}
}

// Stop flags the user's loop to exit. The loop notices at its next
// wake; no reminder is sent then. Stopping a user with no live loop is
// a no-op.
func (m *Manager) Stop(userID int64) {
	m.mu.Lock()
	l := m.loops[userID]
	m.mu.Unlock()
	if l != nil {
		l.stop()
	}
}

// Active reports whether the user has a live loop that was not flagged
// to stop.
func (m *Manager) Active(userID int64) bool {
	m.mu.Lock()
	l := m.loops[userID]
	m.mu.Unlock()
	return l != nil && !l.isStopped()
}

// DeferOnce schedules a single extra reminder after the defer delay,
// independent of the recurring loop.
func (m *Manager) DeferOnce(ctx context.Context, userID int64) {
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.deferDelay):
		}
		if err := m.sender.SendMessage(ctx, userID, reminderText,
			[]string{BtnDrank, BtnDefer, BtnStop}); err != nil {
			slog.Error("Deferred reminder send failed", "userID", userID, "error", err)
		}
	}()
}
