// Package reminder periodically counts due phrases per profile and pings a
// Notifier so learners hear about pending reviews without opening the app.
package reminder

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/repository"
)

// Notifier delivers one due-review nudge for a profile.
type Notifier interface {
	Notify(ctx context.Context, profileID int64, dueCount int) error
}

// LogNotifier writes reminders to the application log. Stands in until a
// push/mail channel exists.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, profileID int64, dueCount int) error {
	logger.Default().WithPrefix("reminder").Info(
		"profile %d has %d phrases due for review", profileID, dueCount)
	return nil
}

// Reminder runs the periodic due check on a gocron scheduler.
type Reminder struct {
	profiles  repository.ProfileRepository
	phrases   repository.PhraseRepository
	notifier  Notifier
	scheduler *gocron.Scheduler
	interval  time.Duration
	log       *logger.Logger
}

// New creates a reminder checking every interval. An interval of zero
// disables scheduling; CheckOnce can still be called directly.
func New(profiles repository.ProfileRepository, phrases repository.PhraseRepository, notifier Notifier, interval time.Duration) *Reminder {
	return &Reminder{
		profiles:  profiles,
		phrases:   phrases,
		notifier:  notifier,
		scheduler: gocron.NewScheduler(time.UTC),
		interval:  interval,
		log:       logger.Default().WithPrefix("reminder"),
	}
}

// Start begins the periodic check in the background.
func (r *Reminder) Start(ctx context.Context) error {
	if r.interval <= 0 {
		r.log.Info("reminders disabled")
		return nil
	}

	_, err := r.scheduler.Every(r.interval).Do(func() {
		if err := r.CheckOnce(ctx); err != nil {
			r.log.Error("due check failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	r.log.Info("reminder scheduler started, interval=%s", r.interval)
	return nil
}

// Stop halts the scheduler and waits for a running check to finish.
func (r *Reminder) Stop() {
	r.scheduler.Stop()
	r.log.Info("reminder scheduler stopped")
}

// CheckOnce counts due phrases for every profile and notifies the ones with
// pending reviews. Per-profile failures are logged and skipped so one broken
// profile cannot starve the rest.
func (r *Reminder) CheckOnce(ctx context.Context) error {
	profiles, err := r.profiles.List(ctx)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		due, err := r.phrases.CountDue(ctx, p.ID)
		if err != nil {
			r.log.Warn("due count failed for profile %d: %v", p.ID, err)
			continue
		}
		if due == 0 {
			continue
		}
		if err := r.notifier.Notify(ctx, p.ID, due); err != nil {
			r.log.Warn("notification failed for profile %d: %v", p.ID, err)
		}
	}
	return nil
}
