package worker

import (
	"context"

	"github.com/andrev/phraseflash/internal/logger"
)

// DrillPrefetcher generates and caches drill exercises for an active session.
// Declared here instead of importing the session package to avoid a cycle.
type DrillPrefetcher interface {
	PrefetchDrills(ctx context.Context) error
}

// DrillPrefetchJob warms a freshly started session with cloze exercises so
// the first drill does not wait on the generator. Failure leaves the session
// without drill content; it is never fatal.
type DrillPrefetchJob struct {
	Session   DrillPrefetcher
	SessionID string
}

func (j *DrillPrefetchJob) Name() string { return "drill_prefetch" }

func (j *DrillPrefetchJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("session_id", j.SessionID)
	if err := j.Session.PrefetchDrills(ctx); err != nil {
		log.Warn("drill prefetch failed, session continues without drills: %v", err)
		return err
	}
	log.Debug("drill prefetch finished")
	return nil
}
