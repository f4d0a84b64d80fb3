// Package session orchestrates one multi-phase study run: due phrases are
// drilled one by one, optionally reviewed through a generated narrative, and
// graded. The orchestrator owns all session-local state; schedules and review
// records are persisted through the repositories it is constructed with.
package session

import (
	"context"
	stderrors "errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andrev/phraseflash/internal/content"
	"github.com/andrev/phraseflash/internal/errors"
	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/repository"
	"github.com/andrev/phraseflash/internal/srs"
)

// Phase is one stage of the session state machine.
type Phase string

const (
	PhaseLoading   Phase = "loading"
	PhaseDrilling  Phase = "drilling"
	PhaseReviewing Phase = "reviewing"
	PhaseGrading   Phase = "grading"
	PhaseComplete  Phase = "complete"
)

// Config describes one session run. Language settings are passed through to
// the content providers untouched.
type Config struct {
	ProfileID       int64
	SessionType     models.SessionType
	MaxItems        int
	EnableDrills    bool
	EnableNarrative bool
	Language        models.LanguageContext
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStoryGenerator enables the narrative review phase.
func WithStoryGenerator(g content.StoryGenerator) Option {
	return func(o *Orchestrator) {
		o.stories = g
	}
}

// WithClozeGenerator enables drill prefetching.
func WithClozeGenerator(g content.ClozeGenerator) Option {
	return func(o *Orchestrator) {
		o.clozes = g
	}
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// Orchestrator drives a single active session. Mutating operations are
// serialized through a busy flag: a second call arriving while one is in
// flight is rejected rather than queued.
type Orchestrator struct {
	phrases  repository.PhraseRepository
	reviews  repository.ReviewRepository
	sessions repository.SessionRepository
	stories  content.StoryGenerator
	clozes   content.ClozeGenerator
	clock    func() time.Time
	log      *logger.Logger

	mu        sync.Mutex
	busy      bool
	phase     Phase
	cfg       Config
	session   *models.Session
	items     []*models.StudyItem
	byID      map[string]*models.StudyItem
	pending   []string
	gradeSum  int
	narrative *models.Narrative
	drills    []models.DrillExercise
}

// NewOrchestrator creates an orchestrator with no active session.
func NewOrchestrator(
	phrases repository.PhraseRepository,
	reviews repository.ReviewRepository,
	sessions repository.SessionRepository,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		phrases:  phrases,
		reviews:  reviews,
		sessions: sessions,
		clock:    time.Now,
		log:      logger.Default().WithPrefix("session"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// acquire claims the busy flag, rejecting concurrent mutating calls.
func (o *Orchestrator) acquire() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return errors.NewSessionBusyError()
	}
	o.busy = true
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

// Start fetches due phrases and opens a new session, discarding any previous
// session-local state. An empty due set fails with NoItemsAvailable; the
// caller decides whether that is an error or a "nothing to study" state.
func (o *Orchestrator) Start(ctx context.Context, cfg Config) (*models.Session, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	if !cfg.SessionType.Valid() {
		return nil, errors.NewValidationError("session_type", "must be one of review, new, mixed")
	}
	if cfg.MaxItems < 1 {
		return nil, errors.NewValidationError("max_items", "must be at least 1")
	}

	log := logger.FromContext(ctx).WithPrefix("session")
	log.Info("starting session: profile=%d, type=%s, max_items=%d", cfg.ProfileID, cfg.SessionType, cfg.MaxItems)

	due, err := o.phrases.DuePhrases(ctx, cfg.ProfileID, cfg.MaxItems)
	if err != nil {
		return nil, errors.NewProviderFailureError("database", err)
	}
	if len(due) == 0 {
		return nil, errors.NewNoItemsAvailableError()
	}

	now := o.clock()
	items := make([]*models.StudyItem, 0, len(due))
	byID := make(map[string]*models.StudyItem, len(due))
	pending := make([]string, 0, len(due))
	for i, p := range due {
		item := &models.StudyItem{
			ID:     uuid.NewString(),
			Phrase: p,
			Order:  i,
		}
		items = append(items, item)
		byID[item.ID] = item
		pending = append(pending, item.ID)
	}

	sess := &models.Session{
		ID:          uuid.NewString(),
		ProfileID:   cfg.ProfileID,
		SessionType: cfg.SessionType,
		TotalItems:  len(items),
		StartedAt:   now,
	}
	if err := o.sessions.Insert(ctx, *sess); err != nil {
		return nil, errors.NewProviderFailureError("database", err)
	}

	phase := PhaseComplete
	switch {
	case cfg.EnableDrills:
		phase = PhaseDrilling
	case cfg.EnableNarrative && o.stories != nil:
		phase = PhaseReviewing
	}

	o.mu.Lock()
	o.cfg = cfg
	o.session = sess
	o.items = items
	o.byID = byID
	o.pending = pending
	o.gradeSum = 0
	o.narrative = nil
	o.drills = nil
	o.phase = phase
	o.mu.Unlock()

	log.Info("session %s started with %d items, phase=%s", sess.ID, len(items), phase)
	return o.snapshot(), nil
}

// NextItem returns the first ungraded item in queue order, or nil when the
// queue is drained and the phase should advance.
func (o *Orchestrator) NextItem() (*models.StudyItem, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return nil, errors.NewNoActiveSessionError()
	}
	if len(o.pending) == 0 {
		return nil, nil
	}
	item := *o.byID[o.pending[0]]
	return &item, nil
}

// SubmitGrade grades one item: the schedule is recomputed, persisted, a review
// record appended and session aggregates updated. Grades are write-once; a
// resubmission for an already-graded item is rejected.
//
// A persistence failure is surfaced after the in-memory state has already been
// updated; the caller should retry, the grade itself is not lost.
func (o *Orchestrator) SubmitGrade(ctx context.Context, itemID string, grade int, responseTime *float64) error {
	if err := o.acquire(); err != nil {
		return err
	}
	defer o.release()

	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return errors.NewNoActiveSessionError()
	}
	if !srs.Grade(grade).Valid() {
		o.mu.Unlock()
		return errors.NewInvalidGradeError(grade)
	}
	item, ok := o.byID[itemID]
	if !ok {
		o.mu.Unlock()
		return errors.NewUnknownItemError(itemID)
	}
	if item.Graded() {
		o.mu.Unlock()
		return errors.NewValidationError("item_id", "item already graded in this session")
	}
	prior := priorSchedule(item.Phrase)
	o.mu.Unlock()

	now := o.clock()
	next, err := srs.Compute(srs.Grade(grade), prior, now)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.applyGradeLocked(item, grade, responseTime, next)
	phraseID := item.Phrase.ID
	o.mu.Unlock()

	logger.FromContext(ctx).WithPrefix("session").Debug(
		"graded item %s: grade=%d, next_review=%s", itemID, grade, next.NextReviewAt.Format(time.DateOnly))

	return o.persistReview(ctx, phraseID, grade, responseTime, next, now)
}

// Skip moves an ungraded item to the back of the queue so it is revisited
// after everything else.
func (o *Orchestrator) Skip(itemID string) error {
	if err := o.acquire(); err != nil {
		return err
	}
	defer o.release()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return errors.NewNoActiveSessionError()
	}
	item, ok := o.byID[itemID]
	if !ok {
		return errors.NewUnknownItemError(itemID)
	}
	if item.Graded() {
		return errors.NewValidationError("item_id", "item already graded in this session")
	}

	for i, id := range o.pending {
		if id == itemID {
			o.pending = append(o.pending[:i], o.pending[i+1:]...)
			break
		}
	}
	o.pending = append(o.pending, itemID)
	return nil
}

// BeginNarrative asks the story generator for a review narrative. Provider
// failure is not fatal: the phase degrades straight to complete and the
// session carries on without a story.
func (o *Orchestrator) BeginNarrative(ctx context.Context) (*models.Narrative, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return nil, errors.NewNoActiveSessionError()
	}
	if o.phase != PhaseReviewing {
		o.mu.Unlock()
		return nil, errors.NewBadRequestError("session is not in the reviewing phase")
	}
	phrases := make([]models.Phrase, 0, len(o.items))
	for _, it := range o.items {
		phrases = append(phrases, it.Phrase)
	}
	lang := o.cfg.Language
	o.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("session")

	if o.stories == nil {
		o.setPhase(PhaseComplete)
		return nil, nil
	}

	narrative, err := o.stories.GenerateNarrative(ctx, phrases, lang)
	if err != nil {
		if !stderrors.Is(err, content.ErrUnavailable) {
			log.Warn("narrative generation failed, skipping review phase: %v", err)
		}
		o.setPhase(PhaseComplete)
		return nil, nil
	}

	o.mu.Lock()
	o.narrative = narrative
	o.phase = PhaseGrading
	o.mu.Unlock()
	return narrative, nil
}

// ApplyBulkGrade applies one overall grade to every still-ungraded item, then
// moves the session to the complete phase. Used after the narrative review,
// where a single judgment covers all remaining items.
func (o *Orchestrator) ApplyBulkGrade(ctx context.Context, grade int) error {
	if err := o.acquire(); err != nil {
		return err
	}
	defer o.release()

	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return errors.NewNoActiveSessionError()
	}
	if !srs.Grade(grade).Valid() {
		o.mu.Unlock()
		return errors.NewInvalidGradeError(grade)
	}
	remaining := make([]*models.StudyItem, 0, len(o.pending))
	for _, id := range o.pending {
		remaining = append(remaining, o.byID[id])
	}
	o.mu.Unlock()

	now := o.clock()
	var firstErr error
	for _, item := range remaining {
		next, err := srs.Compute(srs.Grade(grade), priorSchedule(item.Phrase), now)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		o.mu.Lock()
		o.applyGradeLocked(item, grade, nil, next)
		phraseID := item.Phrase.ID
		o.mu.Unlock()

		if err := o.persistReview(ctx, phraseID, grade, nil, next, now); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	o.setPhase(PhaseComplete)
	return firstErr
}

// Stats returns a live snapshot of the active session, or nil when none is
// active. DurationSeconds tracks the wall clock until completion.
func (o *Orchestrator) Stats() *models.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	return o.snapshotLocked()
}

// Complete finalizes the session: the duration and aggregates are frozen,
// persisted, and the in-memory state cleared. The returned session is the
// final record; a new session must be started afterwards.
func (o *Orchestrator) Complete(ctx context.Context) (*models.Session, error) {
	if err := o.acquire(); err != nil {
		return nil, err
	}
	defer o.release()

	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return nil, errors.NewNoActiveSessionError()
	}
	now := o.clock()
	o.session.CompletedAt = &now
	o.session.DurationSeconds = int(now.Sub(o.session.StartedAt).Seconds())
	final := *o.session
	o.mu.Unlock()

	if err := o.sessions.Update(ctx, final); err != nil {
		return nil, errors.NewProviderFailureError("database", err)
	}

	o.mu.Lock()
	o.session = nil
	o.items = nil
	o.byID = nil
	o.pending = nil
	o.narrative = nil
	o.drills = nil
	o.phase = ""
	o.mu.Unlock()

	logger.FromContext(ctx).WithPrefix("session").Info(
		"session %s completed: %d/%d items, avg grade %.2f",
		final.ID, final.CompletedItems, final.TotalItems, final.AverageGrade)
	return &final, nil
}

// IsComplete reports whether every item in the active session has a grade.
func (o *Orchestrator) IsComplete() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session != nil && len(o.pending) == 0
}

// Progress returns completion as a rounded 0..100 percentage.
func (o *Orchestrator) Progress() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil || o.session.TotalItems == 0 {
		return 0
	}
	return int(math.Round(float64(o.session.CompletedItems) / float64(o.session.TotalItems) * 100))
}

// CurrentPhase returns the session phase, or "" when no session is active.
func (o *Orchestrator) CurrentPhase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Narrative returns the generated review story, or nil before the reviewing
// phase has produced one.
func (o *Orchestrator) Narrative() *models.Narrative {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.narrative
}

// Drills returns the prefetched drill exercises, if any.
func (o *Orchestrator) Drills() []models.DrillExercise {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.drills
}

// PrefetchDrills generates cloze exercises for the session's phrases and
// caches them on the orchestrator. Intended to run on a background worker so
// the first drill does not wait on the generator; failure leaves the session
// without drill content, never broken.
func (o *Orchestrator) PrefetchDrills(ctx context.Context) error {
	o.mu.Lock()
	if o.session == nil {
		o.mu.Unlock()
		return errors.NewNoActiveSessionError()
	}
	phrases := make([]models.Phrase, 0, len(o.items))
	for _, it := range o.items {
		phrases = append(phrases, it.Phrase)
	}
	lang := o.cfg.Language
	o.mu.Unlock()

	if o.clozes == nil {
		return nil
	}

	drills, err := o.clozes.GenerateDrills(ctx, phrases, lang, len(phrases))
	if err != nil {
		if stderrors.Is(err, content.ErrUnavailable) {
			return nil
		}
		return errors.NewProviderFailureError("cloze generator", err)
	}

	o.mu.Lock()
	o.drills = drills
	o.mu.Unlock()
	return nil
}

// applyGradeLocked mutates the item and session aggregates for one grade.
// Caller holds o.mu.
func (o *Orchestrator) applyGradeLocked(item *models.StudyItem, grade int, responseTime *float64, next srs.State) {
	g := grade
	correct := srs.Grade(grade).Correct()
	item.Grade = &g
	item.ResponseTimeSeconds = responseTime
	item.IsCorrect = &correct

	item.Phrase.EaseFactor = next.EaseFactor
	item.Phrase.IntervalDays = next.IntervalDays
	item.Phrase.Repetitions = next.Repetitions
	nextAt := next.NextReviewAt
	item.Phrase.NextReviewAt = &nextAt

	for i, id := range o.pending {
		if id == item.ID {
			o.pending = append(o.pending[:i], o.pending[i+1:]...)
			break
		}
	}

	o.gradeSum += grade
	o.session.CompletedItems++
	if correct {
		o.session.CorrectItems++
	}
	o.session.AverageGrade = float64(o.gradeSum) / float64(o.session.CompletedItems)

	if len(o.pending) == 0 && o.phase == PhaseDrilling {
		if o.cfg.EnableNarrative && o.stories != nil {
			o.phase = PhaseReviewing
		} else {
			o.phase = PhaseComplete
		}
	}
}

// persistReview writes the updated schedule and the review record.
func (o *Orchestrator) persistReview(ctx context.Context, phraseID int64, grade int, responseTime *float64, next srs.State, now time.Time) error {
	if err := o.phrases.UpdateSchedule(ctx, phraseID, next); err != nil {
		return errors.NewProviderFailureError("database", err)
	}

	review := models.Review{
		PhraseID:     phraseID,
		Grade:        grade,
		EaseFactor:   next.EaseFactor,
		IntervalDays: next.IntervalDays,
		Repetitions:  next.Repetitions,
		NextReviewAt: next.NextReviewAt,
		ReviewedAt:   now,
	}
	if responseTime != nil {
		review.ResponseTimeSeconds = *responseTime
	}
	if _, err := o.reviews.Insert(ctx, review); err != nil {
		return errors.NewProviderFailureError("database", err)
	}
	return nil
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

// snapshot returns a stats copy, locking internally.
func (o *Orchestrator) snapshot() *models.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// snapshotLocked copies the session with a live duration. Caller holds o.mu.
func (o *Orchestrator) snapshotLocked() *models.Session {
	s := *o.session
	if s.CompletedAt == nil {
		s.DurationSeconds = int(o.clock().Sub(s.StartedAt).Seconds())
	}
	return &s
}

// priorSchedule lifts the phrase's persisted schedule into scheduler state,
// falling back to the first-review defaults for never-reviewed phrases.
func priorSchedule(p models.Phrase) srs.State {
	if p.NextReviewAt == nil && p.EaseFactor == 0 {
		return srs.State{EaseFactor: 2.5, IntervalDays: 1, Repetitions: 0}
	}
	state := srs.State{
		EaseFactor:   p.EaseFactor,
		IntervalDays: p.IntervalDays,
		Repetitions:  p.Repetitions,
	}
	if p.NextReviewAt != nil {
		state.NextReviewAt = *p.NextReviewAt
	}
	return state
}
