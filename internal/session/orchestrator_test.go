package session_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/andrev/phraseflash/internal/errors"
	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/session"
	"github.com/andrev/phraseflash/internal/srs"
	"github.com/andrev/phraseflash/internal/testutil/mocks"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type testDeps struct {
	phrases  *mocks.MockPhraseRepository
	reviews  *mocks.MockReviewRepository
	sessions *mocks.MockSessionRepository
	stories  *mocks.MockStoryGenerator
}

func newTestOrchestrator(extra ...session.Option) (*session.Orchestrator, *testDeps) {
	deps := &testDeps{
		phrases:  new(mocks.MockPhraseRepository),
		reviews:  new(mocks.MockReviewRepository),
		sessions: new(mocks.MockSessionRepository),
		stories:  new(mocks.MockStoryGenerator),
	}
	opts := append([]session.Option{session.WithClock(func() time.Time { return testNow })}, extra...)
	orch := session.NewOrchestrator(deps.phrases, deps.reviews, deps.sessions, opts...)
	return orch, deps
}

func duePhrases(n int) []models.Phrase {
	phrases := make([]models.Phrase, 0, n)
	for i := 0; i < n; i++ {
		phrases = append(phrases, models.Phrase{
			ID:           int64(i + 1),
			ProfileID:    1,
			Text:         fmt.Sprintf("phrase %d", i+1),
			Translation:  fmt.Sprintf("frase %d", i+1),
			EaseFactor:   2.5,
			IntervalDays: 1,
			CreatedAt:    testNow.AddDate(0, 0, -n+i),
		})
	}
	return phrases
}

func drillConfig(maxItems int) session.Config {
	return session.Config{
		ProfileID:    1,
		SessionType:  models.SessionTypeReview,
		MaxItems:     maxItems,
		EnableDrills: true,
	}
}

func TestStart_SingleItem(t *testing.T) {
	orch, deps := newTestOrchestrator()
	due := []models.Phrase{{
		ID: 7, ProfileID: 1, Text: "hello world", Translation: "hola mundo",
		EaseFactor: 2.5, IntervalDays: 1,
	}}
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(due, nil)
	deps.sessions.On("Insert", mock.Anything, mock.AnythingOfType("models.Session")).Return(nil)

	sess, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)

	assert.Equal(t, 1, sess.TotalItems)
	assert.Equal(t, 0, sess.CompletedItems)
	assert.Equal(t, session.PhaseDrilling, orch.CurrentPhase())
	assert.Equal(t, 0, orch.Progress())

	item, err := orch.NextItem()
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "hello world", item.Phrase.Text)
	assert.False(t, item.Graded())
}

func TestStart_EmptyDueSet(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 20).Return([]models.Phrase{}, nil)

	_, err := orch.Start(context.Background(), drillConfig(20))
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeNoItemsAvailable})
}

func TestStart_DueFetchFailureIsFatal(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 20).
		Return(nil, fmt.Errorf("connection refused"))

	_, err := orch.Start(context.Background(), drillConfig(20))
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeProviderFailure})
	assert.Nil(t, orch.Stats())
}

func TestStart_InvalidConfig(t *testing.T) {
	orch, _ := newTestOrchestrator()

	_, err := orch.Start(context.Background(), session.Config{
		ProfileID: 1, SessionType: "cramming", MaxItems: 10, EnableDrills: true,
	})
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeValidation})

	_, err = orch.Start(context.Background(), session.Config{
		ProfileID: 1, SessionType: models.SessionTypeReview, MaxItems: 0, EnableDrills: true,
	})
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeValidation})
}

func TestSubmitGrade_UpdatesItemAndStats(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.phrases.On("UpdateSchedule", mock.Anything, int64(1), mock.AnythingOfType("srs.State")).Return(nil)
	deps.reviews.On("Insert", mock.Anything, mock.AnythingOfType("models.Review")).Return(int64(1), nil)

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)

	item, err := orch.NextItem()
	require.NoError(t, err)

	rt := 5.5
	err = orch.SubmitGrade(context.Background(), item.ID, 3, &rt)
	require.NoError(t, err)

	stats := orch.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.CompletedItems)
	assert.Equal(t, 1, stats.CorrectItems)
	assert.Equal(t, 3.0, stats.AverageGrade)
	assert.True(t, orch.IsComplete())
	assert.Equal(t, 100, orch.Progress())

	// Drills only, so draining the queue ends the session's active phases.
	assert.Equal(t, session.PhaseComplete, orch.CurrentPhase())

	next, err := orch.NextItem()
	require.NoError(t, err)
	assert.Nil(t, next)

	deps.phrases.AssertExpectations(t)
	deps.reviews.AssertExpectations(t)
}

func TestSubmitGrade_InvalidGradeLeavesStateUntouched(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)
	item, _ := orch.NextItem()

	for _, grade := range []int{0, 5, -1} {
		err := orch.SubmitGrade(context.Background(), item.ID, grade, nil)
		assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeInvalidGrade})
	}

	stats := orch.Stats()
	assert.Equal(t, 0, stats.CompletedItems)
	current, _ := orch.NextItem()
	require.NotNil(t, current)
	assert.False(t, current.Graded())
	deps.phrases.AssertNotCalled(t, "UpdateSchedule", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitGrade_UnknownItem(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)

	err = orch.SubmitGrade(context.Background(), "not-an-item", 3, nil)
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeUnknownItem})
}

func TestSubmitGrade_ResubmissionRejected(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 2).Return(duePhrases(2), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.phrases.On("UpdateSchedule", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := orch.Start(context.Background(), drillConfig(2))
	require.NoError(t, err)
	item, _ := orch.NextItem()

	require.NoError(t, orch.SubmitGrade(context.Background(), item.ID, 4, nil))

	err = orch.SubmitGrade(context.Background(), item.ID, 2, nil)
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeValidation})

	stats := orch.Stats()
	assert.Equal(t, 1, stats.CompletedItems)
	assert.Equal(t, 4.0, stats.AverageGrade)
}

func TestSubmitGrade_NoActiveSession(t *testing.T) {
	orch, _ := newTestOrchestrator()

	err := orch.SubmitGrade(context.Background(), "x", 3, nil)
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeNoActiveSession})
}

func TestSubmitGrade_ReviewWriteFailureLeavesItemGraded(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.phrases.On("UpdateSchedule", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("disk full"))

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)
	item, _ := orch.NextItem()

	err = orch.SubmitGrade(context.Background(), item.ID, 3, nil)
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeProviderFailure})

	// The in-memory grade sticks; the caller retries the write, not the grade.
	stats := orch.Stats()
	assert.Equal(t, 1, stats.CompletedItems)
	assert.True(t, orch.IsComplete())
}

func TestSkip_RequeuesToBack(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 3).Return(duePhrases(3), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.phrases.On("UpdateSchedule", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := orch.Start(context.Background(), drillConfig(3))
	require.NoError(t, err)

	first, _ := orch.NextItem()
	require.NoError(t, orch.Skip(first.ID))

	second, _ := orch.NextItem()
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "phrase 2", second.Phrase.Text)

	// Grade everything else; the skipped item comes back last.
	require.NoError(t, orch.SubmitGrade(context.Background(), second.ID, 3, nil))
	third, _ := orch.NextItem()
	assert.Equal(t, "phrase 3", third.Phrase.Text)
	require.NoError(t, orch.SubmitGrade(context.Background(), third.ID, 3, nil))

	last, _ := orch.NextItem()
	require.NotNil(t, last)
	assert.Equal(t, first.ID, last.ID)
	assert.False(t, orch.IsComplete())
}

func TestSkip_GradedItemRejected(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 2).Return(duePhrases(2), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.phrases.On("UpdateSchedule", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := orch.Start(context.Background(), drillConfig(2))
	require.NoError(t, err)
	item, _ := orch.NextItem()
	require.NoError(t, orch.SubmitGrade(context.Background(), item.ID, 3, nil))

	err = orch.Skip(item.ID)
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeValidation})
}

func TestComplete_FreezesSession(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.sessions.On("Update", mock.Anything, mock.Anything).Return(nil)
	deps.phrases.On("UpdateSchedule", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)
	item, _ := orch.NextItem()
	rt := 5.5
	require.NoError(t, orch.SubmitGrade(context.Background(), item.ID, 3, &rt))

	final, err := orch.Complete(context.Background())
	require.NoError(t, err)
	require.NotNil(t, final.CompletedAt)
	assert.Equal(t, 3.0, final.AverageGrade)

	// The orchestrator is spent: stats are gone and lifecycle calls fail.
	assert.Nil(t, orch.Stats())
	_, err = orch.Complete(context.Background())
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeNoActiveSession})
	deps.sessions.AssertExpectations(t)
}

func TestStats_IdempotentWithFixedClock(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 2).Return(duePhrases(2), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := orch.Start(context.Background(), drillConfig(2))
	require.NoError(t, err)

	first := orch.Stats()
	second := orch.Stats()
	assert.Equal(t, first, second)
}

func TestStats_DurationOnlyGrows(t *testing.T) {
	now := testNow
	orch, deps := newTestOrchestrator(session.WithClock(func() time.Time { return now }))
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)

	assert.Equal(t, 0, orch.Stats().DurationSeconds)
	now = now.Add(42 * time.Second)
	assert.Equal(t, 42, orch.Stats().DurationSeconds)
}

func TestApplyBulkGrade_BackfillsUngradedItems(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 3).Return(duePhrases(3), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.phrases.On("UpdateSchedule", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	deps.reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := orch.Start(context.Background(), drillConfig(3))
	require.NoError(t, err)

	item, _ := orch.NextItem()
	require.NoError(t, orch.SubmitGrade(context.Background(), item.ID, 4, nil))

	require.NoError(t, orch.ApplyBulkGrade(context.Background(), 3))

	stats := orch.Stats()
	assert.Equal(t, 3, stats.CompletedItems)
	assert.Equal(t, 3, stats.CorrectItems)
	assert.InDelta(t, (4.0+3.0+3.0)/3.0, stats.AverageGrade, 1e-9)
	assert.True(t, orch.IsComplete())
	assert.Equal(t, session.PhaseComplete, orch.CurrentPhase())
	deps.reviews.AssertNumberOfCalls(t, "Insert", 3)
}

func TestApplyBulkGrade_InvalidGrade(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)

	err = orch.ApplyBulkGrade(context.Background(), 7)
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeInvalidGrade})
	assert.Equal(t, 0, orch.Stats().CompletedItems)
}

func TestBeginNarrative_Success(t *testing.T) {
	deps := &testDeps{
		phrases:  new(mocks.MockPhraseRepository),
		reviews:  new(mocks.MockReviewRepository),
		sessions: new(mocks.MockSessionRepository),
		stories:  new(mocks.MockStoryGenerator),
	}
	narrative := &models.Narrative{Text: "a short story", PhraseIDs: []int64{1}}
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.stories.On("GenerateNarrative", mock.Anything, mock.Anything, mock.Anything).Return(narrative, nil)

	orch := session.NewOrchestrator(deps.phrases, deps.reviews, deps.sessions,
		session.WithClock(func() time.Time { return testNow }),
		session.WithStoryGenerator(deps.stories))

	cfg := session.Config{
		ProfileID: 1, SessionType: models.SessionTypeReview, MaxItems: 1,
		EnableNarrative: true,
	}
	_, err := orch.Start(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, session.PhaseReviewing, orch.CurrentPhase())

	got, err := orch.BeginNarrative(context.Background())
	require.NoError(t, err)
	assert.Equal(t, narrative, got)
	assert.Equal(t, session.PhaseGrading, orch.CurrentPhase())
	assert.Equal(t, narrative, orch.Narrative())
}

func TestBeginNarrative_ProviderFailureDegrades(t *testing.T) {
	deps := &testDeps{
		phrases:  new(mocks.MockPhraseRepository),
		reviews:  new(mocks.MockReviewRepository),
		sessions: new(mocks.MockSessionRepository),
		stories:  new(mocks.MockStoryGenerator),
	}
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.stories.On("GenerateNarrative", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("model overloaded"))

	orch := session.NewOrchestrator(deps.phrases, deps.reviews, deps.sessions,
		session.WithClock(func() time.Time { return testNow }),
		session.WithStoryGenerator(deps.stories))

	cfg := session.Config{
		ProfileID: 1, SessionType: models.SessionTypeReview, MaxItems: 1,
		EnableNarrative: true,
	}
	_, err := orch.Start(context.Background(), cfg)
	require.NoError(t, err)

	got, err := orch.BeginNarrative(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, session.PhaseComplete, orch.CurrentPhase())
}

func TestBeginNarrative_WrongPhase(t *testing.T) {
	orch, deps := newTestOrchestrator()
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)

	_, err = orch.BeginNarrative(context.Background())
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeBadRequest})
}

func TestBusyFlag_RejectsConcurrentMutation(t *testing.T) {
	orch, deps := newTestOrchestrator()
	started := make(chan struct{})
	releaseWrite := make(chan struct{})

	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 2).Return(duePhrases(2), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.phrases.On("UpdateSchedule", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-releaseWrite
		}).Return(nil)
	deps.reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := orch.Start(context.Background(), drillConfig(2))
	require.NoError(t, err)
	item, _ := orch.NextItem()

	done := make(chan error, 1)
	go func() {
		done <- orch.SubmitGrade(context.Background(), item.ID, 3, nil)
	}()

	<-started
	err = orch.Skip(item.ID)
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeSessionBusy})

	close(releaseWrite)
	require.NoError(t, <-done)
}

func TestPrefetchDrills_CachesExercises(t *testing.T) {
	clozes := new(mocks.MockClozeGenerator)
	deps := &testDeps{
		phrases:  new(mocks.MockPhraseRepository),
		reviews:  new(mocks.MockReviewRepository),
		sessions: new(mocks.MockSessionRepository),
	}
	drills := []models.DrillExercise{{
		PhraseID: 1, Text: "___ mundo",
		Blanks: []models.DrillBlank{{Position: 0, Answer: "hola"}},
	}}
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	clozes.On("GenerateDrills", mock.Anything, mock.Anything, mock.Anything, 1).Return(drills, nil)

	orch := session.NewOrchestrator(deps.phrases, deps.reviews, deps.sessions,
		session.WithClock(func() time.Time { return testNow }),
		session.WithClozeGenerator(clozes))

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)

	require.NoError(t, orch.PrefetchDrills(context.Background()))
	assert.Equal(t, drills, orch.Drills())
}

func TestSubmitGrade_ScheduleFollowsGrade(t *testing.T) {
	orch, deps := newTestOrchestrator()
	var captured srs.State
	deps.phrases.On("DuePhrases", mock.Anything, int64(1), 1).Return(duePhrases(1), nil)
	deps.sessions.On("Insert", mock.Anything, mock.Anything).Return(nil)
	deps.phrases.On("UpdateSchedule", mock.Anything, int64(1), mock.AnythingOfType("srs.State")).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(srs.State)
		}).Return(nil)
	deps.reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)

	_, err := orch.Start(context.Background(), drillConfig(1))
	require.NoError(t, err)
	item, _ := orch.NextItem()

	require.NoError(t, orch.SubmitGrade(context.Background(), item.ID, 1, nil))

	assert.Equal(t, 0, captured.Repetitions)
	assert.Equal(t, 1, captured.IntervalDays)
	assert.InDelta(t, 2.3, captured.EaseFactor, 1e-9)
	assert.Equal(t, testNow.AddDate(0, 0, 1), captured.NextReviewAt)
}
