package srs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/andrev/phraseflash/internal/errors"
	"github.com/andrev/phraseflash/internal/srs"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestInitial(t *testing.T) {
	state := srs.Initial(testNow)

	assert.Equal(t, 2.5, state.EaseFactor)
	assert.Equal(t, 1, state.IntervalDays)
	assert.Equal(t, 0, state.Repetitions)
	assert.Equal(t, testNow.AddDate(0, 0, 1), state.NextReviewAt)
}

func TestCompute_FailedGradesResetProgress(t *testing.T) {
	prior := srs.State{EaseFactor: 2.5, IntervalDays: 30, Repetitions: 7}

	for _, grade := range []srs.Grade{srs.GradeAgain, srs.GradeHard} {
		next, err := srs.Compute(grade, prior, testNow)
		require.NoError(t, err)

		assert.Equal(t, 1, next.IntervalDays, "failure forces a one-day retry")
		assert.Equal(t, 0, next.Repetitions, "failure resets the streak")
		assert.Less(t, next.EaseFactor, prior.EaseFactor, "ease factor should drop")
		assert.Equal(t, testNow.AddDate(0, 0, 1), next.NextReviewAt)
	}
}

func TestCompute_SuccessExtendsStreak(t *testing.T) {
	prior := srs.State{EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2}

	for _, grade := range []srs.Grade{srs.GradeGood, srs.GradeEasy} {
		next, err := srs.Compute(grade, prior, testNow)
		require.NoError(t, err)

		assert.Equal(t, prior.Repetitions+1, next.Repetitions)
		assert.Greater(t, next.IntervalDays, prior.IntervalDays)
	}
}

func TestCompute_EaseFactorNeverBelowFloor(t *testing.T) {
	state := srs.State{EaseFactor: 1.3, IntervalDays: 10, Repetitions: 3}

	for i := 0; i < 10; i++ {
		var err error
		state, err = srs.Compute(srs.GradeAgain, state, testNow)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, state.EaseFactor, srs.MinEaseFactor)
	}
}

func TestCompute_GoodStreakIntervalSequence(t *testing.T) {
	state := srs.Initial(testNow)

	// First success: fixed one-day interval.
	state, err := srs.Compute(srs.GradeGood, state, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Repetitions)
	assert.Equal(t, 1, state.IntervalDays)

	// Second success: fixed six-day interval.
	state, err = srs.Compute(srs.GradeGood, state, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Repetitions)
	assert.Equal(t, 6, state.IntervalDays)

	// Third success: previous interval times the updated ease factor.
	easeAfterSecond := state.EaseFactor
	state, err = srs.Compute(srs.GradeGood, state, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Repetitions)
	expected := int(float64(6)*(easeAfterSecond-0.14) + 0.5)
	assert.Equal(t, expected, state.IntervalDays)
}

func TestCompute_EasyPreservesEaseFactor(t *testing.T) {
	// Grade 4 maps to a zero ease delta in the SM-2 formula, so an easy
	// review never lowers the ease factor while good (grade 3) does.
	prior := srs.State{EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2}

	easy, err := srs.Compute(srs.GradeEasy, prior, testNow)
	require.NoError(t, err)
	good, err := srs.Compute(srs.GradeGood, prior, testNow)
	require.NoError(t, err)

	assert.Equal(t, prior.EaseFactor, easy.EaseFactor)
	assert.Less(t, good.EaseFactor, easy.EaseFactor)
}

func TestCompute_InvalidGrade(t *testing.T) {
	prior := srs.State{EaseFactor: 2.5, IntervalDays: 1}

	for _, grade := range []srs.Grade{0, 5, -1, 10} {
		_, err := srs.Compute(grade, prior, testNow)
		require.Error(t, err)
		assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeInvalidGrade})
	}
}

func TestCompute_InvalidPriorState(t *testing.T) {
	prior := srs.State{EaseFactor: 1.1, IntervalDays: 1}

	_, err := srs.Compute(srs.GradeGood, prior, testNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, &apperrors.AppError{Code: apperrors.ErrCodeInvalidPriorState})
}

func TestCompute_IntervalCap(t *testing.T) {
	prior := srs.State{EaseFactor: 2.5, IntervalDays: 3000, Repetitions: 20}

	next, err := srs.Compute(srs.GradeEasy, prior, testNow)
	require.NoError(t, err)

	assert.Equal(t, srs.MaxIntervalDays, next.IntervalDays)
}

func TestCompute_IntervalTable(t *testing.T) {
	tests := []struct {
		name     string
		grade    srs.Grade
		prior    srs.State
		expected int
	}{
		{
			name:     "second success is always six days",
			grade:    srs.GradeGood,
			prior:    srs.State{EaseFactor: 2.5, IntervalDays: 1, Repetitions: 1},
			expected: 6,
		},
		{
			name:     "third success multiplies by ease factor",
			grade:    srs.GradeGood,
			prior:    srs.State{EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2},
			expected: 14, // round(6 * 2.36)
		},
		{
			name:     "easy grows faster than good",
			grade:    srs.GradeEasy,
			prior:    srs.State{EaseFactor: 2.5, IntervalDays: 10, Repetitions: 5},
			expected: 25, // round(10 * 2.5), easy leaves ease unchanged
		},
		{
			name:     "hard resets to one day",
			grade:    srs.GradeHard,
			prior:    srs.State{EaseFactor: 2.0, IntervalDays: 40, Repetitions: 4},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := srs.Compute(tt.grade, tt.prior, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, next.IntervalDays)
		})
	}
}
