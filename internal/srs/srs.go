// Package srs implements the SM-2 style scheduling math as pure functions.
// There is no I/O here; given the same grade, prior state and clock value the
// result is always identical.
package srs

import (
	"math"
	"time"

	"github.com/andrev/phraseflash/internal/errors"
)

// Grade is a 1..4 self-assessment of recall quality.
type Grade int

const (
	GradeAgain Grade = 1 // failed recall, retry tomorrow
	GradeHard  Grade = 2 // failed recall, answer felt familiar
	GradeGood  Grade = 3 // correct with effort
	GradeEasy  Grade = 4 // correct without hesitation
)

// Valid reports whether g is inside the accepted range.
func (g Grade) Valid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// Correct reports whether g counts as a successful recall.
func (g Grade) Correct() bool {
	return g >= GradeGood
}

const (
	// MinEaseFactor is the floor the ease factor never drops below.
	MinEaseFactor = 1.3
	// MaxIntervalDays caps interval growth at ten years so very long
	// success streaks cannot push the next review out indefinitely.
	MaxIntervalDays = 3650

	defaultEaseFactor = 2.5
)

// State is the per-item spaced-repetition memory.
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
	NextReviewAt time.Time
}

// Initial returns the schedule for an item that has never been reviewed.
func Initial(now time.Time) State {
	return State{
		EaseFactor:   defaultEaseFactor,
		IntervalDays: 1,
		Repetitions:  0,
		NextReviewAt: now.AddDate(0, 0, 1),
	}
}

// Compute applies one review to the prior schedule and returns the next one.
//
// A failed grade (1 or 2) resets repetitions to zero and forces a one-day
// retry interval. A successful grade extends the streak: the first two
// successes use the fixed 1 and 6 day intervals, after that the interval
// grows by the updated ease factor.
func Compute(grade Grade, prior State, now time.Time) (State, error) {
	if !grade.Valid() {
		return State{}, errors.NewInvalidGradeError(int(grade))
	}
	if prior.EaseFactor < MinEaseFactor {
		return State{}, errors.NewInvalidPriorStateError("ease factor below 1.3")
	}

	var ease float64
	if grade.Correct() {
		q := float64(grade)
		ease = prior.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	} else {
		ease = prior.EaseFactor - 0.2
	}
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}

	next := State{EaseFactor: ease}
	if !grade.Correct() {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		next.Repetitions = prior.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(prior.IntervalDays) * ease))
		}
		if next.IntervalDays > MaxIntervalDays {
			next.IntervalDays = MaxIntervalDays
		}
		if next.IntervalDays < 1 {
			next.IntervalDays = 1
		}
	}

	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	return next, nil
}
