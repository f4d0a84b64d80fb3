package models

import "time"

// SessionType selects which items a session draws from.
type SessionType string

const (
	SessionTypeReview SessionType = "review"
	SessionTypeNew    SessionType = "new"
	SessionTypeMixed  SessionType = "mixed"
)

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	switch t {
	case SessionTypeReview, SessionTypeNew, SessionTypeMixed:
		return true
	}
	return false
}

// Session aggregates one study-session run. AverageGrade is the mean over
// completed items only; DurationSeconds tracks wall clock while active and
// freezes once CompletedAt is set.
type Session struct {
	ID              string      `json:"id"`
	ProfileID       int64       `json:"profile_id"`
	SessionType     SessionType `json:"session_type"`
	TotalItems      int         `json:"total_items"`
	CompletedItems  int         `json:"completed_items"`
	CorrectItems    int         `json:"correct_items"`
	AverageGrade    float64     `json:"average_grade"`
	DurationSeconds int         `json:"duration_seconds"`
	StartedAt       time.Time   `json:"started_at"`
	CompletedAt     *time.Time  `json:"completed_at"`
}

// StudyItem is one unit of study inside a session. Grade is nil until the
// item has been graded; grading happens at most once per item.
type StudyItem struct {
	ID                  string   `json:"id"`
	Phrase              Phrase   `json:"phrase"`
	Order               int      `json:"order"`
	Grade               *int     `json:"grade"`
	ResponseTimeSeconds *float64 `json:"response_time_seconds"`
	IsCorrect           *bool    `json:"is_correct"`
}

// Graded reports whether the item has received a grade.
func (it *StudyItem) Graded() bool {
	return it.Grade != nil
}
