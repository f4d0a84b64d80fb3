package models

import "time"

// Phrase is a learning item together with its spaced-repetition schedule.
// NextReviewAt is nil until the phrase has been reviewed at least once;
// never-reviewed phrases sort ahead of everything else in the due queue.
type Phrase struct {
	ID           int64      `json:"id"`
	ProfileID    int64      `json:"profile_id"`
	Text         string     `json:"text"`
	Translation  string     `json:"translation"`
	Context      string     `json:"context,omitempty"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	Repetitions  int        `json:"repetitions"`
	NextReviewAt *time.Time `json:"next_review_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PhraseFilter narrows phrase list queries.
type PhraseFilter struct {
	ProfileID int64
	Search    string
	Limit     int
	Offset    int
}

// Review is one append-only record of a graded recall, carrying the
// schedule computed from that grade.
type Review struct {
	ID                  int64     `json:"id"`
	PhraseID            int64     `json:"phrase_id"`
	Grade               int       `json:"grade"`
	ResponseTimeSeconds float64   `json:"response_time_seconds"`
	EaseFactor          float64   `json:"ease_factor"`
	IntervalDays        int       `json:"interval_days"`
	Repetitions         int       `json:"repetitions"`
	NextReviewAt        time.Time `json:"next_review_at"`
	ReviewedAt          time.Time `json:"reviewed_at"`
}
