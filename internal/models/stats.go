package models

// StudyStat summarizes a profile's overall study history.
type StudyStat struct {
	TotalPhrases    int     `json:"total_phrases"`
	TotalReviews    int     `json:"total_reviews"`
	TotalSessions   int     `json:"total_sessions"`
	PhrasesDue      int     `json:"phrases_due"`
	PhrasesDueSoon  int     `json:"phrases_due_soon"`
	PhrasesMastered int     `json:"phrases_mastered"`
	OverallAccuracy float64 `json:"overall_accuracy"`
	AvgGrade        float64 `json:"avg_grade"`
	AvgEaseFactor   float64 `json:"avg_ease_factor"`
	AvgIntervalDays float64 `json:"avg_interval_days"`
}

// DailyStat is one day's worth of review activity.
type DailyStat struct {
	Day          string  `json:"day"`
	Reviews      int     `json:"reviews"`
	CorrectRate  float64 `json:"correct_rate"`
	AverageGrade float64 `json:"average_grade"`
}
