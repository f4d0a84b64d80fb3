package sqlite

import (
	"context"
	"database/sql"

	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) StudyStats(ctx context.Context, profileID int64) (*models.StudyStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching study stats: profile_id=%d", profileID)

	var stat models.StudyStat
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(DISTINCT p.id) AS total_phrases,
    COUNT(DISTINCT CASE WHEN p.next_review_at IS NULL OR p.next_review_at <= CURRENT_TIMESTAMP THEN p.id END) AS phrases_due,
    COUNT(DISTINCT CASE WHEN p.next_review_at > CURRENT_TIMESTAMP AND p.next_review_at <= datetime('now', '+7 days') THEN p.id END) AS phrases_due_soon,
    COUNT(DISTINCT CASE WHEN p.repetitions >= 5 AND p.interval_days >= 30 THEN p.id END) AS phrases_mastered,
    COALESCE(AVG(p.ease_factor), 0) AS avg_ease_factor,
    COALESCE(AVG(p.interval_days), 0) AS avg_interval_days
FROM phrases p
WHERE p.profile_id = ?
`, profileID).Scan(
		&stat.TotalPhrases,
		&stat.PhrasesDue,
		&stat.PhrasesDueSoon,
		&stat.PhrasesMastered,
		&stat.AvgEaseFactor,
		&stat.AvgIntervalDays,
	)
	if err != nil {
		log.Error("failed to get phrase stats: %v", err)
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
SELECT
    COUNT(*) AS total_reviews,
    CASE WHEN COUNT(*) > 0 THEN ROUND(100.0 * SUM(CASE WHEN r.grade >= 3 THEN 1 ELSE 0 END) / COUNT(*), 1) ELSE 0 END AS overall_accuracy,
    COALESCE(AVG(r.grade), 0) AS avg_grade
FROM reviews r
JOIN phrases p ON p.id = r.phrase_id
WHERE p.profile_id = ?
`, profileID).Scan(&stat.TotalReviews, &stat.OverallAccuracy, &stat.AvgGrade)
	if err != nil {
		log.Error("failed to get review stats: %v", err)
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE profile_id = ?`, profileID).Scan(&stat.TotalSessions)
	if err != nil {
		log.Error("failed to count sessions: %v", err)
		return nil, err
	}

	return &stat, nil
}

func (r *statsRepository) DailyStats(ctx context.Context, profileID int64, days int) ([]models.DailyStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching daily stats: profile_id=%d, days=%d", profileID, days)

	if days <= 0 {
		days = 30
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT
    date(r.reviewed_at) AS day,
    COUNT(*) AS reviews,
    CASE WHEN COUNT(*) > 0 THEN ROUND(100.0 * SUM(CASE WHEN r.grade >= 3 THEN 1 ELSE 0 END) / COUNT(*), 1) ELSE 0 END AS correct_rate,
    COALESCE(AVG(r.grade), 0) AS average_grade
FROM reviews r
JOIN phrases p ON p.id = r.phrase_id
WHERE p.profile_id = ? AND r.reviewed_at >= datetime('now', '-' || ? || ' days')
GROUP BY day
ORDER BY day ASC
`, profileID, days)
	if err != nil {
		log.Error("failed to query daily stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.DailyStat
	for rows.Next() {
		var s models.DailyStat
		if err := rows.Scan(&s.Day, &s.Reviews, &s.CorrectRate, &s.AverageGrade); err != nil {
			log.Error("failed to scan daily stat: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepository) GradeDistribution(ctx context.Context, profileID int64) (map[int]int, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching grade distribution: profile_id=%d", profileID)

	rows, err := r.db.QueryContext(ctx, `
SELECT r.grade, COUNT(*)
FROM reviews r
JOIN phrases p ON p.id = r.phrase_id
WHERE p.profile_id = ?
GROUP BY r.grade
`, profileID)
	if err != nil {
		log.Error("failed to query grade distribution: %v", err)
		return nil, err
	}
	defer rows.Close()

	dist := make(map[int]int)
	for rows.Next() {
		var grade, count int
		if err := rows.Scan(&grade, &count); err != nil {
			log.Error("failed to scan grade distribution: %v", err)
			return nil, err
		}
		dist[grade] = count
	}
	return dist, rows.Err()
}
