package sqlite

import (
	"context"
	"database/sql"

	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Insert(ctx context.Context, rv models.Review) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review: phrase_id=%d, grade=%d, time=%.2fs", rv.PhraseID, rv.Grade, rv.ResponseTimeSeconds)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO reviews (phrase_id, grade, response_time_seconds, ease_factor, interval_days, repetitions, next_review_at, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, rv.PhraseID, rv.Grade, rv.ResponseTimeSeconds, rv.EaseFactor, rv.IntervalDays, rv.Repetitions, rv.NextReviewAt, rv.ReviewedAt)
	if err != nil {
		log.Error("failed to insert review: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get review id: %v", err)
		return 0, err
	}
	log.Debug("review inserted: id=%d", id)
	return id, nil
}

func (r *reviewRepository) ForPhrase(ctx context.Context, phraseID int64) ([]models.Review, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching reviews: phrase_id=%d", phraseID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, phrase_id, grade, response_time_seconds, ease_factor, interval_days, repetitions, next_review_at, reviewed_at
FROM reviews
WHERE phrase_id = ?
ORDER BY reviewed_at ASC
`, phraseID)
	if err != nil {
		log.Error("failed to query reviews: %v", err)
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.PhraseID, &rv.Grade, &rv.ResponseTimeSeconds,
			&rv.EaseFactor, &rv.IntervalDays, &rv.Repetitions, &rv.NextReviewAt, &rv.ReviewedAt); err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	log.Debug("found %d reviews", len(reviews))
	return reviews, rows.Err()
}
