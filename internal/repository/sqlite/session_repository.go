package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: id=%s, profile_id=%d, total_items=%d", s.ID, s.ProfileID, s.TotalItems)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, profile_id, session_type, total_items, completed_items, correct_items, average_grade, duration_seconds, started_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.ProfileID, s.SessionType, s.TotalItems, s.CompletedItems, s.CorrectItems, s.AverageGrade, s.DurationSeconds, s.StartedAt, s.CompletedAt)
	if err != nil {
		log.Error("failed to insert session: %v", err)
	}
	return err
}

func (r *sessionRepository) Update(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: id=%s, completed=%d/%d", s.ID, s.CompletedItems, s.TotalItems)

	_, err := r.db.ExecContext(ctx, `
UPDATE sessions
SET completed_items = ?, correct_items = ?, average_grade = ?, duration_seconds = ?, completed_at = ?
WHERE id = ?
`, s.CompletedItems, s.CorrectItems, s.AverageGrade, s.DurationSeconds, s.CompletedAt, s.ID)
	if err != nil {
		log.Error("failed to update session: %v", err)
	}
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%s", id)

	var s models.Session
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, profile_id, session_type, total_items, completed_items, correct_items, average_grade, duration_seconds, started_at, completed_at
FROM sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.ProfileID, &s.SessionType, &s.TotalItems, &s.CompletedItems,
		&s.CorrectItems, &s.AverageGrade, &s.DurationSeconds, &s.StartedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	return &s, nil
}

func (r *sessionRepository) ListRecent(ctx context.Context, profileID int64, limit int) ([]models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing recent sessions: profile_id=%d, limit=%d", profileID, limit)

	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, profile_id, session_type, total_items, completed_items, correct_items, average_grade, duration_seconds, started_at, completed_at
FROM sessions
WHERE profile_id = ?
ORDER BY started_at DESC
LIMIT ?
`, profileID, limit)
	if err != nil {
		log.Error("failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var completedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.ProfileID, &s.SessionType, &s.TotalItems, &s.CompletedItems,
			&s.CorrectItems, &s.AverageGrade, &s.DurationSeconds, &s.StartedAt, &completedAt); err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		if completedAt.Valid {
			t := completedAt.Time
			s.CompletedAt = &t
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
