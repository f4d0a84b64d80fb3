package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/repository"
	"github.com/andrev/phraseflash/internal/srs"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type phraseRepository struct {
	db *sql.DB
}

// NewPhraseRepository creates a new PhraseRepository implementation
func NewPhraseRepository(db *sql.DB) repository.PhraseRepository {
	return &phraseRepository{db: db}
}

const phraseColumns = `id, profile_id, text, translation, context, ease_factor, interval_days, repetitions, next_review_at, created_at`

func scanPhrase(row interface{ Scan(...any) error }) (models.Phrase, error) {
	var p models.Phrase
	var nextReview sql.NullTime
	err := row.Scan(&p.ID, &p.ProfileID, &p.Text, &p.Translation, &p.Context,
		&p.EaseFactor, &p.IntervalDays, &p.Repetitions, &nextReview, &p.CreatedAt)
	if err != nil {
		return models.Phrase{}, err
	}
	if nextReview.Valid {
		t := nextReview.Time
		p.NextReviewAt = &t
	}
	return p, nil
}

func (r *phraseRepository) Get(ctx context.Context, id int64) (*models.Phrase, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("getting phrase: id=%d", id)

	row := r.db.QueryRowContext(ctx, `SELECT `+phraseColumns+` FROM phrases WHERE id = ?`, id)
	p, err := scanPhrase(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("phrase not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get phrase: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *phraseRepository) List(ctx context.Context, filter models.PhraseFilter) ([]models.Phrase, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("listing phrases: profile_id=%d, search=%q", filter.ProfileID, filter.Search)

	query := sqlBuilder.Select(phraseColumns).From("phrases")
	if filter.ProfileID > 0 {
		query = query.Where(squirrel.Eq{"profile_id": filter.ProfileID})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"text": like},
			squirrel.Like{"translation": like},
		})
	}
	query = query.OrderBy("created_at DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query = query.Limit(uint64(limit))
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build phrase list query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query phrases: %v", err)
		return nil, err
	}
	defer rows.Close()

	var phrases []models.Phrase
	for rows.Next() {
		p, err := scanPhrase(rows)
		if err != nil {
			log.Error("failed to scan phrase row: %v", err)
			return nil, err
		}
		phrases = append(phrases, p)
	}
	log.Debug("found %d phrases", len(phrases))
	return phrases, rows.Err()
}

func (r *phraseRepository) Count(ctx context.Context, filter models.PhraseFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")

	query := sqlBuilder.Select("COUNT(*)").From("phrases")
	if filter.ProfileID > 0 {
		query = query.Where(squirrel.Eq{"profile_id": filter.ProfileID})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"text": like},
			squirrel.Like{"translation": like},
		})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count phrases: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *phraseRepository) Insert(ctx context.Context, p models.Phrase) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("inserting phrase: profile_id=%d, text=%q", p.ProfileID, p.Text)

	ease := p.EaseFactor
	if ease == 0 {
		ease = srs.Initial(p.CreatedAt).EaseFactor
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO phrases (profile_id, text, translation, context, ease_factor, interval_days, repetitions, next_review_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, p.ProfileID, p.Text, p.Translation, p.Context, ease, p.IntervalDays, p.Repetitions, p.NextReviewAt)
	if err != nil {
		log.Error("failed to insert phrase: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get phrase id: %v", err)
		return 0, err
	}
	log.Debug("phrase inserted: id=%d", id)
	return id, nil
}

func (r *phraseRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("deleting phrase: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM phrases WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete phrase: %v", err)
	}
	return err
}

func (r *phraseRepository) DuePhrases(ctx context.Context, profileID int64, limit int) ([]models.Phrase, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("fetching due phrases: profile_id=%d, limit=%d", profileID, limit)

	// Never-reviewed phrases first, then the most overdue, with insertion
	// order breaking ties. The session orchestrator relies on this order
	// and does not re-sort.
	rows, err := r.db.QueryContext(ctx, `
SELECT `+phraseColumns+`
FROM phrases
WHERE profile_id = ?
AND (next_review_at IS NULL OR next_review_at <= CURRENT_TIMESTAMP)
ORDER BY CASE WHEN next_review_at IS NULL THEN 0 ELSE 1 END, next_review_at ASC, created_at ASC
LIMIT ?
`, profileID, limit)
	if err != nil {
		log.Error("failed to query due phrases: %v", err)
		return nil, err
	}
	defer rows.Close()

	var phrases []models.Phrase
	for rows.Next() {
		p, err := scanPhrase(rows)
		if err != nil {
			log.Error("failed to scan phrase row: %v", err)
			return nil, err
		}
		phrases = append(phrases, p)
	}
	log.Debug("found %d due phrases", len(phrases))
	return phrases, rows.Err()
}

func (r *phraseRepository) CountDue(ctx context.Context, profileID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM phrases
WHERE profile_id = ?
AND (next_review_at IS NULL OR next_review_at <= CURRENT_TIMESTAMP)
`, profileID).Scan(&count)
	if err != nil {
		log.Error("failed to count due phrases: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *phraseRepository) UpdateSchedule(ctx context.Context, id int64, state srs.State) error {
	log := logger.FromContext(ctx).WithPrefix("phrase_repo")
	log.Debug("updating schedule: id=%d, interval=%d, ease=%.2f", id, state.IntervalDays, state.EaseFactor)

	_, err := r.db.ExecContext(ctx, `
UPDATE phrases
SET ease_factor = ?, interval_days = ?, repetitions = ?, next_review_at = ?
WHERE id = ?
`, state.EaseFactor, state.IntervalDays, state.Repetitions, state.NextReviewAt, id)
	if err != nil {
		log.Error("failed to update schedule: %v", err)
	}
	return err
}
