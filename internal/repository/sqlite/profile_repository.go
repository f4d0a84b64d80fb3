package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: id=%d", id)

	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, source_lang, target_lang, proficiency, created_at
FROM profiles
WHERE id = ?
`, id).Scan(&p.ID, &p.Username, &p.SourceLang, &p.TargetLang, &p.Proficiency, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("listing profiles")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, source_lang, target_lang, proficiency, created_at
FROM profiles
ORDER BY username ASC
`)
	if err != nil {
		log.Error("failed to query profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.SourceLang, &p.TargetLang, &p.Proficiency, &p.CreatedAt); err != nil {
			log.Error("failed to scan profile row: %v", err)
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) Upsert(ctx context.Context, p models.Profile) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("upserting profile: username=%s", p.Username)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO profiles (username, source_lang, target_lang, proficiency)
VALUES (?, ?, ?, ?)
ON CONFLICT(username) DO UPDATE SET source_lang = excluded.source_lang, target_lang = excluded.target_lang, proficiency = excluded.proficiency
`, p.Username, p.SourceLang, p.TargetLang, p.Proficiency)
	if err != nil {
		log.Error("failed to upsert profile: %v", err)
		return nil, err
	}

	var out models.Profile
	err = r.db.QueryRowContext(ctx, `
SELECT id, username, source_lang, target_lang, proficiency, created_at
FROM profiles
WHERE username = ?
`, p.Username).Scan(&out.ID, &out.Username, &out.SourceLang, &out.TargetLang, &out.Proficiency, &out.CreatedAt)
	if err != nil {
		log.Error("failed to load upserted profile: %v", err)
		return nil, err
	}
	log.Debug("profile upserted: id=%d", out.ID)
	return &out, nil
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("deleting profile: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete profile: %v", err)
	}
	return err
}
