package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrev/phraseflash/internal/models"
	"github.com/andrev/phraseflash/internal/repository/sqlite"
	"github.com/andrev/phraseflash/internal/testutil"
)

func TestSessionRepository_InsertGetUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	profile, err := sqlite.NewProfileRepository(db).Upsert(ctx, models.Profile{Username: "anna"})
	require.NoError(t, err)

	repo := sqlite.NewSessionRepository(db)
	started := time.Now().UTC().Truncate(time.Second)
	sess := models.Session{
		ID:          uuid.NewString(),
		ProfileID:   profile.ID,
		SessionType: models.SessionTypeReview,
		TotalItems:  3,
		StartedAt:   started,
	}
	require.NoError(t, repo.Insert(ctx, sess))

	got, err := repo.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.TotalItems)
	assert.Nil(t, got.CompletedAt)

	completed := started.Add(90 * time.Second)
	sess.CompletedItems = 3
	sess.CorrectItems = 2
	sess.AverageGrade = 3.33
	sess.DurationSeconds = 90
	sess.CompletedAt = &completed
	require.NoError(t, repo.Update(ctx, sess))

	got, err = repo.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CompletedItems)
	assert.Equal(t, 2, got.CorrectItems)
	assert.InDelta(t, 3.33, got.AverageGrade, 1e-9)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(completed))
}

func TestSessionRepository_GetMissing(t *testing.T) {
	db := testutil.NewTestDB(t)

	got, err := sqlite.NewSessionRepository(db).Get(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepository_ListRecent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	profile, err := sqlite.NewProfileRepository(db).Upsert(ctx, models.Profile{Username: "anna"})
	require.NoError(t, err)

	repo := sqlite.NewSessionRepository(db)
	base := time.Now().UTC().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		sess := models.Session{
			ID:          uuid.NewString(),
			ProfileID:   profile.ID,
			SessionType: models.SessionTypeReview,
			TotalItems:  1,
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Insert(ctx, sess))
		ids = append(ids, sess.ID)
	}

	recent, err := repo.ListRecent(ctx, profile.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// Most recently started first.
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}
