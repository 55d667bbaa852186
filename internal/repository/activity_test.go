package repository

import (
	"context"
	"regexp"
	"testing"

	"inschoolz/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestActivityRepository_GetCount(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	t.Run("ExistingRow", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "user_id", "action", "date", "count"}).
			AddRow(1, 7, "post", "2026-09-01", 2)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "daily_activities" WHERE user_id = $1 AND action = $2 AND date = $3 ORDER BY "daily_activities"."id" LIMIT $4`)).
			WithArgs(7, "post", "2026-09-01", 1).
			WillReturnRows(rows)

		count, err := repo.GetCount(ctx, 7, models.ActionPost, "2026-09-01")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoRowReadsAsZero", func(t *testing.T) {
		// A row keyed to yesterday never matches today's date, so a fresh
		// day starts at zero without any reset job.
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "daily_activities" WHERE user_id = $1 AND action = $2 AND date = $3 ORDER BY "daily_activities"."id" LIMIT $4`)).
			WithArgs(7, "post", "2026-09-02", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		count, err := repo.GetCount(ctx, 7, models.ActionPost, "2026-09-02")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestActivityRepository_GetAll_FillsMissingActions(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "user_id", "action", "date", "count"}).
		AddRow(1, 7, "post", "2026-09-01", 2).
		AddRow(2, 7, "like", "2026-09-01", 11)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "daily_activities" WHERE user_id = $1 AND date = $2`)).
		WithArgs(7, "2026-09-01").
		WillReturnRows(rows)

	counts, err := repo.GetAll(ctx, 7, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.ActionPost])
	assert.Equal(t, 11, counts[models.ActionLike])
	assert.Equal(t, 0, counts[models.ActionComment])
	assert.Equal(t, 0, counts[models.ActionGame])
	assert.Equal(t, 0, counts[models.ActionAttendance])
	assert.NoError(t, mock.ExpectationsWereMet())
}
