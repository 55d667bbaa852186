package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"inschoolz/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBulkOpRepository_CreatePending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBulkOpRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "bulk_operations" WHERE type = \$1 AND status IN \(\$2,\$3\).*FOR UPDATE`).
			WithArgs("create_bots", "pending", "running", 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectQuery(`INSERT INTO "bulk_operations"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		op := &models.BulkOperation{
			OpID: models.NewBulkOpID(models.BulkOpCreateBots),
			Type: models.BulkOpCreateBots,
		}
		err := repo.CreatePending(ctx, op)
		require.NoError(t, err)
		assert.Equal(t, models.BulkOpStatusPending, op.Status)
		assert.False(t, op.StartedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ConflictWhenSameTypeInFlight", func(t *testing.T) {
		mock.ExpectBegin()
		rows := sqlmock.NewRows([]string{"id", "op_id", "type", "status", "progress", "total", "started_at"}).
			AddRow(1, "create_bots_1756700000000_ab12cd34", "create_bots", "running", 40, 100, time.Now())
		mock.ExpectQuery(`SELECT \* FROM "bulk_operations" WHERE type = \$1 AND status IN \(\$2,\$3\).*FOR UPDATE`).
			WithArgs("create_bots", "pending", "running", 1).
			WillReturnRows(rows)
		mock.ExpectRollback()

		err := repo.CreatePending(ctx, &models.BulkOperation{
			OpID: models.NewBulkOpID(models.BulkOpCreateBots),
			Type: models.BulkOpCreateBots,
		})
		require.Error(t, err)

		var inProgress *ErrOperationInProgress
		require.True(t, errors.As(err, &inProgress))
		assert.Equal(t, models.BulkOpStatusRunning, inProgress.Conflict.Status)
		assert.Equal(t, 40, inProgress.Conflict.Progress)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBulkOpRepository_Finish(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBulkOpRepository(db)
	ctx := context.Background()

	t.Run("RejectsNonTerminalStatus", func(t *testing.T) {
		err := repo.Finish(ctx, "op", models.BulkOpStatusRunning, "")
		assert.Error(t, err)
	})

	t.Run("TerminalRowsAreImmutable", func(t *testing.T) {
		// Finishing an already-finished operation affects zero rows and
		// reports not found rather than overwriting the terminal state.
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "bulk_operations" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Finish(ctx, "gone", models.BulkOpStatusCompleted, "done")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CompletesRunningRow", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "bulk_operations" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Finish(ctx, "op", models.BulkOpStatusCompleted, "created 100 bots")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBulkOpRepository_SweepOrphans(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBulkOpRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bulk_operations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	swept, err := repo.SweepOrphans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), swept)
	assert.NoError(t, mock.ExpectationsWereMet())
}
