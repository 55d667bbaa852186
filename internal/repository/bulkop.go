package repository

import (
	"context"
	"errors"
	"time"

	"inschoolz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrOperationInProgress is returned by CreatePending when a non-terminal
// operation of the same type already exists. Conflict holds that operation.
type ErrOperationInProgress struct {
	Conflict *models.BulkOperation
}

func (e *ErrOperationInProgress) Error() string {
	return "operation of type " + string(e.Conflict.Type) + " already in progress"
}

// BulkOpRepository persists bulk-operation job records. Records are durable
// rows, not in-memory state, so restarts cannot lose or duplicate jobs.
type BulkOpRepository interface {
	// CreatePending inserts the row only if no pending or running operation
	// of the same type exists. The existence check and the insert run in one
	// transaction, with the check done under a lock, so two concurrent
	// submissions cannot both pass it.
	CreatePending(ctx context.Context, op *models.BulkOperation) error
	GetByOpID(ctx context.Context, opID string) (*models.BulkOperation, error)
	ListRecent(ctx context.Context, limit int) ([]models.BulkOperation, error)
	MarkRunning(ctx context.Context, opID string) error
	UpdateProgress(ctx context.Context, opID string, progress, total int, message string) error
	Finish(ctx context.Context, opID string, status models.BulkOperationStatus, message string) error
	// SweepOrphans fails every pending or running row; called once at
	// startup, before any worker is spawned, to clear rows orphaned by a
	// previous process dying mid-run.
	SweepOrphans(ctx context.Context) (int64, error)
}

type bulkOpRepository struct {
	db *gorm.DB
}

// NewBulkOpRepository returns a new BulkOpRepository implementation.
func NewBulkOpRepository(db *gorm.DB) BulkOpRepository {
	return &bulkOpRepository{db: db}
}

func (r *bulkOpRepository) CreatePending(ctx context.Context, op *models.BulkOperation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.BulkOperation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("type = ? AND status IN ?", op.Type,
				[]models.BulkOperationStatus{models.BulkOpStatusPending, models.BulkOpStatusRunning}).
			First(&existing).Error
		if err == nil {
			return &ErrOperationInProgress{Conflict: &existing}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewInternalError(err)
		}

		op.Status = models.BulkOpStatusPending
		if op.StartedAt.IsZero() {
			op.StartedAt = time.Now()
		}
		if err := tx.Create(op).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *bulkOpRepository) GetByOpID(ctx context.Context, opID string) (*models.BulkOperation, error) {
	var op models.BulkOperation
	if err := r.db.WithContext(ctx).Where("op_id = ?", opID).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("BulkOperation", opID)
		}
		return nil, models.NewInternalError(err)
	}
	return &op, nil
}

func (r *bulkOpRepository) ListRecent(ctx context.Context, limit int) ([]models.BulkOperation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var ops []models.BulkOperation
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&ops).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ops, nil
}

func (r *bulkOpRepository) MarkRunning(ctx context.Context, opID string) error {
	result := r.db.WithContext(ctx).Model(&models.BulkOperation{}).
		Where("op_id = ? AND status = ?", opID, models.BulkOpStatusPending).
		Update("status", models.BulkOpStatusRunning)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("BulkOperation", opID)
	}
	return nil
}

func (r *bulkOpRepository) UpdateProgress(ctx context.Context, opID string, progress, total int, message string) error {
	updates := map[string]any{
		"progress": progress,
		"total":    total,
	}
	if message != "" {
		updates["message"] = message
	}
	// Terminal rows are immutable; a straggling worker update must not
	// resurrect a completed or failed operation.
	if err := r.db.WithContext(ctx).Model(&models.BulkOperation{}).
		Where("op_id = ? AND status IN ?", opID,
			[]models.BulkOperationStatus{models.BulkOpStatusPending, models.BulkOpStatusRunning}).
		Updates(updates).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bulkOpRepository) Finish(ctx context.Context, opID string, status models.BulkOperationStatus, message string) error {
	if !status.IsTerminal() {
		return models.NewValidationError("finish requires a terminal status")
	}
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.BulkOperation{}).
		Where("op_id = ? AND status IN ?", opID,
			[]models.BulkOperationStatus{models.BulkOpStatusPending, models.BulkOpStatusRunning}).
		Updates(map[string]any{
			"status":       status,
			"message":      message,
			"completed_at": &now,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("BulkOperation", opID)
	}
	return nil
}

func (r *bulkOpRepository) SweepOrphans(ctx context.Context) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.BulkOperation{}).
		Where("status IN ?",
			[]models.BulkOperationStatus{models.BulkOpStatusPending, models.BulkOpStatusRunning}).
		Updates(map[string]any{
			"status":       models.BulkOpStatusFailed,
			"message":      "interrupted by server restart",
			"completed_at": &now,
		})
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}
