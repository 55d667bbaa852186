package repository

import (
	"context"
	"errors"

	"inschoolz/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository reads per-day action counters. Rows are keyed by
// (user, action, date); a missing row or a row for an older date reads as
// zero, which is how the day rolls over without any scheduled reset.
// Writes happen only inside ExperienceRepository.GrantForAction, where the
// increment shares a transaction with the limit check and the XP grant.
type ActivityRepository interface {
	GetCount(ctx context.Context, userID uint, action models.ActionType, date string) (int, error)
	GetAll(ctx context.Context, userID uint, date string) (map[models.ActionType]int, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository returns a new ActivityRepository implementation.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) GetCount(ctx context.Context, userID uint, action models.ActionType, date string) (int, error) {
	var activity models.DailyActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND action = ? AND date = ?", userID, action, date).
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, models.NewInternalError(err)
	}
	return activity.Count, nil
}

// GetAll returns the counters for every action category on the given day.
// Actions without a row for that day map to zero.
func (r *activityRepository) GetAll(ctx context.Context, userID uint, date string) (map[models.ActionType]int, error) {
	var rows []models.DailyActivity
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[models.ActionType]int, len(models.ValidActionTypes))
	for _, action := range models.ValidActionTypes {
		counts[action] = 0
	}
	for _, row := range rows {
		counts[row.Action] = row.Count
	}
	return counts, nil
}
