package repository

import (
	"context"
	"errors"

	"inschoolz/internal/cache"
	"inschoolz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActionGrantResult reports one attempt to earn XP through an action.
type ActionGrantResult struct {
	Allowed bool
	Count   int
	Limit   int
	Change  GrantChange
}

// ExperienceRepository performs the composed grant-for-action write: daily
// limit check, counter increment and XP grant in one transaction, so a denied
// action never consumes a counter slot and a granted one always does.
type ExperienceRepository interface {
	GrantForAction(ctx context.Context, userID uint, action models.ActionType, amount, limit int, date string) (*ActionGrantResult, error)
}

type experienceRepository struct {
	db *gorm.DB
}

// NewExperienceRepository returns a new ExperienceRepository implementation.
func NewExperienceRepository(db *gorm.DB) ExperienceRepository {
	return &experienceRepository{db: db}
}

func (r *experienceRepository) GrantForAction(ctx context.Context, userID uint, action models.ActionType, amount, limit int, date string) (*ActionGrantResult, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("experience amount must be positive")
	}

	result := ActionGrantResult{Limit: limit}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity models.DailyActivity
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND action = ? AND date = ?", userID, action, date).
			First(&activity).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			activity = models.DailyActivity{UserID: userID, Action: action, Date: date}
		case err != nil:
			return models.NewInternalError(err)
		}

		if activity.Count >= limit {
			result.Allowed = false
			result.Count = activity.Count
			return nil
		}

		activity.Count++
		if activity.ID == 0 {
			if err := tx.Create(&activity).Error; err != nil {
				return models.NewInternalError(err)
			}
		} else if err := tx.Save(&activity).Error; err != nil {
			return models.NewInternalError(err)
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", userID)
			}
			return models.NewInternalError(err)
		}

		result.Change = applyGrant(&user, amount)
		if err := tx.Save(&user).Error; err != nil {
			return models.NewInternalError(err)
		}

		result.Allowed = true
		result.Count = activity.Count
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Allowed {
		cache.InvalidateUser(ctx, userID)
	}
	return &result, nil
}
