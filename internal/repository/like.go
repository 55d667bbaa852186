package repository

import (
	"context"
	"errors"

	"inschoolz/internal/models"

	"gorm.io/gorm"
)

// LikeRepository handles likes on posts and comments.
type LikeRepository interface {
	// Toggle flips the like state and returns true when the like was added.
	// The target's denormalized like counter moves in the same transaction.
	Toggle(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) (bool, error)
	Exists(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func counterTarget(targetType models.LikeTargetType) (any, bool) {
	switch targetType {
	case models.LikeTargetPost:
		return &models.Post{}, true
	case models.LikeTargetComment:
		return &models.Comment{}, true
	}
	return nil, false
}

func (r *likeRepository) Toggle(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) (bool, error) {
	target, ok := counterTarget(targetType)
	if !ok {
		return false, models.NewValidationError("unknown like target type")
	}

	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var like models.Like
		err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?",
			userID, targetType, targetID).First(&like).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			like = models.Like{UserID: userID, TargetType: targetType, TargetID: targetID}
			if err := tx.Create(&like).Error; err != nil {
				if isUniqueConstraintError(err) {
					// Lost the race to a concurrent like; treat as already liked.
					return nil
				}
				return models.NewInternalError(err)
			}
			if err := tx.Model(target).
				Where("id = ?", targetID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
				return models.NewInternalError(err)
			}
			added = true
		case err != nil:
			return models.NewInternalError(err)
		default:
			if err := tx.Delete(&like).Error; err != nil {
				return models.NewInternalError(err)
			}
			if err := tx.Model(target).
				Where("id = ? AND like_count > 0", targetID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
