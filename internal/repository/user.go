package repository

import (
	"context"
	"errors"

	"inschoolz/internal/cache"
	"inschoolz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GrantChange describes the leveling outcome of one experience grant.
type GrantChange struct {
	OldLevel int
	NewLevel int
	XPEarned int
	Total    int
}

// LeveledUp reports whether the grant crossed at least one level threshold.
func (g GrantChange) LeveledUp() bool {
	return g.NewLevel > g.OldLevel
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, userID uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	IncrementCounter(ctx context.Context, userID uint, column string) error
	GrantExperience(ctx context.Context, userID uint, amount int) (*GrantChange, error)
	ListBots(ctx context.Context, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByUsername matches the handle exactly; handles double as referral codes
// so a prefix or fuzzy match would resolve the wrong account.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateFields applies a column-scoped partial update. Callers name exactly
// the columns they own; the stats columns are written only through
// GrantExperience, so bookkeeping writes cannot clobber a concurrent grant.
func (r *userRepository) UpdateFields(ctx context.Context, userID uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", userID)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Order("id").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// IncrementCounter bumps one of the denormalized stat columns
// (post_count, comment_count, like_count).
func (r *userRepository) IncrementCounter(ctx context.Context, userID uint, column string) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

// GrantExperience atomically adds amount to the user's cumulative total and
// re-derives the level fields from it. The user row is locked for the
// duration so concurrent grants serialize instead of losing updates.
func (r *userRepository) GrantExperience(ctx context.Context, userID uint, amount int) (*GrantChange, error) {
	if amount <= 0 {
		return nil, models.NewValidationError("experience amount must be positive")
	}

	var change GrantChange
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", userID)
			}
			return models.NewInternalError(err)
		}

		change.OldLevel = user.Stats.Level
		change.XPEarned = amount

		user.Stats.TotalExperience += amount
		progress := models.LevelFromTotal(user.Stats.TotalExperience)
		user.Stats.Level = progress.Level
		user.Stats.CurrentExp = progress.CurrentExp
		user.Stats.CurrentLevelRequiredXp = progress.CurrentLevelRequiredXp

		change.NewLevel = progress.Level
		change.Total = user.Stats.TotalExperience

		if err := tx.Save(&user).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateUser(ctx, userID)
	return &change, nil
}

// ListBots returns seeded bot accounts, oldest first. Bots are recognized by
// the reserved "bot_" handle prefix used by the seeding tooling.
func (r *userRepository) ListBots(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx).Where("username LIKE ?", "bot\\_%").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
