package repository

import (
	"context"
	"errors"

	"inschoolz/internal/cache"
	"inschoolz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RedeemOutcome is the result of one successful referral redemption.
type RedeemOutcome struct {
	Referral       *models.Referral
	ReferrerChange GrantChange
	RefereeChange  GrantChange
}

// ReferralRepository persists referral redemptions.
type ReferralRepository interface {
	// Redeem performs the whole redemption in one transaction: both XP
	// grants, the referral row and the referee's referrer_id assignment.
	// Either everything lands or nothing does.
	Redeem(ctx context.Context, referrerID, refereeID uint, code string, referrerXP, refereeXP int) (*RedeemOutcome, error)
	GetByReferee(ctx context.Context, refereeID uint) (*models.Referral, error)
	ListByReferrer(ctx context.Context, referrerID uint, limit int) ([]models.Referral, error)
	CountByReferrer(ctx context.Context, referrerID uint) (int64, error)
}

type referralRepository struct {
	db *gorm.DB
}

// NewReferralRepository returns a new ReferralRepository implementation.
func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func applyGrant(user *models.User, amount int) GrantChange {
	change := GrantChange{OldLevel: user.Stats.Level, XPEarned: amount}
	user.Stats.TotalExperience += amount
	progress := models.LevelFromTotal(user.Stats.TotalExperience)
	user.Stats.Level = progress.Level
	user.Stats.CurrentExp = progress.CurrentExp
	user.Stats.CurrentLevelRequiredXp = progress.CurrentLevelRequiredXp
	change.NewLevel = progress.Level
	change.Total = user.Stats.TotalExperience
	return change
}

func (r *referralRepository) Redeem(ctx context.Context, referrerID, refereeID uint, code string, referrerXP, refereeXP int) (*RedeemOutcome, error) {
	var outcome RedeemOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock lower ID first so two symmetric redemptions cannot deadlock.
		ids := []uint{referrerID, refereeID}
		if ids[0] > ids[1] {
			ids[0], ids[1] = ids[1], ids[0]
		}

		locked := make(map[uint]*models.User, 2)
		for _, id := range ids {
			var user models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&user, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewNotFoundError("User", id)
				}
				return models.NewInternalError(err)
			}
			locked[id] = &user
		}

		referrer := locked[referrerID]
		referee := locked[refereeID]

		// Re-check under the lock: a concurrent redemption may have won.
		if referee.ReferrerID != nil {
			return models.NewValidationError("referral code already redeemed")
		}

		outcome.ReferrerChange = applyGrant(referrer, referrerXP)
		outcome.RefereeChange = applyGrant(referee, refereeXP)

		referee.ReferrerID = &referrer.ID

		if err := tx.Save(referrer).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Save(referee).Error; err != nil {
			return models.NewInternalError(err)
		}

		referral := &models.Referral{
			ReferrerID: referrer.ID,
			RefereeID:  referee.ID,
			CodeUsed:   code,
			ReferrerXP: referrerXP,
			RefereeXP:  refereeXP,
		}
		if err := tx.Create(referral).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewValidationError("referral code already redeemed")
			}
			return models.NewInternalError(err)
		}
		outcome.Referral = referral
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateUser(ctx, referrerID)
	cache.InvalidateUser(ctx, refereeID)
	return &outcome, nil
}

func (r *referralRepository) GetByReferee(ctx context.Context, refereeID uint) (*models.Referral, error) {
	var referral models.Referral
	if err := r.db.WithContext(ctx).Where("referee_id = ?", refereeID).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &referral, nil
}

func (r *referralRepository) ListByReferrer(ctx context.Context, referrerID uint, limit int) ([]models.Referral, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var referrals []models.Referral
	if err := r.db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&referrals).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return referrals, nil
}

func (r *referralRepository) CountByReferrer(ctx context.Context, referrerID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("referrer_id = ?", referrerID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
