package service

import (
	"context"
	"fmt"
	"strings"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"
)

// ReferralService handles referral-code redemption and referral history.
type ReferralService struct {
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
	settingsRepo repository.SettingsRepository
	notifier     Notifier
}

// NewReferralService returns a new ReferralService.
func NewReferralService(
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
	settingsRepo repository.SettingsRepository,
	notifier Notifier,
) *ReferralService {
	return &ReferralService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		settingsRepo: settingsRepo,
		notifier:     notifier,
	}
}

// RedeemResult is returned to the referee after a successful redemption.
type RedeemResult struct {
	ReferrerID       uint `json:"referrer_id"`
	ReferrerXP       int  `json:"referrer_xp"`
	RefereeXP        int  `json:"referee_xp"`
	RefereeLeveledUp bool `json:"referee_leveled_up"`
	RefereeLevel     int  `json:"referee_level"`
}

// RedeemReferral redeems a referral code (the referrer's handle) for a newly
// registered user. The code lookup is an exact, case-sensitive handle match.
// Called at most once per user: a set referrer_id permanently closes the path.
func (s *ReferralService) RedeemReferral(ctx context.Context, refereeID uint, code string) (*RedeemResult, error) {
	enabled, err := s.settingsRepo.Get(ctx, models.SettingReferralEnabled)
	if err != nil {
		return nil, err
	}
	if enabled == 0 {
		return nil, models.NewValidationError("추천인 기능이 비활성화되어 있습니다.")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, models.NewValidationError("추천인 코드를 입력해주세요.")
	}

	referrer, err := s.userRepo.GetByUsername(ctx, code)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, models.NewValidationError("존재하지 않는 사용자입니다.")
	}

	referee, err := s.userRepo.GetByID(ctx, refereeID)
	if err != nil {
		return nil, err
	}
	if referrer.ID == referee.ID {
		return nil, models.NewValidationError("자기 자신을 추천인으로 등록할 수 없습니다.")
	}
	if referee.ReferrerID != nil {
		return nil, models.NewValidationError("이미 추천인을 등록했습니다.")
	}

	referrerXP, err := s.settingsRepo.Get(ctx, models.SettingReferralReferrerXP)
	if err != nil {
		return nil, err
	}
	refereeXP, err := s.settingsRepo.Get(ctx, models.SettingReferralRefereeXP)
	if err != nil {
		return nil, err
	}

	outcome, err := s.referralRepo.Redeem(ctx, referrer.ID, referee.ID, code, referrerXP, refereeXP)
	if err != nil {
		return nil, err
	}

	// Post-commit notifications; losses here are acceptable.
	if s.notifier != nil {
		s.notifier.Send(ctx, &models.Notification{
			UserID:  referrer.ID,
			Type:    models.NotificationTypeReferral,
			Title:   "추천인 보상 지급",
			Message: fmt.Sprintf("%s님이 회원님을 추천인으로 등록하여 경험치 %dXP를 받았습니다.", referee.Username, referrerXP),
		})
		s.notifier.Send(ctx, &models.Notification{
			UserID:  referee.ID,
			Type:    models.NotificationTypeReferral,
			Title:   "추천인 등록 완료",
			Message: fmt.Sprintf("추천인 등록으로 경험치 %dXP를 받았습니다.", refereeXP),
		})
	}

	return &RedeemResult{
		ReferrerID:       referrer.ID,
		ReferrerXP:       referrerXP,
		RefereeXP:        refereeXP,
		RefereeLeveledUp: outcome.RefereeChange.LeveledUp(),
		RefereeLevel:     outcome.RefereeChange.NewLevel,
	}, nil
}

// MyReferrals lists users the given user has referred.
func (s *ReferralService) MyReferrals(ctx context.Context, userID uint, limit int) ([]models.Referral, int64, error) {
	referrals, err := s.referralRepo.ListByReferrer(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.referralRepo.CountByReferrer(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return referrals, total, nil
}
