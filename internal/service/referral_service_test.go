package service

import (
	"context"
	"testing"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReferralFixture(users map[uint]*models.User, byName map[string]*models.User) (*ReferralService, *referralRepoStub, *notifierRecorder) {
	userRepo := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			if u, ok := users[id]; ok {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return byName[username], nil
		},
	}
	referralRepo := &referralRepoStub{}
	notifier := &notifierRecorder{}
	svc := NewReferralService(userRepo, referralRepo, &settingsStub{}, notifier)
	return svc, referralRepo, notifier
}

func TestReferralService_RedeemReferral_Rejections(t *testing.T) {
	referrer := &models.User{ID: 1, Username: "senior_kim", Stats: models.UserStats{Level: 2}}
	referee := &models.User{ID: 2, Username: "new_lee"}
	users := map[uint]*models.User{1: referrer, 2: referee}
	byName := map[string]*models.User{"senior_kim": referrer, "new_lee": referee}

	ctx := context.Background()

	tests := []struct {
		name      string
		refereeID uint
		code      string
		setup     func()
		wantMsg   string
	}{
		{
			name:      "EmptyCode",
			refereeID: 2,
			code:      "  ",
			wantMsg:   "추천인 코드를 입력해주세요.",
		},
		{
			name:      "UnknownCode",
			refereeID: 2,
			code:      "nobody",
			wantMsg:   "존재하지 않는 사용자입니다.",
		},
		{
			name:      "CaseSensitiveLookupMisses",
			refereeID: 2,
			code:      "SENIOR_KIM",
			wantMsg:   "존재하지 않는 사용자입니다.",
		},
		{
			name:      "SelfReferral",
			refereeID: 2,
			code:      "new_lee",
			wantMsg:   "자기 자신을 추천인으로 등록할 수 없습니다.",
		},
		{
			name:      "AlreadyRedeemed",
			refereeID: 2,
			code:      "senior_kim",
			setup: func() {
				id := uint(1)
				referee.ReferrerID = &id
			},
			wantMsg: "이미 추천인을 등록했습니다.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, referralRepo, notifier := newReferralFixture(users, byName)
			referralRepo.redeemFn = func(context.Context, uint, uint, string, int, int) (*repository.RedeemOutcome, error) {
				t.Fatal("redeem must not be reached on a rejected code")
				return nil, nil
			}
			if tt.setup != nil {
				tt.setup()
			}

			result, err := svc.RedeemReferral(ctx, tt.refereeID, tt.code)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, notifier.sent, "no XP path, no notifications")
		})
	}
}

func TestReferralService_RedeemReferral_Disabled(t *testing.T) {
	svc, _, _ := newReferralFixture(nil, nil)
	svc.settingsRepo = &settingsStub{values: map[string]int{models.SettingReferralEnabled: 0}}

	_, err := svc.RedeemReferral(context.Background(), 2, "senior_kim")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "비활성화")
}

func TestReferralService_RedeemReferral_Success(t *testing.T) {
	referrer := &models.User{ID: 1, Username: "senior_kim"}
	referee := &models.User{ID: 2, Username: "new_lee"}
	users := map[uint]*models.User{1: referrer, 2: referee}
	byName := map[string]*models.User{"senior_kim": referrer, "new_lee": referee}

	svc, referralRepo, notifier := newReferralFixture(users, byName)

	var gotReferrerXP, gotRefereeXP int
	referralRepo.redeemFn = func(_ context.Context, referrerID, refereeID uint, code string, referrerXP, refereeXP int) (*repository.RedeemOutcome, error) {
		assert.Equal(t, uint(1), referrerID)
		assert.Equal(t, uint(2), refereeID)
		assert.Equal(t, "senior_kim", code)
		gotReferrerXP, gotRefereeXP = referrerXP, refereeXP
		return &repository.RedeemOutcome{
			Referral:       &models.Referral{ReferrerID: referrerID, RefereeID: refereeID, CodeUsed: code},
			ReferrerChange: repository.GrantChange{OldLevel: 1, NewLevel: 2, XPEarned: referrerXP, Total: referrerXP},
			RefereeChange:  repository.GrantChange{OldLevel: 1, NewLevel: 2, XPEarned: refereeXP, Total: refereeXP},
		}, nil
	}

	result, err := svc.RedeemReferral(context.Background(), 2, "senior_kim")
	require.NoError(t, err)

	// Defaults grant exactly 30/30, nothing else.
	assert.Equal(t, 30, gotReferrerXP)
	assert.Equal(t, 30, gotRefereeXP)
	assert.Equal(t, uint(1), result.ReferrerID)
	assert.True(t, result.RefereeLeveledUp)

	// Both sides are notified after the commit.
	referralNotes := notifier.byType(models.NotificationTypeReferral)
	require.Len(t, referralNotes, 2)
	assert.Equal(t, uint(1), referralNotes[0].UserID)
	assert.Equal(t, uint(2), referralNotes[1].UserID)
}
