package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inschoolz/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExperienceFixture(t *testing.T) (*ExperienceService, *expRepoStub, *activityStub, *settingsStub, *notifierRecorder) {
	t.Helper()
	activity := &activityStub{counts: map[string]int{}}
	expRepo := &expRepoStub{activity: activity}
	settings := &settingsStub{values: map[string]int{}}
	notifier := &notifierRecorder{}

	svc := NewExperienceService(expRepo, nil, activity, settings, notifier, time.UTC)
	return svc, expRepo, activity, settings, notifier
}

func TestExperienceService_GrantForAction_DailyLimit(t *testing.T) {
	svc, _, _, _, _ := newExperienceFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }

	// Default post limit is 3: three grants succeed.
	for i := 0; i < 3; i++ {
		result, err := svc.GrantForAction(ctx, 1, models.ActionPost)
		require.NoError(t, err, "grant %d", i+1)
		assert.Equal(t, 10, result.XPEarned)
	}

	// The fourth is rejected without XP.
	result, err := svc.GrantForAction(ctx, 1, models.ActionPost)
	assert.Nil(t, result)
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DAILY_LIMIT_EXCEEDED", appErr.Code)

	// The next calendar day starts a fresh counter.
	svc.now = func() time.Time { return day.AddDate(0, 0, 1) }
	result, err = svc.GrantForAction(ctx, 1, models.ActionPost)
	require.NoError(t, err)
	assert.Equal(t, 10, result.XPEarned)
}

func TestExperienceService_GrantForAction_TimezoneBoundary(t *testing.T) {
	svc, _, _, _, _ := newExperienceFixture(t)
	ctx := context.Background()

	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	svc.loc = seoul

	// 10:00 UTC is 19:00 KST; 16:00 UTC is already 01:00 KST the next day.
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC) }
	for i := 0; i < 3; i++ {
		_, err := svc.GrantForAction(ctx, 1, models.ActionPost)
		require.NoError(t, err)
	}
	_, err = svc.GrantForAction(ctx, 1, models.ActionPost)
	assert.Error(t, err)

	// Past KST midnight the counter is fresh.
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 16, 0, 0, 0, time.UTC) }
	_, err = svc.GrantForAction(ctx, 1, models.ActionPost)
	assert.NoError(t, err)
}

func TestExperienceService_GrantForAction_LevelUpNotifies(t *testing.T) {
	svc, expRepo, _, settings, notifier := newExperienceFixture(t)
	ctx := context.Background()

	expRepo.total = 9
	settings.values[models.SettingPostXP] = 1

	result, err := svc.GrantForAction(ctx, 7, models.ActionPost)
	require.NoError(t, err)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 1, result.OldLevel)
	assert.Equal(t, 2, result.NewLevel)

	levelUps := notifier.byType(models.NotificationTypeLevelUp)
	require.Len(t, levelUps, 1)
	assert.Equal(t, uint(7), levelUps[0].UserID)
}

func TestExperienceService_CheckDailyLimit_FailsClosed(t *testing.T) {
	svc, _, activity, settings, _ := newExperienceFixture(t)
	ctx := context.Background()

	t.Run("SettingsUnavailable", func(t *testing.T) {
		settings.getErr = errors.New("redis and db both down")
		defer func() { settings.getErr = nil }()

		status, err := svc.CheckDailyLimit(ctx, 1, models.ActionPost)
		assert.Error(t, err)
		assert.Nil(t, status)
	})

	t.Run("CountersUnavailable", func(t *testing.T) {
		activity.getErr = errors.New("db down")
		defer func() { activity.getErr = nil }()

		status, err := svc.CheckDailyLimit(ctx, 1, models.ActionPost)
		assert.Error(t, err)
		assert.Nil(t, status)
	})

	t.Run("UnknownAction", func(t *testing.T) {
		_, err := svc.CheckDailyLimit(ctx, 1, models.ActionType("dance"))
		assert.Error(t, err)
	})
}

func TestExperienceService_CheckDailyLimit_Status(t *testing.T) {
	svc, _, activity, _, _ := newExperienceFixture(t)
	ctx := context.Background()

	day := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	activity.counts[activityKey(1, models.ActionComment, "2026-09-01")] = 4

	status, err := svc.CheckDailyLimit(ctx, 1, models.ActionComment)
	require.NoError(t, err)
	assert.True(t, status.CanEarnExp)
	assert.Equal(t, 4, status.CurrentCount)
	assert.Equal(t, 5, status.Limit)

	activity.counts[activityKey(1, models.ActionComment, "2026-09-01")] = 5
	status, err = svc.CheckDailyLimit(ctx, 1, models.ActionComment)
	require.NoError(t, err)
	assert.False(t, status.CanEarnExp)
}
