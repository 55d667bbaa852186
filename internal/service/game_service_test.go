package service

import (
	"context"
	"testing"
	"time"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gameRepoStub is a stub for repository.GameRepository.
type gameRepoStub struct {
	saved   []*models.GameScore
	newBest bool
}

func (s *gameRepoStub) SaveScore(_ context.Context, score *models.GameScore) (bool, error) {
	s.saved = append(s.saved, score)
	return s.newBest, nil
}
func (s *gameRepoStub) GetBest(context.Context, uint, models.GameType) (*models.GameBest, error) {
	return nil, nil
}
func (s *gameRepoStub) Leaderboard(context.Context, models.GameType, int) ([]repository.LeaderboardEntry, error) {
	return nil, nil
}
func (s *gameRepoStub) RecentScores(context.Context, uint, models.GameType, int) ([]models.GameScore, error) {
	return nil, nil
}

func newGameFixture(t *testing.T, settings *settingsStub) (*GameService, *gameRepoStub, *expRepoStub) {
	t.Helper()
	activity := &activityStub{counts: map[string]int{}}
	expRepo := &expRepoStub{activity: activity}
	expSvc := NewExperienceService(expRepo, nil, activity, settings, nil, time.UTC)

	gameRepo := &gameRepoStub{newBest: true}
	return NewGameService(gameRepo, expSvc), gameRepo, expRepo
}

func TestGameService_SubmitScore(t *testing.T) {
	ctx := context.Background()

	t.Run("ScoreAtThresholdEarnsXP", func(t *testing.T) {
		settings := &settingsStub{values: map[string]int{models.SettingGameScoreThreshold: 100}}
		svc, gameRepo, expRepo := newGameFixture(t, settings)

		result, err := svc.SubmitScore(ctx, 1, models.GameTypeReaction, 100)
		require.NoError(t, err)

		require.NotNil(t, result.Grant)
		assert.Equal(t, models.DefaultSettings[models.SettingGameXP], result.XPEarned)
		assert.Equal(t, models.DefaultSettings[models.SettingGameXP], expRepo.total)
		require.Len(t, gameRepo.saved, 1)
		assert.Equal(t, result.XPEarned, gameRepo.saved[0].XPEarned)
		assert.True(t, result.NewBest)
	})

	t.Run("ScoreBelowThresholdRecordsWithoutXP", func(t *testing.T) {
		settings := &settingsStub{values: map[string]int{models.SettingGameScoreThreshold: 100}}
		svc, gameRepo, expRepo := newGameFixture(t, settings)

		result, err := svc.SubmitScore(ctx, 1, models.GameTypeReaction, 99)
		require.NoError(t, err)

		assert.Nil(t, result.Grant)
		assert.Zero(t, result.XPEarned)
		assert.Zero(t, expRepo.total, "no grant below the threshold")
		require.Len(t, gameRepo.saved, 1, "sub-threshold plays still count for rankings")
		assert.Zero(t, gameRepo.saved[0].XPEarned)
	})

	t.Run("SubThresholdPlayDoesNotConsumeDailyLimit", func(t *testing.T) {
		settings := &settingsStub{values: map[string]int{
			models.SettingGameScoreThreshold: 100,
			models.SettingDailyGameLimit:     1,
		}}
		svc, _, expRepo := newGameFixture(t, settings)

		result, err := svc.SubmitScore(ctx, 1, models.GameTypeTile, 10)
		require.NoError(t, err)
		assert.Nil(t, result.Grant)

		result, err = svc.SubmitScore(ctx, 1, models.GameTypeTile, 150)
		require.NoError(t, err)
		require.NotNil(t, result.Grant, "the sub-threshold play must not use up the daily slot")
		assert.Equal(t, models.DefaultSettings[models.SettingGameXP], expRepo.total)
	})

	t.Run("PlayPastDailyLimitRecordsWithoutXP", func(t *testing.T) {
		settings := &settingsStub{values: map[string]int{
			models.SettingGameScoreThreshold: 100,
			models.SettingDailyGameLimit:     1,
		}}
		svc, gameRepo, expRepo := newGameFixture(t, settings)

		_, err := svc.SubmitScore(ctx, 1, models.GameTypeFlappy, 200)
		require.NoError(t, err)

		result, err := svc.SubmitScore(ctx, 1, models.GameTypeFlappy, 300)
		require.NoError(t, err)
		assert.Nil(t, result.Grant)
		assert.Equal(t, models.DefaultSettings[models.SettingGameXP], expRepo.total)
		assert.Len(t, gameRepo.saved, 2)
	})

	t.Run("RejectsUnknownGameAndNegativeScore", func(t *testing.T) {
		svc, gameRepo, _ := newGameFixture(t, &settingsStub{})

		_, err := svc.SubmitScore(ctx, 1, models.GameType("chess"), 10)
		require.Error(t, err)

		_, err = svc.SubmitScore(ctx, 1, models.GameTypeReaction, -1)
		require.Error(t, err)

		assert.Empty(t, gameRepo.saved)
	})
}
