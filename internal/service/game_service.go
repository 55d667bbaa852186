package service

import (
	"context"
	"errors"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"
)

// GameService owns mini-game score submission and rankings.
type GameService struct {
	gameRepo repository.GameRepository
	expSvc   *ExperienceService
}

// NewGameService returns a new GameService.
func NewGameService(gameRepo repository.GameRepository, expSvc *ExperienceService) *GameService {
	return &GameService{gameRepo: gameRepo, expSvc: expSvc}
}

// SubmitScoreResult is the outcome of one score submission.
type SubmitScoreResult struct {
	Score    *models.GameScore `json:"score"`
	NewBest  bool              `json:"new_best"`
	Grant    *GrantResult      `json:"grant,omitempty"`
	XPEarned int               `json:"xp_earned"`
}

// SubmitScore records a play. XP is awarded only when the score reaches the
// configured threshold, and the grant goes through the daily-limit system;
// sub-threshold or past-the-limit plays still count for rankings but earn
// nothing.
func (s *GameService) SubmitScore(ctx context.Context, userID uint, game models.GameType, score int) (*SubmitScoreResult, error) {
	if !validGame(game) {
		return nil, models.NewValidationError("unknown game type")
	}
	if score < 0 {
		return nil, models.NewValidationError("score must be non-negative")
	}

	record := &models.GameScore{UserID: userID, Game: game, Score: score}
	result := &SubmitScoreResult{Score: record}

	threshold, err := s.expSvc.settingsRepo.Get(ctx, models.SettingGameScoreThreshold)
	if err != nil {
		return nil, err
	}
	if score >= threshold {
		grant, err := s.expSvc.GrantForAction(ctx, userID, models.ActionGame)
		if err != nil {
			var appErr *models.AppError
			if !errors.As(err, &appErr) || appErr.Code != "DAILY_LIMIT_EXCEEDED" {
				return nil, err
			}
		} else {
			result.Grant = grant
			result.XPEarned = grant.XPEarned
			record.XPEarned = grant.XPEarned
		}
	}

	newBest, err := s.gameRepo.SaveScore(ctx, record)
	if err != nil {
		return nil, err
	}
	result.NewBest = newBest
	return result, nil
}

// Leaderboard returns the top best-scores for a game.
func (s *GameService) Leaderboard(ctx context.Context, game models.GameType, limit int) ([]repository.LeaderboardEntry, error) {
	if !validGame(game) {
		return nil, models.NewValidationError("unknown game type")
	}
	return s.gameRepo.Leaderboard(ctx, game, limit)
}

// MyStats returns the caller's best score and recent plays for a game.
func (s *GameService) MyStats(ctx context.Context, userID uint, game models.GameType) (map[string]any, error) {
	if !validGame(game) {
		return nil, models.NewValidationError("unknown game type")
	}
	best, err := s.gameRepo.GetBest(ctx, userID, game)
	if err != nil {
		return nil, err
	}
	recent, err := s.gameRepo.RecentScores(ctx, userID, game, 10)
	if err != nil {
		return nil, err
	}
	limit, err := s.expSvc.CheckDailyLimit(ctx, userID, models.ActionGame)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"recent":      recent,
		"daily_limit": limit,
	}
	if best != nil {
		out["best"] = best.Score
	}
	return out, nil
}

func validGame(game models.GameType) bool {
	for _, g := range models.ValidGameTypes {
		if g == game {
			return true
		}
	}
	return false
}
