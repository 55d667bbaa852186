package repository

import (
	"context"
	"errors"

	"inschoolz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaderboardEntry is one row of a per-game ranking.
type LeaderboardEntry struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// GameRepository persists mini-game scores and best-score rankings.
type GameRepository interface {
	// SaveScore records the play and updates the user's best for that game
	// when the new score beats it.
	SaveScore(ctx context.Context, score *models.GameScore) (newBest bool, err error)
	GetBest(ctx context.Context, userID uint, game models.GameType) (*models.GameBest, error)
	Leaderboard(ctx context.Context, game models.GameType, limit int) ([]LeaderboardEntry, error)
	RecentScores(ctx context.Context, userID uint, game models.GameType, limit int) ([]models.GameScore, error)
}

type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository returns a new GameRepository implementation.
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) SaveScore(ctx context.Context, score *models.GameScore) (bool, error) {
	var newBest bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(score).Error; err != nil {
			return models.NewInternalError(err)
		}

		var best models.GameBest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND game = ?", score.UserID, score.Game).
			First(&best).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			best = models.GameBest{UserID: score.UserID, Game: score.Game, Score: score.Score}
			if err := tx.Create(&best).Error; err != nil {
				return models.NewInternalError(err)
			}
			newBest = true
			return nil
		}
		if err != nil {
			return models.NewInternalError(err)
		}

		if score.Score > best.Score {
			best.Score = score.Score
			if err := tx.Save(&best).Error; err != nil {
				return models.NewInternalError(err)
			}
			newBest = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return newBest, nil
}

func (r *gameRepository) GetBest(ctx context.Context, userID uint, game models.GameType) (*models.GameBest, error) {
	var best models.GameBest
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND game = ?", userID, game).
		First(&best).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &best, nil
}

func (r *gameRepository) Leaderboard(ctx context.Context, game models.GameType, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var entries []LeaderboardEntry
	if err := r.db.WithContext(ctx).Model(&models.GameBest{}).
		Select("game_bests.user_id, users.username, game_bests.score").
		Joins("JOIN users ON users.id = game_bests.user_id AND users.deleted_at IS NULL").
		Where("game_bests.game = ?", game).
		Order("game_bests.score DESC").
		Limit(limit).
		Scan(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *gameRepository) RecentScores(ctx context.Context, userID uint, game models.GameType, limit int) ([]models.GameScore, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var scores []models.GameScore
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND game = ?", userID, game).
		Order("created_at DESC").
		Limit(limit).
		Find(&scores).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return scores, nil
}
