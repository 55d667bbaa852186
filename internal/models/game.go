package models

import "time"

// GameType enumerates the built-in mini games.
type GameType string

const (
	GameTypeReaction GameType = "reaction"
	GameTypeTile     GameType = "tile"
	GameTypeFlappy   GameType = "flappy"
)

// ValidGameTypes lists every playable mini game.
var ValidGameTypes = []GameType{GameTypeReaction, GameTypeTile, GameTypeFlappy}

// GameScore records one scored play of a mini game.
type GameScore struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	UserID   uint     `gorm:"not null;index:idx_game_user" json:"user_id"`
	Game     GameType `gorm:"type:varchar(20);not null;index:idx_game_user" json:"game"`
	Score    int      `gorm:"not null" json:"score"`
	XPEarned int      `gorm:"not null;default:0" json:"xp_earned"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (GameScore) TableName() string {
	return "game_scores"
}

// GameBest is a user's best score per game, maintained on submission.
type GameBest struct {
	ID     uint     `gorm:"primaryKey" json:"id"`
	UserID uint     `gorm:"not null;uniqueIndex:idx_game_best" json:"user_id"`
	Game   GameType `gorm:"type:varchar(20);not null;uniqueIndex:idx_game_best" json:"game"`
	Score  int      `gorm:"not null" json:"score"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (GameBest) TableName() string {
	return "game_bests"
}
