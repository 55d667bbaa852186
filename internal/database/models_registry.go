package database

import "inschoolz/internal/models"

// PersistentModels returns every model registered for migration.
// New models must be added here or AutoMigrate will miss them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.School{},
		&models.Board{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.DailyActivity{},
		&models.Referral{},
		&models.Setting{},
		&models.Notification{},
		&models.Report{},
		&models.GameScore{},
		&models.GameBest{},
		&models.BulkOperation{},
	}
}
