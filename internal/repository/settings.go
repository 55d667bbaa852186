package repository

import (
	"context"
	"errors"

	"inschoolz/internal/cache"
	"inschoolz/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository resolves admin-configurable integer knobs. Unset knobs
// fall back to models.DefaultSettings so a fresh database behaves sensibly.
type SettingsRepository interface {
	Get(ctx context.Context, name string) (int, error)
	Set(ctx context.Context, name string, value int) error
	All(ctx context.Context) (map[string]int, error)
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository returns a new SettingsRepository implementation.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, name string) (int, error) {
	var value int
	err := cache.Aside(ctx, cache.SettingKey(name), &value, cache.SettingTTL, func() error {
		var setting models.Setting
		if err := r.db.WithContext(ctx).Where("name = ?", name).First(&setting).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				def, ok := models.DefaultSettings[name]
				if !ok {
					return models.NewNotFoundError("Setting", name)
				}
				value = def
				return nil
			}
			return models.NewInternalError(err)
		}
		value = setting.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (r *settingsRepository) Set(ctx context.Context, name string, value int) error {
	setting := models.Setting{Name: name, Value: value}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateSetting(ctx, name)
	return nil
}

// All returns every knob with its effective value: defaults overlaid with
// whatever rows exist.
func (r *settingsRepository) All(ctx context.Context) (map[string]int, error) {
	var rows []models.Setting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	out := make(map[string]int, len(models.DefaultSettings))
	for name, value := range models.DefaultSettings {
		out[name] = value
	}
	for _, row := range rows {
		out[row.Name] = row.Value
	}
	return out, nil
}
