package repository

import (
	"context"
	"errors"
	"strings"

	"inschoolz/internal/cache"
	"inschoolz/internal/models"

	"gorm.io/gorm"
)

// SchoolRepository defines persistence operations for schools.
type SchoolRepository interface {
	GetByID(ctx context.Context, id uint) (*models.School, error)
	Search(ctx context.Context, prefix string, limit int) ([]models.School, error)
	ListByRegion(ctx context.Context, sido, sigungu string, limit, offset int) ([]models.School, error)
	Create(ctx context.Context, school *models.School) error
	Update(ctx context.Context, school *models.School) error
	Delete(ctx context.Context, id uint) error
	AdjustMemberCount(ctx context.Context, id uint, delta int) error
}

type schoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository returns a new SchoolRepository implementation.
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) GetByID(ctx context.Context, id uint) (*models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).First(&school, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("School", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &school, nil
}

// Search matches school names by prefix. Results are cached per prefix since
// school data changes rarely but is queried on every signup screen.
func (r *schoolRepository) Search(ctx context.Context, prefix string, limit int) ([]models.School, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []models.School{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var schools []models.School
	err := cache.Aside(ctx, cache.SchoolSearchKey(prefix), &schools, cache.SchoolSearchTTL, func() error {
		// Escape LIKE metacharacters so "%" in input cannot widen the match.
		escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
		if err := r.db.WithContext(ctx).
			Where("name LIKE ?", escaped+"%").
			Order("name").
			Limit(limit).
			Find(&schools).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *schoolRepository) ListByRegion(ctx context.Context, sido, sigungu string, limit, offset int) ([]models.School, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Where("sido = ?", sido)
	if sigungu != "" {
		q = q.Where("sigungu = ?", sigungu)
	}

	var schools []models.School
	if err := q.Order("name").Limit(limit).Offset(offset).Find(&schools).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return schools, nil
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	if err := r.db.WithContext(ctx).Create(school).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *schoolRepository) Update(ctx context.Context, school *models.School) error {
	if err := r.db.WithContext(ctx).Save(school).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *schoolRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.School{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *schoolRepository) AdjustMemberCount(ctx context.Context, id uint, delta int) error {
	if err := r.db.WithContext(ctx).Model(&models.School{}).
		Where("id = ?", id).
		UpdateColumn("member_count", gorm.Expr("member_count + ?", delta)).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
