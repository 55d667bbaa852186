package repository

import (
	"context"
	"errors"

	"inschoolz/internal/models"

	"gorm.io/gorm"
)

// BoardRepository defines persistence operations for board definitions.
type BoardRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Board, error)
	GetByCode(ctx context.Context, code string) (*models.Board, error)
	ListActive(ctx context.Context) ([]models.Board, error)
	List(ctx context.Context) ([]models.Board, error)
	Create(ctx context.Context, board *models.Board) error
	Update(ctx context.Context, board *models.Board) error
	Delete(ctx context.Context, id uint) error
}

type boardRepository struct {
	db *gorm.DB
}

// NewBoardRepository returns a new BoardRepository implementation.
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

func (r *boardRepository) GetByID(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).First(&board, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Board", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &board, nil
}

func (r *boardRepository) GetByCode(ctx context.Context, code string) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Board", code)
		}
		return nil, models.NewInternalError(err)
	}
	return &board, nil
}

func (r *boardRepository) ListActive(ctx context.Context) ([]models.Board, error) {
	var boards []models.Board
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order, id").
		Find(&boards).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return boards, nil
}

func (r *boardRepository) List(ctx context.Context) ([]models.Board, error) {
	var boards []models.Board
	if err := r.db.WithContext(ctx).Order("sort_order, id").Find(&boards).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return boards, nil
}

func (r *boardRepository) Create(ctx context.Context, board *models.Board) error {
	if err := r.db.WithContext(ctx).Create(board).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Board code already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *boardRepository) Update(ctx context.Context, board *models.Board) error {
	if err := r.db.WithContext(ctx).Save(board).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *boardRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Board{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
