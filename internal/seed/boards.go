package seed

import (
	"errors"
	"log"

	"inschoolz/internal/models"

	"gorm.io/gorm"
)

// builtinBoards are the boards every deployment starts with. Idempotent:
// existing boards with the same code are left untouched.
var builtinBoards = []models.Board{
	{Code: "free", Name: "자유게시판", Description: "자유롭게 이야기하는 공간", Scope: models.BoardScopeNational, SortOrder: 1},
	{Code: "popular", Name: "인기게시판", Description: "전국에서 인기 있는 글", Scope: models.BoardScopeNational, SortOrder: 2},
	{Code: "study", Name: "공부게시판", Description: "공부, 입시, 진로 이야기", Scope: models.BoardScopeNational, SortOrder: 3},
	{Code: "regional", Name: "지역게시판", Description: "우리 동네 이야기", Scope: models.BoardScopeRegional, SortOrder: 4},
	{Code: "school", Name: "학교게시판", Description: "우리 학교 이야기", Scope: models.BoardScopeSchool, SortOrder: 5},
}

// Boards ensures the built-in boards exist.
func Boards(db *gorm.DB) error {
	for _, b := range builtinBoards {
		var existing models.Board
		err := db.Where("code = ?", b.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		b.IsActive = true
		if err := db.Create(&b).Error; err != nil {
			return err
		}
		log.Printf("seeded built-in board %q", b.Code)
	}
	return nil
}
