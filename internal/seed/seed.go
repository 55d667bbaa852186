// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"

	"inschoolz/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the development seeder.
type Options struct {
	NumSchools  int
	NumBots     int
	PostsPerBot int
}

var sampleSchools = []models.School{
	{Name: "서울고등학교", Type: models.SchoolTypeHigh, Sido: "서울특별시", Sigungu: "서초구"},
	{Name: "한성중학교", Type: models.SchoolTypeMiddle, Sido: "서울특별시", Sigungu: "종로구"},
	{Name: "부산국제고등학교", Type: models.SchoolTypeHigh, Sido: "부산광역시", Sigungu: "부산진구"},
	{Name: "대전중앙초등학교", Type: models.SchoolTypeElementary, Sido: "대전광역시", Sigungu: "중구"},
	{Name: "광주과학고등학교", Type: models.SchoolTypeHigh, Sido: "광주광역시", Sigungu: "북구"},
	{Name: "인천여자중학교", Type: models.SchoolTypeMiddle, Sido: "인천광역시", Sigungu: "남동구"},
	{Name: "수원외국어고등학교", Type: models.SchoolTypeHigh, Sido: "경기도", Sigungu: "수원시"},
	{Name: "제주제일중학교", Type: models.SchoolTypeMiddle, Sido: "제주특별자치도", Sigungu: "제주시"},
}

// Run populates a development database with boards, sample schools, bot
// accounts, and bot content. Safe to run more than once; schools and boards
// already present are skipped.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumSchools <= 0 {
		opts.NumSchools = len(sampleSchools)
	}
	if opts.NumBots <= 0 {
		opts.NumBots = 20
	}
	if opts.PostsPerBot <= 0 {
		opts.PostsPerBot = 3
	}

	if err := Boards(db); err != nil {
		return fmt.Errorf("seeding boards: %w", err)
	}

	if err := Schools(db, opts.NumSchools); err != nil {
		return fmt.Errorf("seeding schools: %w", err)
	}

	ctx := context.Background()
	runner := NewRunner(db)
	quiet := func(done, total int, _ string) {
		if total > 0 && done == total {
			log.Printf("seed step complete (%d/%d)", done, total)
		}
	}

	if err := runner.CreateBots(ctx, opts.NumBots, quiet); err != nil {
		return fmt.Errorf("seeding bots: %w", err)
	}
	if err := runner.GeneratePosts(ctx, opts.PostsPerBot, quiet); err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	if err := runner.GenerateComments(ctx, 2, quiet); err != nil {
		return fmt.Errorf("seeding comments: %w", err)
	}

	log.Printf("seed complete: %d schools, %d bots", opts.NumSchools, opts.NumBots)
	return nil
}

// Schools ensures up to n sample schools exist. Idempotent by name.
func Schools(db *gorm.DB, n int) error {
	if n > len(sampleSchools) {
		n = len(sampleSchools)
	}
	for _, s := range sampleSchools[:n] {
		var count int64
		if err := db.Model(&models.School{}).Where("name = ?", s.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		school := s
		if err := db.Create(&school).Error; err != nil {
			return err
		}
	}
	return nil
}
