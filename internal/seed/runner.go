package seed

import (
	"context"
	"fmt"

	"inschoolz/internal/models"

	"gorm.io/gorm"
)

// ProgressFunc reports bulk-job progress to the caller after each unit of work.
type ProgressFunc func(done, total int, message string)

// Runner executes the admin bulk operations against the database. The bulk
// worker binary is its only production caller.
type Runner struct {
	db      *gorm.DB
	factory *Factory
}

// NewRunner creates a Runner bound to the given DB.
func NewRunner(db *gorm.DB) *Runner {
	return &Runner{db: db, factory: NewFactory(db)}
}

const botBatchSize = 100

// CreateBots creates count bot accounts spread across existing schools.
func (r *Runner) CreateBots(ctx context.Context, count int, progress ProgressFunc) error {
	var schools []models.School
	if err := r.db.WithContext(ctx).Limit(500).Find(&schools).Error; err != nil {
		return fmt.Errorf("loading schools: %w", err)
	}

	created := 0
	for created < count {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := botBatchSize
		if remaining := count - created; remaining < n {
			n = remaining
		}

		batch := make([]*models.User, 0, n)
		for i := 0; i < n; i++ {
			var school *models.School
			if len(schools) > 0 {
				school = &schools[r.factory.rng.Intn(len(schools))]
			}
			batch = append(batch, r.factory.BuildBotUser(school))
		}
		if err := r.factory.CreateBotUsersBatch(batch); err != nil {
			return fmt.Errorf("creating bots: %w", err)
		}

		// Keep school member counts honest.
		perSchool := make(map[uint]int)
		for _, u := range batch {
			if u.SchoolID != nil {
				perSchool[*u.SchoolID]++
			}
		}
		for schoolID, delta := range perSchool {
			if err := r.db.WithContext(ctx).Model(&models.School{}).
				Where("id = ?", schoolID).
				UpdateColumn("member_count", gorm.Expr("member_count + ?", delta)).Error; err != nil {
				return fmt.Errorf("updating member counts: %w", err)
			}
		}

		created += n
		progress(created, count, fmt.Sprintf("봇 계정 %d/%d 생성", created, count))
	}
	return nil
}

// GeneratePosts writes postsPerBot posts for every bot account on active boards.
func (r *Runner) GeneratePosts(ctx context.Context, postsPerBot int, progress ProgressFunc) error {
	bots, err := r.loadBots(ctx)
	if err != nil {
		return err
	}
	if len(bots) == 0 {
		progress(0, 0, "생성할 봇 계정이 없습니다")
		return nil
	}

	var boards []models.Board
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&boards).Error; err != nil {
		return fmt.Errorf("loading boards: %w", err)
	}
	if len(boards) == 0 {
		return fmt.Errorf("no active boards to post on")
	}

	total := len(bots) * postsPerBot
	done := 0
	for i := range bots {
		if err := ctx.Err(); err != nil {
			return err
		}

		posts := make([]*models.Post, 0, postsPerBot)
		for j := 0; j < postsPerBot; j++ {
			board := &boards[r.factory.rng.Intn(len(boards))]
			posts = append(posts, r.factory.BuildPost(&bots[i], board))
		}
		if err := r.factory.CreatePostsBatch(posts); err != nil {
			return fmt.Errorf("creating posts: %w", err)
		}

		done += len(posts)
		progress(done, total, fmt.Sprintf("게시글 %d/%d 생성", done, total))
	}
	return nil
}

// GenerateComments writes commentsPerPost comments on every bot post.
func (r *Runner) GenerateComments(ctx context.Context, commentsPerPost int, progress ProgressFunc) error {
	bots, err := r.loadBots(ctx)
	if err != nil {
		return err
	}
	if len(bots) == 0 {
		progress(0, 0, "생성할 봇 계정이 없습니다")
		return nil
	}

	var posts []models.Post
	if err := r.db.WithContext(ctx).Where("is_bot = ?", true).Find(&posts).Error; err != nil {
		return fmt.Errorf("loading bot posts: %w", err)
	}

	total := len(posts) * commentsPerPost
	done := 0
	for i := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}

		comments := make([]*models.Comment, 0, commentsPerPost)
		for j := 0; j < commentsPerPost; j++ {
			author := &bots[r.factory.rng.Intn(len(bots))]
			comments = append(comments, r.factory.BuildComment(author, &posts[i]))
		}
		if err := r.factory.CreateCommentsBatch(comments); err != nil {
			return fmt.Errorf("creating comments: %w", err)
		}

		done += len(comments)
		progress(done, total, fmt.Sprintf("댓글 %d/%d 생성", done, total))
	}
	return nil
}

// DeleteBotPosts soft-deletes every bot-authored post and its comments.
func (r *Runner) DeleteBotPosts(ctx context.Context, progress ProgressFunc) error {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("is_bot = ?", true).Count(&total).Error; err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).
		Where("post_id IN (?)", r.db.Model(&models.Post{}).Select("id").Where("is_bot = ?", true)).
		Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("deleting comments: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Where("is_bot = ?", true).Delete(&models.Post{}).Error; err != nil {
		return fmt.Errorf("deleting posts: %w", err)
	}

	progress(int(total), int(total), fmt.Sprintf("봇 게시글 %d건 삭제", total))
	return nil
}

// DeleteBots soft-deletes every bot account and releases their school seats.
func (r *Runner) DeleteBots(ctx context.Context, progress ProgressFunc) error {
	bots, err := r.loadBots(ctx)
	if err != nil {
		return err
	}

	perSchool := make(map[uint]int)
	for _, b := range bots {
		if b.SchoolID != nil {
			perSchool[*b.SchoolID]++
		}
	}

	if err := r.db.WithContext(ctx).
		Where("username LIKE ?", BotUsernamePrefix+"%").Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("deleting bots: %w", err)
	}

	for schoolID, delta := range perSchool {
		if err := r.db.WithContext(ctx).Model(&models.School{}).
			Where("id = ? AND member_count >= ?", schoolID, delta).
			UpdateColumn("member_count", gorm.Expr("member_count - ?", delta)).Error; err != nil {
			return fmt.Errorf("updating member counts: %w", err)
		}
	}

	progress(len(bots), len(bots), fmt.Sprintf("봇 계정 %d건 삭제", len(bots)))
	return nil
}

// Cleanup removes all bot content, then the bot accounts themselves.
func (r *Runner) Cleanup(ctx context.Context, progress ProgressFunc) error {
	if err := r.DeleteBotPosts(ctx, func(_, _ int, _ string) {
		progress(1, 2, "봇 게시글 정리 중")
	}); err != nil {
		return err
	}
	return r.DeleteBots(ctx, func(_, _ int, msg string) {
		progress(2, 2, msg)
	})
}

func (r *Runner) loadBots(ctx context.Context) ([]models.User, error) {
	var bots []models.User
	if err := r.db.WithContext(ctx).
		Where("username LIKE ?", BotUsernamePrefix+"%").Find(&bots).Error; err != nil {
		return nil, fmt.Errorf("loading bots: %w", err)
	}
	return bots, nil
}
