package service

import (
	"context"
	"errors"
	"strings"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"
)

// PostService owns board-post business logic.
type PostService struct {
	postRepo  repository.PostRepository
	boardRepo repository.BoardRepository
	userRepo  repository.UserRepository
	likeRepo  repository.LikeRepository
	expSvc    *ExperienceService
	isAdmin   func(ctx context.Context, userID uint) (bool, error)
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	boardRepo repository.BoardRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	expSvc *ExperienceService,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		boardRepo: boardRepo,
		userRepo:  userRepo,
		likeRepo:  likeRepo,
		expSvc:    expSvc,
		isAdmin:   isAdmin,
	}
}

// CreatePostInput carries a post creation request.
type CreatePostInput struct {
	UserID      uint
	BoardCode   string
	Title       string
	Content     string
	IsAnonymous bool
}

// CreatePostOutput bundles the post with the grant it earned, if any.
type CreatePostOutput struct {
	Post  *models.Post `json:"post"`
	Grant *GrantResult `json:"grant,omitempty"`
}

const (
	maxTitleLen   = 200
	maxContentLen = 50000
)

// CreatePost validates and stores a post, then routes the XP grant through
// the daily-limit system. A user over the post limit still gets the post;
// only the XP is withheld.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*CreatePostOutput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	board, err := s.boardRepo.GetByCode(ctx, in.BoardCode)
	if err != nil {
		return nil, err
	}
	if !board.IsActive {
		return nil, models.NewValidationError("Board is not active")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		BoardID:     board.ID,
		UserID:      user.ID,
		Title:       in.Title,
		Content:     in.Content,
		IsAnonymous: in.IsAnonymous,
	}
	// Scoped boards pin the post to the author's community.
	switch board.Scope {
	case models.BoardScopeSchool:
		if user.SchoolID == nil {
			return nil, models.NewValidationError("Join a school before posting to a school board")
		}
		post.SchoolID = user.SchoolID
	case models.BoardScopeRegional:
		if user.Sido == "" {
			return nil, models.NewValidationError("Set your region before posting to a regional board")
		}
		post.Sido = user.Sido
		post.Sigungu = user.Sigungu
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	if err := s.userRepo.IncrementCounter(ctx, user.ID, "post_count"); err != nil {
		return nil, err
	}

	out := &CreatePostOutput{Post: post}
	grant, err := s.expSvc.GrantForAction(ctx, user.ID, models.ActionPost)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "DAILY_LIMIT_EXCEEDED" {
			return out, nil
		}
		return nil, err
	}
	out.Grant = grant
	return out, nil
}

// GetPost returns the post and bumps its view counter.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.IncrementViewCount(ctx, postID); err == nil {
		post.ViewCount++
	}
	anonymize(post)
	return post, nil
}

// ListPosts lists posts on a board, scoped to the viewer's community for
// school and regional boards.
func (s *PostService) ListPosts(ctx context.Context, boardCode string, viewerID uint, limit, offset int) ([]models.Post, int64, error) {
	board, err := s.boardRepo.GetByCode(ctx, boardCode)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.PostFilter{BoardID: board.ID}
	if board.Scope != models.BoardScopeNational && viewerID != 0 {
		viewer, err := s.userRepo.GetByID(ctx, viewerID)
		if err != nil {
			return nil, 0, err
		}
		switch board.Scope {
		case models.BoardScopeSchool:
			filter.SchoolID = viewer.SchoolID
		case models.BoardScopeRegional:
			filter.Sido = viewer.Sido
			filter.Sigungu = viewer.Sigungu
		}
	}

	posts, total, err := s.postRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range posts {
		anonymize(&posts[i])
	}
	return posts, total, nil
}

// UpdatePost edits a post; only the author or an admin may edit.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID uint, title, content string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, post.UserID); err != nil {
		return nil, err
	}

	if title = strings.TrimSpace(title); title != "" {
		if len(title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		post.Title = title
	}
	if content != "" {
		if len(content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post; only the author or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, post.UserID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

// ToggleLike flips the caller's like on a post. Adding a like routes XP to
// the liker through the daily-limit system.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (liked bool, err error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return false, err
	}
	liked, err = s.likeRepo.Toggle(ctx, userID, models.LikeTargetPost, postID)
	if err != nil {
		return false, err
	}
	if liked {
		if err := s.userRepo.IncrementCounter(ctx, userID, "like_count"); err != nil {
			return liked, err
		}
		if _, err := s.expSvc.GrantForAction(ctx, userID, models.ActionLike); err != nil {
			var appErr *models.AppError
			if !errors.As(err, &appErr) || appErr.Code != "DAILY_LIMIT_EXCEEDED" {
				return liked, err
			}
		}
	}
	return liked, nil
}

func (s *PostService) authorize(ctx context.Context, userID, ownerID uint) error {
	if userID == ownerID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewUnauthorizedError("You do not have permission to modify this post")
}

// anonymize hides the author on anonymous posts for API responses.
func anonymize(post *models.Post) {
	if post.IsAnonymous {
		post.User = nil
	}
}
