package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"
)

// CommentService owns comment business logic.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	likeRepo    repository.LikeRepository
	expSvc      *ExperienceService
	notifier    Notifier
	isAdmin     func(ctx context.Context, userID uint) (bool, error)
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	expSvc *ExperienceService,
	notifier Notifier,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		likeRepo:    likeRepo,
		expSvc:      expSvc,
		notifier:    notifier,
		isAdmin:     isAdmin,
	}
}

// CreateCommentInput carries a comment creation request.
type CreateCommentInput struct {
	UserID      uint
	PostID      uint
	ParentID    *uint
	Content     string
	IsAnonymous bool
}

// CreateCommentOutput bundles the comment with the grant it earned, if any.
type CreateCommentOutput struct {
	Comment *models.Comment `json:"comment"`
	Grant   *GrantResult    `json:"grant,omitempty"`
}

const maxCommentLen = 2000

// CreateComment validates and stores a comment, grants XP through the
// daily-limit system, and notifies the post author best-effort.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*CreateCommentOutput, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Content too long (max 2000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
		if parent.ParentID != nil {
			// One reply level only.
			return nil, models.NewValidationError("Cannot reply to a reply")
		}
	}

	comment := &models.Comment{
		PostID:      post.ID,
		UserID:      in.UserID,
		ParentID:    in.ParentID,
		Content:     in.Content,
		IsAnonymous: in.IsAnonymous,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := s.userRepo.IncrementCounter(ctx, in.UserID, "comment_count"); err != nil {
		return nil, err
	}

	if s.notifier != nil && post.UserID != in.UserID {
		s.notifier.Send(ctx, &models.Notification{
			UserID:     post.UserID,
			Type:       models.NotificationTypeComment,
			Title:      "새 댓글",
			Message:    fmt.Sprintf("게시글 \"%s\"에 새 댓글이 달렸습니다.", post.Title),
			TargetType: "post",
			TargetID:   post.ID,
		})
	}

	out := &CreateCommentOutput{Comment: comment}
	grant, err := s.expSvc.GrantForAction(ctx, in.UserID, models.ActionComment)
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

// ListComments returns a post's comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if comments[i].IsAnonymous {
			comments[i].User = nil
		}
	}
	return comments, nil
}

// DeleteComment removes a comment; only the author or an admin may delete.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		admin := false
		if s.isAdmin != nil {
			admin, err = s.isAdmin(ctx, userID)
			if err != nil {
				return err
			}
		}
		if !admin {
			return models.NewUnauthorizedError("You do not have permission to delete this comment")
		}
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// ToggleLike flips the caller's like on a comment.
func (s *CommentService) ToggleLike(ctx context.Context, userID, commentID uint) (bool, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return false, err
	}
	liked, err := s.likeRepo.Toggle(ctx, userID, models.LikeTargetComment, commentID)
	if err != nil {
		return false, err
	}
	if liked {
		if _, err := s.expSvc.GrantForAction(ctx, userID, models.ActionLike); err != nil {
			var appErr *models.AppError
			if !errors.As(err, &appErr) || appErr.Code != "DAILY_LIMIT_EXCEEDED" {
				return liked, err
			}
		}
	}
	return liked, nil
}
