package service

import (
	"context"
	"strings"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"
)

// ModerationService owns report filing and resolution.
type ModerationService struct {
	reportRepo  repository.ReportRepository
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	notifier    Notifier
}

// NewModerationService returns a new ModerationService.
func NewModerationService(
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	notifier Notifier,
) *ModerationService {
	return &ModerationService{
		reportRepo:  reportRepo,
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		notifier:    notifier,
	}
}

// FileReportInput carries one report submission.
type FileReportInput struct {
	ReporterID uint
	TargetType models.ReportTargetType
	TargetID   uint
	Reason     string
	Detail     string
}

// FileReport validates the target exists and stores the report.
func (s *ModerationService) FileReport(ctx context.Context, in FileReportInput) (*models.Report, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" {
		return nil, models.NewValidationError("Reason is required")
	}

	switch in.TargetType {
	case models.ReportTargetPost:
		if _, err := s.postRepo.GetByID(ctx, in.TargetID); err != nil {
			return nil, err
		}
	case models.ReportTargetComment:
		if _, err := s.commentRepo.GetByID(ctx, in.TargetID); err != nil {
			return nil, err
		}
	case models.ReportTargetUser:
		if _, err := s.userRepo.GetByID(ctx, in.TargetID); err != nil {
			return nil, err
		}
	default:
		return nil, models.NewValidationError("unknown report target type")
	}

	report := &models.Report{
		ReporterID: in.ReporterID,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		Reason:     in.Reason,
		Detail:     in.Detail,
		Status:     models.ReportStatusPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports pages through reports, optionally filtered by status.
func (s *ModerationService) ListReports(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error) {
	return s.reportRepo.List(ctx, status, limit, offset)
}

// ResolveReportInput carries an admin's decision on a report.
type ResolveReportInput struct {
	ReportID   uint
	ResolverID uint
	Accept     bool
	Resolution string
	// SuspendTarget also suspends the reported user on an accepted
	// user-targeted report.
	SuspendTarget bool
}

// ResolveReport closes a pending report. Accepting a report about content
// removes the content; accepting one about a user can suspend the account.
func (s *ModerationService) ResolveReport(ctx context.Context, in ResolveReportInput) (*models.Report, error) {
	status := models.ReportStatusRejected
	if in.Accept {
		status = models.ReportStatusResolved
	}

	report, err := s.reportRepo.Resolve(ctx, in.ReportID, in.ResolverID, status, in.Resolution)
	if err != nil {
		return nil, err
	}

	if in.Accept {
		switch report.TargetType {
		case models.ReportTargetPost:
			if err := s.postRepo.Delete(ctx, report.TargetID); err != nil {
				return nil, err
			}
		case models.ReportTargetComment:
			if err := s.commentRepo.Delete(ctx, report.TargetID); err != nil {
				return nil, err
			}
		case models.ReportTargetUser:
			if in.SuspendTarget {
				if err := s.userRepo.UpdateFields(ctx, report.TargetID, map[string]any{
					"status": models.UserStatusSuspended,
				}); err != nil {
					return nil, err
				}
			}
			if s.notifier != nil {
				s.notifier.Send(ctx, &models.Notification{
					UserID:  report.TargetID,
					Type:    models.NotificationTypeReport,
					Title:   "커뮤니티 가이드라인 위반 안내",
					Message: "신고가 접수되어 운영진이 조치했습니다. 커뮤니티 가이드라인을 확인해주세요.",
				})
			}
		}
	}

	return report, nil
}
