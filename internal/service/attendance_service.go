package service

import (
	"context"
	"fmt"
	"time"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"
)

// AttendanceService handles the daily check-in flow.
type AttendanceService struct {
	expSvc   *ExperienceService
	userRepo repository.UserRepository
	loc      *time.Location
	now      func() time.Time
}

// NewAttendanceService returns a new AttendanceService.
func NewAttendanceService(expSvc *ExperienceService, userRepo repository.UserRepository, loc *time.Location) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{
		expSvc:   expSvc,
		userRepo: userRepo,
		loc:      loc,
		now:      time.Now,
	}
}

// CheckInResult is the outcome of one attendance check-in.
type CheckInResult struct {
	Streak   int          `json:"streak"`
	XPEarned int          `json:"xp_earned"`
	Grant    *GrantResult `json:"grant"`
}

// CheckIn records today's attendance. The attendance daily limit (1) blocks a
// second check-in; the streak grows only across consecutive calendar days in
// the configured timezone.
func (s *AttendanceService) CheckIn(ctx context.Context, userID uint) (*CheckInResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	today := models.DayKey(now, s.loc)

	streak := 1
	if user.LastAttendanceAt != nil {
		last := models.DayKey(*user.LastAttendanceAt, s.loc)
		if last == today {
			return nil, models.NewLimitExceededError("이미 오늘 출석체크를 완료했습니다.")
		}
		yesterday := models.DayKey(now.AddDate(0, 0, -1), s.loc)
		if last == yesterday {
			streak = user.Stats.Streak + 1
		}
	}

	// The grant enforces the attendance daily limit; XP is the configured
	// base, the streak bonus is granted separately below.
	grant, err := s.expSvc.GrantForAction(ctx, userID, models.ActionAttendance)
	if err != nil {
		return nil, err
	}

	xpEarned := grant.XPEarned
	if streak > 1 {
		bonusPer, err := s.expSvc.settingsRepo.Get(ctx, models.SettingStreakBonus)
		if err == nil && bonusPer > 0 {
			bonus := bonusPer * (streak - 1)
			if bonusGrant, err := s.expSvc.GrantExperience(ctx, userID, bonus); err == nil {
				xpEarned += bonus
				grant = mergeGrants(grant, bonusGrant)
			}
		}
	}

	// Persist the streak bookkeeping after the grant so a limit rejection
	// leaves it untouched. Column-scoped: the stats columns belong to the
	// grant path and a concurrent grant must not be overwritten here.
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{
		"last_attendance_at": now,
		"streak":             streak,
	}); err != nil {
		return nil, err
	}

	return &CheckInResult{
		Streak:   streak,
		XPEarned: xpEarned,
		Grant:    grant,
	}, nil
}

// Status reports whether the user can check in today and the current streak.
func (s *AttendanceService) Status(ctx context.Context, userID uint) (map[string]any, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit, err := s.expSvc.CheckDailyLimit(ctx, userID, models.ActionAttendance)
	if err != nil {
		return nil, err
	}

	streak := 0
	if user.LastAttendanceAt != nil {
		today := models.DayKey(s.now(), s.loc)
		yesterday := models.DayKey(s.now().AddDate(0, 0, -1), s.loc)
		last := models.DayKey(*user.LastAttendanceAt, s.loc)
		if last == today || last == yesterday {
			streak = user.Stats.Streak
		}
	}

	return map[string]any{
		"can_check_in": limit.CanEarnExp,
		"streak":       streak,
		"checked_in":   fmt.Sprintf("%d/%d", limit.CurrentCount, limit.Limit),
	}, nil
}

func mergeGrants(a, b *GrantResult) *GrantResult {
	return &GrantResult{
		XPEarned:  a.XPEarned + b.XPEarned,
		OldLevel:  a.OldLevel,
		NewLevel:  b.NewLevel,
		LeveledUp: b.NewLevel > a.OldLevel,
		Total:     b.Total,
	}
}
