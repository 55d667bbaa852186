// Package service implements the business logic layer of the application.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inschoolz/internal/models"
	"inschoolz/internal/observability"
	"inschoolz/internal/repository"
)

// Notifier delivers a notification to a user. Delivery is best-effort:
// implementations log failures instead of returning them, so callers never
// roll back business writes over a notification.
type Notifier interface {
	Send(ctx context.Context, n *models.Notification)
}

// GrantResult describes one applied experience grant.
type GrantResult struct {
	XPEarned  int  `json:"xp_earned"`
	OldLevel  int  `json:"old_level"`
	NewLevel  int  `json:"new_level"`
	LeveledUp bool `json:"leveled_up"`
	Total     int  `json:"total_experience"`
}

// LimitStatus is the read-only answer to "can this user still earn XP from
// this action today".
type LimitStatus struct {
	CanEarnExp   bool `json:"can_earn_exp"`
	CurrentCount int  `json:"current_count"`
	Limit        int  `json:"limit"`
}

// ExperienceService owns XP grants, leveling and daily limits.
type ExperienceService struct {
	expRepo      repository.ExperienceRepository
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	settingsRepo repository.SettingsRepository
	notifier     Notifier
	loc          *time.Location
	now          func() time.Time
}

// NewExperienceService returns a new ExperienceService.
func NewExperienceService(
	expRepo repository.ExperienceRepository,
	userRepo repository.UserRepository,
	activityRepo repository.ActivityRepository,
	settingsRepo repository.SettingsRepository,
	notifier Notifier,
	loc *time.Location,
) *ExperienceService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExperienceService{
		expRepo:      expRepo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		settingsRepo: settingsRepo,
		notifier:     notifier,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *ExperienceService) today() string {
	return models.DayKey(s.now(), s.loc)
}

// CheckDailyLimit reports whether the user can still earn XP from the action
// today. Any read failure denies: limits fail closed.
func (s *ExperienceService) CheckDailyLimit(ctx context.Context, userID uint, action models.ActionType) (*LimitStatus, error) {
	limitName := models.LimitSettingForAction(action)
	if limitName == "" {
		return nil, models.NewValidationError("unknown action type")
	}

	limit, err := s.settingsRepo.Get(ctx, limitName)
	if err != nil {
		return nil, err
	}
	count, err := s.activityRepo.GetCount(ctx, userID, action, s.today())
	if err != nil {
		return nil, err
	}

	return &LimitStatus{
		CanEarnExp:   count < limit,
		CurrentCount: count,
		Limit:        limit,
	}, nil
}

// GrantExperience applies a raw XP amount outside the daily-limit system
// (referrals, admin adjustments). Amounts <= 0 are rejected.
func (s *ExperienceService) GrantExperience(ctx context.Context, userID uint, amount int) (*GrantResult, error) {
	change, err := s.userRepo.GrantExperience(ctx, userID, amount)
	if err != nil {
		observability.ExperienceGrantsTotal.WithLabelValues("manual", "error").Inc()
		return nil, err
	}
	observability.ExperienceGrantsTotal.WithLabelValues("manual", "granted").Inc()

	result := s.toResult(change)
	s.notifyLevelUp(ctx, userID, result)
	return result, nil
}

// GrantForAction awards the configured XP for one performed action, counting
// it against the day's limit. A user at the limit gets a DAILY_LIMIT_EXCEEDED
// error and no XP; the underlying action itself is not the service's concern.
func (s *ExperienceService) GrantForAction(ctx context.Context, userID uint, action models.ActionType) (*GrantResult, error) {
	limitName := models.LimitSettingForAction(action)
	xpName := models.XPSettingForAction(action)
	if limitName == "" || xpName == "" {
		return nil, models.NewValidationError("unknown action type")
	}

	limit, err := s.settingsRepo.Get(ctx, limitName)
	if err != nil {
		observability.ExperienceGrantsTotal.WithLabelValues(string(action), "error").Inc()
		return nil, err
	}
	amount, err := s.settingsRepo.Get(ctx, xpName)
	if err != nil {
		observability.ExperienceGrantsTotal.WithLabelValues(string(action), "error").Inc()
		return nil, err
	}

	outcome, err := s.expRepo.GrantForAction(ctx, userID, action, amount, limit, s.today())
	if err != nil {
		observability.ExperienceGrantsTotal.WithLabelValues(string(action), "error").Inc()
		return nil, err
	}
	if !outcome.Allowed {
		observability.DailyLimitRejections.WithLabelValues(string(action)).Inc()
		observability.ExperienceGrantsTotal.WithLabelValues(string(action), "limited").Inc()
		return nil, models.NewLimitExceededError(
			fmt.Sprintf("daily %s limit reached (%d/%d)", action, outcome.Count, outcome.Limit))
	}

	observability.ExperienceGrantsTotal.WithLabelValues(string(action), "granted").Inc()

	result := s.toResult(&outcome.Change)
	s.notifyLevelUp(ctx, userID, result)
	return result, nil
}

// DailyStatus returns today's counter and limit for every action category.
func (s *ExperienceService) DailyStatus(ctx context.Context, userID uint) (map[models.ActionType]LimitStatus, error) {
	counts, err := s.activityRepo.GetAll(ctx, userID, s.today())
	if err != nil {
		return nil, err
	}

	out := make(map[models.ActionType]LimitStatus, len(counts))
	for action, count := range counts {
		limit, err := s.settingsRepo.Get(ctx, models.LimitSettingForAction(action))
		if err != nil {
			return nil, err
		}
		out[action] = LimitStatus{
			CanEarnExp:   count < limit,
			CurrentCount: count,
			Limit:        limit,
		}
	}
	return out, nil
}

func (s *ExperienceService) toResult(change *repository.GrantChange) *GrantResult {
	return &GrantResult{
		XPEarned:  change.XPEarned,
		OldLevel:  change.OldLevel,
		NewLevel:  change.NewLevel,
		LeveledUp: change.LeveledUp(),
		Total:     change.Total,
	}
}

func (s *ExperienceService) notifyLevelUp(ctx context.Context, userID uint, result *GrantResult) {
	if !result.LeveledUp {
		return
	}
	observability.LevelUpsTotal.Add(float64(result.NewLevel - result.OldLevel))
	slog.InfoContext(ctx, "user leveled up",
		slog.Uint64("user_id", uint64(userID)),
		slog.Int("old_level", result.OldLevel),
		slog.Int("new_level", result.NewLevel),
	)

	if s.notifier == nil {
		return
	}
	s.notifier.Send(ctx, &models.Notification{
		UserID:  userID,
		Type:    models.NotificationTypeLevelUp,
		Title:   fmt.Sprintf("레벨 %d 달성!", result.NewLevel),
		Message: fmt.Sprintf("축하합니다! 레벨 %d이(가) 되었습니다.", result.NewLevel),
	})
}
