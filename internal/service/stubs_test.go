package service

import (
	"context"
	"fmt"
	"sync"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	updateFieldsFn     func(context.Context, uint, map[string]any) error
	deleteFn           func(context.Context, uint) error
	listFn             func(context.Context, int, int) ([]models.User, error)
	incrementCounterFn func(context.Context, uint, string) error
	grantExperienceFn  func(context.Context, uint, int) (*repository.GrantChange, error)
	listBotsFn         func(context.Context, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateFields(ctx context.Context, userID uint, fields map[string]any) error {
	return s.updateFieldsFn(ctx, userID, fields)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) IncrementCounter(ctx context.Context, userID uint, column string) error {
	return s.incrementCounterFn(ctx, userID, column)
}
func (s *userRepoStub) GrantExperience(ctx context.Context, userID uint, amount int) (*repository.GrantChange, error) {
	return s.grantExperienceFn(ctx, userID, amount)
}
func (s *userRepoStub) ListBots(ctx context.Context, limit int) ([]models.User, error) {
	return s.listBotsFn(ctx, limit)
}

// settingsStub resolves settings from a fixed map, falling back to defaults.
type settingsStub struct {
	values map[string]int
	getErr error
}

func (s *settingsStub) Get(_ context.Context, name string) (int, error) {
	if s.getErr != nil {
		return 0, s.getErr
	}
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	if v, ok := models.DefaultSettings[name]; ok {
		return v, nil
	}
	return 0, models.NewNotFoundError("Setting", name)
}
func (s *settingsStub) Set(_ context.Context, name string, value int) error {
	if s.values == nil {
		s.values = map[string]int{}
	}
	s.values[name] = value
	return nil
}
func (s *settingsStub) All(context.Context) (map[string]int, error) {
	out := map[string]int{}
	for k, v := range models.DefaultSettings {
		out[k] = v
	}
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

// activityStub keeps daily counters in memory, keyed like the real table.
type activityStub struct {
	mu     sync.Mutex
	counts map[string]int
	getErr error
}

func activityKey(userID uint, action models.ActionType, date string) string {
	return fmt.Sprintf("%d|%s|%s", userID, action, date)
}

func (s *activityStub) GetCount(_ context.Context, userID uint, action models.ActionType, date string) (int, error) {
	if s.getErr != nil {
		return 0, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[activityKey(userID, action, date)], nil
}
func (s *activityStub) Increment(_ context.Context, userID uint, action models.ActionType, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int{}
	}
	key := activityKey(userID, action, date)
	s.counts[key]++
	return s.counts[key], nil
}
func (s *activityStub) GetAll(_ context.Context, userID uint, date string) (map[models.ActionType]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[models.ActionType]int{}
	for _, action := range models.ValidActionTypes {
		out[action] = s.counts[activityKey(userID, action, date)]
	}
	return out, nil
}

// expRepoStub emulates the composed grant transaction in memory: a counter
// map plus one user's running total.
type expRepoStub struct {
	activity *activityStub
	total    int
	grantErr error
}

func (s *expRepoStub) GrantForAction(ctx context.Context, userID uint, action models.ActionType, amount, limit int, date string) (*repository.ActionGrantResult, error) {
	if s.grantErr != nil {
		return nil, s.grantErr
	}
	count, _ := s.activity.GetCount(ctx, userID, action, date)
	if count >= limit {
		return &repository.ActionGrantResult{Allowed: false, Count: count, Limit: limit}, nil
	}
	count, _ = s.activity.Increment(ctx, userID, action, date)

	before := models.LevelFromTotal(s.total)
	s.total += amount
	after := models.LevelFromTotal(s.total)
	return &repository.ActionGrantResult{
		Allowed: true,
		Count:   count,
		Limit:   limit,
		Change: repository.GrantChange{
			OldLevel: before.Level,
			NewLevel: after.Level,
			XPEarned: amount,
			Total:    s.total,
		},
	}, nil
}

// notifierRecorder captures sent notifications.
type notifierRecorder struct {
	mu   sync.Mutex
	sent []*models.Notification
}

func (n *notifierRecorder) Send(_ context.Context, notif *models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
}

func (n *notifierRecorder) byType(t models.NotificationType) []*models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []*models.Notification
	for _, notif := range n.sent {
		if notif.Type == t {
			out = append(out, notif)
		}
	}
	return out
}

// referralRepoStub is a stub for repository.ReferralRepository.
type referralRepoStub struct {
	redeemFn         func(context.Context, uint, uint, string, int, int) (*repository.RedeemOutcome, error)
	getByRefereeFn   func(context.Context, uint) (*models.Referral, error)
	listByReferrerFn func(context.Context, uint, int) ([]models.Referral, error)
	countFn          func(context.Context, uint) (int64, error)
}

func (s *referralRepoStub) Redeem(ctx context.Context, referrerID, refereeID uint, code string, referrerXP, refereeXP int) (*repository.RedeemOutcome, error) {
	return s.redeemFn(ctx, referrerID, refereeID, code, referrerXP, refereeXP)
}
func (s *referralRepoStub) GetByReferee(ctx context.Context, refereeID uint) (*models.Referral, error) {
	return s.getByRefereeFn(ctx, refereeID)
}
func (s *referralRepoStub) ListByReferrer(ctx context.Context, referrerID uint, limit int) ([]models.Referral, error) {
	return s.listByReferrerFn(ctx, referrerID, limit)
}
func (s *referralRepoStub) CountByReferrer(ctx context.Context, referrerID uint) (int64, error) {
	return s.countFn(ctx, referrerID)
}
