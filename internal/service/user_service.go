package service

import (
	"context"
	"strings"

	"inschoolz/internal/models"
	"inschoolz/internal/repository"
	"inschoolz/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService owns account and profile business logic.
type UserService struct {
	userRepo   repository.UserRepository
	schoolRepo repository.SchoolRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, schoolRepo repository.SchoolRepository) *UserService {
	return &UserService{userRepo: userRepo, schoolRepo: schoolRepo}
}

// RegisterInput carries a signup request. SchoolID and region are optional.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	RealName string
	SchoolID *uint
	Sido     string
	Sigungu  string
}

// Register creates a new active student account with level 1 stats.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Username already taken")
	}

	if in.SchoolID != nil {
		if _, err := s.schoolRepo.GetByID(ctx, *in.SchoolID); err != nil {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    strings.ToLower(in.Email),
		Password: string(hashed),
		RealName: in.RealName,
		Role:     models.UserRoleStudent,
		Status:   models.UserStatusActive,
		SchoolID: in.SchoolID,
		Sido:     in.Sido,
		Sigungu:  in.Sigungu,
		Stats: models.UserStats{
			Level:                  1,
			CurrentLevelRequiredXp: models.RequiredXpForLevel(1),
		},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if user.SchoolID != nil {
		// Counter drift here is tolerable; membership itself is on the user row.
		_ = s.schoolRepo.AdjustMemberCount(ctx, *user.SchoolID, 1)
	}
	return user, nil
}

// Authenticate verifies credentials and returns the account when valid.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if user.Status != models.UserStatusActive {
		return nil, models.NewUnauthorizedError("Account is " + string(user.Status))
	}
	return user, nil
}

// GetProfile returns a user's public profile.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	RealName *string
	SchoolID *uint
	Sido     *string
	Sigungu  *string
}

// UpdateProfile applies partial profile changes. Moving schools adjusts both
// schools' member counters.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Column-scoped write so a concurrent experience grant survives.
	fields := map[string]any{}
	if in.RealName != nil {
		user.RealName = strings.TrimSpace(*in.RealName)
		fields["real_name"] = user.RealName
	}
	if in.Sido != nil {
		user.Sido = *in.Sido
		fields["sido"] = user.Sido
	}
	if in.Sigungu != nil {
		user.Sigungu = *in.Sigungu
		fields["sigungu"] = user.Sigungu
	}
	if in.SchoolID != nil {
		if _, err := s.schoolRepo.GetByID(ctx, *in.SchoolID); err != nil {
			return nil, err
		}
		if user.SchoolID == nil || *user.SchoolID != *in.SchoolID {
			if user.SchoolID != nil {
				_ = s.schoolRepo.AdjustMemberCount(ctx, *user.SchoolID, -1)
			}
			_ = s.schoolRepo.AdjustMemberCount(ctx, *in.SchoolID, 1)
			user.SchoolID = in.SchoolID
			fields["school_id"] = *in.SchoolID
		}
	}

	if len(fields) == 0 {
		return user, nil
	}
	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	return user, nil
}

// IsAdmin reports whether the user may use moderation and admin surfaces.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsModerator(), nil
}

// SetRole updates a user's role; admin only, enforced by the caller.
func (s *UserService) SetRole(ctx context.Context, userID uint, role models.UserRole) (*models.User, error) {
	switch role {
	case models.UserRoleStudent, models.UserRoleTeacher, models.UserRoleAdmin:
	default:
		return nil, models.NewValidationError("unknown role")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	user.IsAdmin = role == models.UserRoleAdmin
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{
		"role":     role,
		"is_admin": user.IsAdmin,
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// SetStatus suspends, bans or reactivates an account.
func (s *UserService) SetStatus(ctx context.Context, userID uint, status models.UserStatus) (*models.User, error) {
	switch status {
	case models.UserStatusActive, models.UserStatusSuspended, models.UserStatusBanned:
	default:
		return nil, models.NewValidationError("unknown status")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.userRepo.UpdateFields(ctx, userID, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	return user, nil
}
