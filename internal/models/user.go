// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole defines the authorization level of a user account.
type UserRole string

const (
	// UserRoleStudent is the default role for registered users.
	UserRoleStudent UserRole = "student"
	// UserRoleTeacher marks verified teacher accounts.
	UserRoleTeacher UserRole = "teacher"
	// UserRoleAdmin grants access to moderation and bulk tooling.
	UserRoleAdmin UserRole = "admin"
)

// UserStatus defines the moderation state of a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

// UserStats is the gamified progression state embedded in a user record.
// It is mutated exclusively through the experience service; the derived
// fields (Level, CurrentExp, CurrentLevelRequiredXp) always follow
// LevelFromTotal(TotalExperience).
type UserStats struct {
	Level                  int `gorm:"not null;default:1" json:"level"`
	TotalExperience        int `gorm:"not null;default:0" json:"total_experience"`
	CurrentExp             int `gorm:"not null;default:0" json:"current_exp"`
	CurrentLevelRequiredXp int `gorm:"not null;default:10" json:"current_level_required_xp"`
	PostCount              int `gorm:"not null;default:0" json:"post_count"`
	CommentCount           int `gorm:"not null;default:0" json:"comment_count"`
	LikeCount              int `gorm:"not null;default:0" json:"like_count"`
	Streak                 int `gorm:"not null;default:0" json:"streak"`
}

// User represents a registered member of the community.
// Username doubles as the public handle used as a referral code.
type User struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Username string     `gorm:"size:30;unique;not null" json:"username"`
	Email    string     `gorm:"unique;not null" json:"email"`
	Password string     `gorm:"not null" json:"-"`
	RealName string     `gorm:"size:60" json:"real_name,omitempty"`
	Role     UserRole   `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	Status   UserStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	IsAdmin  bool       `gorm:"not null;default:false" json:"is_admin"`

	SchoolID *uint   `gorm:"index" json:"school_id,omitempty"`
	School   *School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Sido     string  `gorm:"size:40" json:"sido,omitempty"`
	Sigungu  string  `gorm:"size:40" json:"sigungu,omitempty"`

	// ReferrerID links to the user whose handle was redeemed at registration.
	// Set at most once; never the user's own ID.
	ReferrerID *uint `gorm:"index" json:"referrer_id,omitempty"`

	Stats UserStats `gorm:"embedded" json:"stats"`

	LastAttendanceAt *time.Time `json:"last_attendance_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// IsModerator reports whether the user can act on reports and admin CRUD.
func (u *User) IsModerator() bool {
	return u.IsAdmin || u.Role == UserRoleAdmin
}
