package models

import (
	"time"

	"gorm.io/gorm"
)

// BoardScope defines which community a board belongs to.
type BoardScope string

const (
	// BoardScopeNational boards are visible to every user.
	BoardScopeNational BoardScope = "national"
	// BoardScopeRegional boards are scoped by the user's sido/sigungu.
	BoardScopeRegional BoardScope = "regional"
	// BoardScopeSchool boards are scoped to one school.
	BoardScopeSchool BoardScope = "school"
)

// Board is a discussion board definition managed by admins.
type Board struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Code        string     `gorm:"size:40;not null;uniqueIndex" json:"code"`
	Name        string     `gorm:"size:80;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Scope       BoardScope `gorm:"type:varchar(20);not null;default:'national'" json:"scope"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	SortOrder   int        `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Board) TableName() string {
	return "boards"
}

// Post represents a post on a board.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	BoardID uint   `gorm:"not null;index" json:"board_id"`
	Board   *Board `gorm:"foreignKey:BoardID" json:"board,omitempty"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	// SchoolID / Sido+Sigungu pin the post to its community for scoped boards.
	SchoolID *uint  `gorm:"index" json:"school_id,omitempty"`
	Sido     string `gorm:"size:40" json:"sido,omitempty"`
	Sigungu  string `gorm:"size:40" json:"sigungu,omitempty"`

	Title       string `gorm:"size:200;not null" json:"title"`
	Content     string `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool   `gorm:"not null;default:false" json:"is_anonymous"`
	IsBot       bool   `gorm:"not null;default:false;index" json:"is_bot"`

	ViewCount    int `gorm:"not null;default:0" json:"view_count"`
	LikeCount    int `gorm:"not null;default:0" json:"like_count"`
	CommentCount int `gorm:"not null;default:0" json:"comment_count"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// Comment represents a comment on a post. ParentID supports one reply level.
type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	PostID   uint     `gorm:"not null;index" json:"post_id"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ParentID *uint    `gorm:"index" json:"parent_id,omitempty"`
	Parent   *Comment `gorm:"foreignKey:ParentID" json:"-"`

	Content     string `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool   `gorm:"not null;default:false" json:"is_anonymous"`
	IsBot       bool   `gorm:"not null;default:false" json:"is_bot"`
	LikeCount   int    `gorm:"not null;default:0" json:"like_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

// LikeTargetType identifies what a like points at.
type LikeTargetType string

const (
	LikeTargetPost    LikeTargetType = "post"
	LikeTargetComment LikeTargetType = "comment"
)

// Like represents a user liking a post or comment. One like per
// (user, target type, target id).
type Like struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_like_once" json:"user_id"`
	TargetType LikeTargetType `gorm:"type:varchar(10);not null;uniqueIndex:idx_like_once" json:"target_type"`
	TargetID   uint           `gorm:"not null;uniqueIndex:idx_like_once" json:"target_id"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Like) TableName() string {
	return "likes"
}
