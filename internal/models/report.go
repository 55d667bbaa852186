package models

import "time"

// ReportStatus is the moderation lifecycle of a report.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusResolved ReportStatus = "resolved"
	ReportStatusRejected ReportStatus = "rejected"
)

// ReportTargetType identifies what was reported.
type ReportTargetType string

const (
	ReportTargetPost    ReportTargetType = "post"
	ReportTargetComment ReportTargetType = "comment"
	ReportTargetUser    ReportTargetType = "user"
)

// Report is a user-filed moderation report reviewed by admins.
type Report struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	ReporterID uint             `gorm:"not null;index" json:"reporter_id"`
	Reporter   *User            `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	TargetType ReportTargetType `gorm:"type:varchar(10);not null" json:"target_type"`
	TargetID   uint             `gorm:"not null;index" json:"target_id"`
	Reason     string           `gorm:"size:200;not null" json:"reason"`
	Detail     string           `gorm:"type:text" json:"detail,omitempty"`

	Status     ReportStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`
	ResolverID *uint        `json:"resolver_id,omitempty"`
	Resolution string       `gorm:"size:200" json:"resolution,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Report) TableName() string {
	return "reports"
}
