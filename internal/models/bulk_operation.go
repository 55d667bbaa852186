package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BulkOperationType enumerates the admin bulk jobs the orchestrator can run.
type BulkOperationType string

const (
	BulkOpCreateBots       BulkOperationType = "create_bots"
	BulkOpGeneratePosts    BulkOperationType = "generate_posts"
	BulkOpGenerateComments BulkOperationType = "generate_comments"
	BulkOpDeletePosts      BulkOperationType = "delete_posts"
	BulkOpDeleteBots       BulkOperationType = "delete_bots"
	BulkOpCleanup          BulkOperationType = "cleanup"
)

// ValidBulkOperationTypes lists every accepted operation type.
var ValidBulkOperationTypes = []BulkOperationType{
	BulkOpCreateBots, BulkOpGeneratePosts, BulkOpGenerateComments,
	BulkOpDeletePosts, BulkOpDeleteBots, BulkOpCleanup,
}

// IsValid reports whether t is a recognized operation type.
func (t BulkOperationType) IsValid() bool {
	for _, v := range ValidBulkOperationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// BulkOperationStatus is the job lifecycle state.
// pending -> running -> completed | failed; terminal states never change.
type BulkOperationStatus string

const (
	BulkOpStatusPending   BulkOperationStatus = "pending"
	BulkOpStatusRunning   BulkOperationStatus = "running"
	BulkOpStatusCompleted BulkOperationStatus = "completed"
	BulkOpStatusFailed    BulkOperationStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s BulkOperationStatus) IsTerminal() bool {
	return s == BulkOpStatusCompleted || s == BulkOpStatusFailed
}

// BulkOperation is a durable record of one admin bulk job. Rows survive
// process restarts; a startup sweep fails rows orphaned by a dead worker.
// At most one non-terminal row per type may exist at a time.
type BulkOperation struct {
	ID     uint                `gorm:"primaryKey" json:"-"`
	OpID   string              `gorm:"size:80;not null;uniqueIndex" json:"id"`
	Type   BulkOperationType   `gorm:"type:varchar(30);not null;index" json:"type"`
	Status BulkOperationStatus `gorm:"type:varchar(10);not null;default:'pending';index" json:"status"`

	Progress int    `gorm:"not null;default:0" json:"progress"`
	Total    int    `gorm:"not null;default:0" json:"total"`
	Message  string `gorm:"size:500" json:"message"`

	Params datatypes.JSON `json:"params,omitempty"`

	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for GORM.
func (BulkOperation) TableName() string {
	return "bulk_operations"
}

// NewBulkOpID builds an opaque operation id from the type, a timestamp and a
// random suffix.
func NewBulkOpID(t BulkOperationType) string {
	return fmt.Sprintf("%s_%d_%s", t, time.Now().UnixMilli(), uuid.NewString()[:8])
}
