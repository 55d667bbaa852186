package models

import "time"

// Referral records a redeemed referral: who referred whom, the code used and
// the XP handed to each side. One row per referee, written in the same
// transaction as the two grants and the referrer_id assignment.
type Referral struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ReferrerID uint   `gorm:"not null;index" json:"referrer_id"`
	RefereeID  uint   `gorm:"not null;uniqueIndex" json:"referee_id"`
	CodeUsed   string `gorm:"size:30;not null" json:"code_used"`
	ReferrerXP int    `gorm:"not null" json:"referrer_xp"`
	RefereeXP  int    `gorm:"not null" json:"referee_xp"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Referral) TableName() string {
	return "referrals"
}
