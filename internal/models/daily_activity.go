package models

import "time"

// ActionType is an XP-earning activity category subject to daily limits.
type ActionType string

const (
	ActionPost       ActionType = "post"
	ActionComment    ActionType = "comment"
	ActionLike       ActionType = "like"
	ActionGame       ActionType = "game"
	ActionAttendance ActionType = "attendance"
)

// ValidActionTypes lists every recognized action category.
var ValidActionTypes = []ActionType{
	ActionPost, ActionComment, ActionLike, ActionGame, ActionAttendance,
}

// DailyActivity counts how many times one user performed one XP-earning
// action category on one calendar day. The date is stored as "2006-01-02";
// rows with a stale date read as a zero count (lazy reset, no background
// job) and are never explicitly deleted.
type DailyActivity struct {
	ID     uint       `gorm:"primaryKey" json:"id"`
	UserID uint       `gorm:"not null;uniqueIndex:idx_daily_action" json:"user_id"`
	Action ActionType `gorm:"type:varchar(20);not null;uniqueIndex:idx_daily_action" json:"action"`
	Date   string     `gorm:"size:10;not null;uniqueIndex:idx_daily_action" json:"date"`
	Count  int        `gorm:"not null;default:0" json:"count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (DailyActivity) TableName() string {
	return "daily_activities"
}

// DateLayout is the calendar-day key format used by DailyActivity rows.
const DateLayout = "2006-01-02"

// DayKey formats a time as the calendar-day key in the given location.
func DayKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DateLayout)
}
