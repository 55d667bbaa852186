package models

import "time"

// Setting is one admin-configurable integer knob, keyed by name.
// Booleans are stored as 0/1.
type Setting struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:60;not null;uniqueIndex" json:"name"`
	Value int    `gorm:"not null" json:"value"`

	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Setting) TableName() string {
	return "settings"
}

// Setting names used by the experience, referral and game flows.
const (
	SettingPostXP             = "community.post_xp"
	SettingCommentXP          = "community.comment_xp"
	SettingLikeXP             = "community.like_xp"
	SettingGameXP             = "games.play_xp"
	SettingGameScoreThreshold = "games.score_threshold"
	SettingAttendanceXP       = "attendance.base_xp"
	SettingStreakBonus        = "attendance.streak_bonus_xp"

	SettingDailyPostLimit       = "community.daily_post_limit"
	SettingDailyCommentLimit    = "community.daily_comment_limit"
	SettingDailyLikeLimit       = "community.daily_like_limit"
	SettingDailyGameLimit       = "games.daily_play_limit"
	SettingDailyAttendanceLimit = "attendance.daily_limit"

	SettingReferralEnabled    = "referral.enabled"
	SettingReferralReferrerXP = "referral.referrer_xp"
	SettingReferralRefereeXP  = "referral.referee_xp"
)

// DefaultSettings holds the value applied for each knob until an admin
// overrides it.
var DefaultSettings = map[string]int{
	SettingPostXP:             10,
	SettingCommentXP:          5,
	SettingLikeXP:             1,
	SettingGameXP:             5,
	SettingGameScoreThreshold: 100,
	SettingAttendanceXP:       5,
	SettingStreakBonus:        2,

	SettingDailyPostLimit:       3,
	SettingDailyCommentLimit:    5,
	SettingDailyLikeLimit:       20,
	SettingDailyGameLimit:       5,
	SettingDailyAttendanceLimit: 1,

	SettingReferralEnabled:    1,
	SettingReferralReferrerXP: 30,
	SettingReferralRefereeXP:  30,
}

// XPSettingForAction maps an action category to its reward setting name.
func XPSettingForAction(action ActionType) string {
	switch action {
	case ActionPost:
		return SettingPostXP
	case ActionComment:
		return SettingCommentXP
	case ActionLike:
		return SettingLikeXP
	case ActionGame:
		return SettingGameXP
	case ActionAttendance:
		return SettingAttendanceXP
	}
	return ""
}

// LimitSettingForAction maps an action category to its daily-limit setting name.
func LimitSettingForAction(action ActionType) string {
	switch action {
	case ActionPost:
		return SettingDailyPostLimit
	case ActionComment:
		return SettingDailyCommentLimit
	case ActionLike:
		return SettingDailyLikeLimit
	case ActionGame:
		return SettingDailyGameLimit
	case ActionAttendance:
		return SettingDailyAttendanceLimit
	}
	return ""
}
