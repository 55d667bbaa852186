package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	SettingKeyPrefix      = "setting:%s"
	SchoolSearchKeyPrefix = "school:search:%s"
	NotifCountKeyPrefix   = "notif:unread:%d"
)

const (
	UserTTL         = 5 * time.Minute
	SettingTTL      = time.Minute
	SchoolSearchTTL = 10 * time.Minute
	NotifCountTTL   = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func SettingKey(name string) string {
	return fmt.Sprintf(SettingKeyPrefix, name)
}

func SchoolSearchKey(prefix string) string {
	return fmt.Sprintf(SchoolSearchKeyPrefix, prefix)
}

func NotifCountKey(userID uint) string {
	return fmt.Sprintf(NotifCountKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateSetting(ctx context.Context, name string) {
	Invalidate(ctx, SettingKey(name))
}

func InvalidateNotifCount(ctx context.Context, userID uint) {
	Invalidate(ctx, NotifCountKey(userID))
}
