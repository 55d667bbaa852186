package models

import "time"

// SchoolType distinguishes school levels for board scoping.
type SchoolType string

const (
	SchoolTypeElementary SchoolType = "elementary"
	SchoolTypeMiddle     SchoolType = "middle"
	SchoolTypeHigh       SchoolType = "high"
	SchoolTypeUniversity SchoolType = "university"
)

// School represents a school that users can join. Searches match on the
// name prefix; Sido/Sigungu scope the regional boards.
type School struct {
	ID      uint       `gorm:"primaryKey" json:"id"`
	Name    string     `gorm:"size:120;not null;index" json:"name"`
	Type    SchoolType `gorm:"type:varchar(20);not null" json:"type"`
	Sido    string     `gorm:"size:40;not null;index" json:"sido"`
	Sigungu string     `gorm:"size:40;not null" json:"sigungu"`
	Address string     `gorm:"size:200" json:"address,omitempty"`

	MemberCount   int `gorm:"not null;default:0" json:"member_count"`
	FavoriteCount int `gorm:"not null;default:0" json:"favorite_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (School) TableName() string {
	return "schools"
}
