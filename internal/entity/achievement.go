package entity

import (
	"time"

	"github.com/steadyhabits/backend/pkg/enum"
)

type CriteriaType string

var (
	CriteriaDays         = enum.New(CriteriaType("days"))
	CriteriaFriends      = enum.New(CriteriaType("friends"))
	CriteriaRooms        = enum.New(CriteriaType("rooms"))
	CriteriaSupportGiven = enum.New(CriteriaType("support_given"))
	CriteriaCustom       = enum.New(CriteriaType("custom"))
)

// Achievement is a catalog row. Criteria is a declarative document of the
// form {"type": "...", "value": N} (plus "key" for custom criteria); it is
// parsed into a closed variant set at load time, not at evaluation time.
type Achievement struct {
	Base
	Name        string `gorm:"unique"`
	Description string
	Icon        string

	Criteria Map
}

// UserAchievement is append-only. Unlocking is monotonic: the row is created
// once and never revoked.
type UserAchievement struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	AchievementID string      `gorm:"primaryKey"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID"`

	AchievedAt  time.Time
	WasNotified bool
}
