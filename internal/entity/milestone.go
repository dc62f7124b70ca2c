package entity

import (
	"time"

	"github.com/steadyhabits/backend/pkg/enum"
)

type MilestoneType string

var (
	MilestoneDays   = enum.New(MilestoneType("days"))
	MilestoneWeeks  = enum.New(MilestoneType("weeks"))
	MilestoneMonths = enum.New(MilestoneType("months"))
	MilestoneCustom = enum.New(MilestoneType("custom"))
)

// MilestoneEvent is created at most once per (user, habit, type, value). The
// unique index is the authority; application-level existence checks only
// avoid useless inserts.
type MilestoneEvent struct {
	Base
	UserID string `gorm:"uniqueIndex:idx_milestone_events_unique"`
	User   User   `gorm:"foreignKey:UserID"`

	HabitID string `gorm:"uniqueIndex:idx_milestone_events_unique"`
	Habit   Habit  `gorm:"foreignKey:HabitID"`

	MilestoneType MilestoneType `gorm:"uniqueIndex:idx_milestone_events_unique"`

	// Value is the crossed streak threshold in days.
	Value int `gorm:"uniqueIndex:idx_milestone_events_unique"`

	AchievedAt  time.Time
	WasNotified bool
}
