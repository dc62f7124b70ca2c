package entity

import "time"

type Habit struct {
	Base
	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Title       string
	Description string

	// StartDate bounds backward streak scans. A streak can never extend to a
	// day before the habit existed.
	StartDate time.Time

	IsActive bool `gorm:"default:true"`

	// CustomMilestones holds extra per-habit streak thresholds in days, on
	// top of the standard day/week/month buckets.
	CustomMilestones Array[int]
}
