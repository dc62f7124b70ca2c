package entity

import (
	"database/sql"
	"time"

	"github.com/steadyhabits/backend/pkg/enum"
)

type Mood string

var (
	MoodTerrible = enum.New(Mood("terrible"))
	MoodBad      = enum.New(Mood("bad"))
	MoodNeutral  = enum.New(Mood("neutral"))
	MoodGood     = enum.New(Mood("good"))
	MoodGreat    = enum.New(Mood("great"))
)

// HabitLogEntry records whether a habit was completed on a calendar day.
// There is at most one entry per (habit, day); an absent entry means the day
// does not count toward a streak, exactly like Completed=false.
type HabitLogEntry struct {
	Base
	HabitID string `gorm:"uniqueIndex:idx_habit_log_entries_habit_day"`
	Habit   Habit  `gorm:"foreignKey:HabitID"`

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	// Day is the calendar day the entry is for, truncated to midnight UTC.
	Day time.Time `gorm:"uniqueIndex:idx_habit_log_entries_habit_day"`

	Completed bool

	MoodBefore sql.NullString
	MoodAfter  sql.NullString

	// Difficulty ranges 1 to 10 when set.
	Difficulty sql.NullInt32
}
