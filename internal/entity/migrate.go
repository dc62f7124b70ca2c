package entity

import "gorm.io/gorm"

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Habit{},
		&HabitLogEntry{},
		&MilestoneEvent{},
		&Achievement{},
		&UserAchievement{},
		&Friendship{},
		&BestFriend{},
		&Room{},
		&SupportAction{},
	)
}
