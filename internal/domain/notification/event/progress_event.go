package event

import (
	"time"

	"github.com/steadyhabits/backend/internal/entity"
)

// MilestoneAchievedEvent is delivered once per crossed threshold; the engine
// guarantees it is never published twice for the same (habit, type, value).
type MilestoneAchievedEvent struct {
	UserID        string    `json:"user_id"`
	HabitID       string    `json:"habit_id"`
	MilestoneType string    `json:"milestone_type"`
	Value         int       `json:"value"`
	AchievedAt    time.Time `json:"achieved_at"`
}

func NewMilestoneAchievedEvent(e *entity.MilestoneEvent) *MilestoneAchievedEvent {
	return &MilestoneAchievedEvent{
		UserID:        e.UserID,
		HabitID:       e.HabitID,
		MilestoneType: string(e.MilestoneType),
		Value:         e.Value,
		AchievedAt:    e.AchievedAt,
	}
}

func (*MilestoneAchievedEvent) Op() string {
	return "milestone_achieved"
}

type AchievementUnlockedEvent struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	Name          string    `json:"name"`
	AchievedAt    time.Time `json:"achieved_at"`
}

func NewAchievementUnlockedEvent(ua *entity.UserAchievement) *AchievementUnlockedEvent {
	return &AchievementUnlockedEvent{
		UserID:        ua.UserID,
		AchievementID: ua.AchievementID,
		Name:          ua.Achievement.Name,
		AchievedAt:    ua.AchievedAt,
	}
}

func (*AchievementUnlockedEvent) Op() string {
	return "achievement_unlocked"
}
