package model

import (
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/dateutil"
)

func ConvertHabit(habit *entity.Habit) Habit {
	return Habit{
		ID:               habit.ID,
		Title:            habit.Title,
		Description:      habit.Description,
		StartDate:        dateutil.FormatDay(habit.StartDate),
		IsActive:         habit.IsActive,
		CustomMilestones: []int(habit.CustomMilestones),
	}
}

func ConvertMilestoneEvent(event *entity.MilestoneEvent) MilestoneEvent {
	return MilestoneEvent{
		HabitID:       event.HabitID,
		MilestoneType: string(event.MilestoneType),
		Value:         event.Value,
		AchievedAt:    event.AchievedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ConvertUserAchievement(ua *entity.UserAchievement) UserAchievement {
	return UserAchievement{
		AchievementID: ua.AchievementID,
		Name:          ua.Achievement.Name,
		AchievedAt:    ua.AchievedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ConvertFriendship(f *entity.Friendship) Friendship {
	return Friendship{
		ID:          f.ID,
		RequesterID: f.RequesterID,
		AddresseeID: f.AddresseeID,
		Status:      string(f.Status),
	}
}
