package testutil

import (
	"context"
	"time"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/dateutil"
)

// Fixture ids referenced across tests.
const (
	User1 = "user1"
	User2 = "user2"
	User3 = "user3"
	User4 = "user4"
	User5 = "user5"

	Habit1 = "user1_habit1"
	Habit2 = "user2_habit1"

	AchievementFirstWeek   = "achievement_first_week"
	AchievementFirstFriend = "achievement_first_friend"
	AchievementDecorator   = "achievement_decorator"
	AchievementSupporter   = "achievement_supporter"
)

// Habit1StartDate leaves plenty of room to log days before "today" in tests.
var Habit1StartDate = dateutil.Day(time.Now().AddDate(0, -6, 0))

func InsertFixtures(ctx context.Context) {
	InsertUsers(ctx)
	InsertHabits(ctx)
	InsertAchievements(ctx)
}

func InsertUsers(ctx context.Context) {
	userRepo := repository.NewUserRepository()

	for _, id := range []string{User1, User2, User3, User4, User5} {
		err := userRepo.Create(ctx, &entity.User{
			Base: entity.Base{ID: id},
			Name: id,
			Role: entity.UserRole,
		})
		if err != nil {
			panic(err)
		}
	}
}

func InsertHabits(ctx context.Context) {
	habitRepo := repository.NewHabitRepository()

	err := habitRepo.Create(ctx, &entity.Habit{
		Base:      entity.Base{ID: Habit1},
		UserID:    User1,
		Title:     "No drinking",
		StartDate: Habit1StartDate,
		IsActive:  true,
	})
	if err != nil {
		panic(err)
	}

	err = habitRepo.Create(ctx, &entity.Habit{
		Base:             entity.Base{ID: Habit2},
		UserID:           User2,
		Title:            "Morning run",
		StartDate:        Habit1StartDate,
		IsActive:         true,
		CustomMilestones: entity.Array[int]{10, 100},
	})
	if err != nil {
		panic(err)
	}
}

func InsertAchievements(ctx context.Context) {
	achievementRepo := repository.NewAchievementRepository()

	achievements := []*entity.Achievement{
		{
			Base:     entity.Base{ID: AchievementFirstWeek},
			Name:     "One Week Strong",
			Criteria: entity.Map{"type": "days", "value": 7},
		},
		{
			Base:     entity.Base{ID: AchievementFirstFriend},
			Name:     "First Friend",
			Criteria: entity.Map{"type": "friends", "value": 1},
		},
		{
			Base:     entity.Base{ID: AchievementDecorator},
			Name:     "Decorator",
			Criteria: entity.Map{"type": "rooms", "value": 1},
		},
		{
			Base:     entity.Base{ID: AchievementSupporter},
			Name:     "Supporter",
			Criteria: entity.Map{"type": "support_given", "value": 3},
		},
	}

	for _, a := range achievements {
		if err := achievementRepo.Create(ctx, a); err != nil {
			panic(err)
		}
	}
}
