package repository

import (
	"context"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

type HabitRepository interface {
	Create(ctx context.Context, habit *entity.Habit) error
	GetByID(ctx context.Context, id string) (*entity.Habit, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Habit, error)
}

type habitRepository struct{}

func NewHabitRepository() *habitRepository {
	return &habitRepository{}
}

func (r *habitRepository) Create(ctx context.Context, habit *entity.Habit) error {
	return xcontext.DB(ctx).Create(habit).Error
}

func (r *habitRepository) GetByID(ctx context.Context, id string) (*entity.Habit, error) {
	var result entity.Habit
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *habitRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Habit, error) {
	var result []entity.Habit
	if err := xcontext.DB(ctx).Find(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return result, nil
}
