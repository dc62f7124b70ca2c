package repository

import (
	"context"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByUserID(ctx context.Context, userID string) ([]entity.Room, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
}

type roomRepository struct{}

func NewRoomRepository() *roomRepository {
	return &roomRepository{}
}

func (r *roomRepository) Create(ctx context.Context, room *entity.Room) error {
	return xcontext.DB(ctx).Create(room).Error
}

func (r *roomRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Room, error) {
	var result []entity.Room
	if err := xcontext.DB(ctx).Find(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *roomRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.Room{}).
		Where("user_id=?", userID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}
