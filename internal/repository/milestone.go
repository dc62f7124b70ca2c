package repository

import (
	"context"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type MilestoneRepository interface {
	// Create inserts a milestone event unless one already exists for the
	// same (user, habit, type, value). It reports whether a row was actually
	// inserted, so replayed log writes never double-emit.
	Create(ctx context.Context, event *entity.MilestoneEvent) (bool, error)

	GetByUserHabit(ctx context.Context, userID, habitID string) ([]entity.MilestoneEvent, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.MilestoneEvent, error)

	// MarkNotified records that the event reached the notification topic.
	MarkNotified(ctx context.Context, id string) error
}

type milestoneRepository struct{}

func NewMilestoneRepository() *milestoneRepository {
	return &milestoneRepository{}
}

func (r *milestoneRepository) Create(ctx context.Context, event *entity.MilestoneEvent) (bool, error) {
	tx := xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "habit_id"},
				{Name: "milestone_type"},
				{Name: "value"},
			},
			DoNothing: true,
		}).Create(event)

	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *milestoneRepository) MarkNotified(ctx context.Context, id string) error {
	return xcontext.DB(ctx).
		Model(&entity.MilestoneEvent{}).
		Where("id=?", id).
		Update("was_notified", true).Error
}

func (r *milestoneRepository) GetByUserHabit(
	ctx context.Context, userID, habitID string,
) ([]entity.MilestoneEvent, error) {
	var result []entity.MilestoneEvent
	err := xcontext.DB(ctx).
		Where("user_id=? AND habit_id=?", userID, habitID).
		Order("value ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *milestoneRepository) GetByUserID(ctx context.Context, userID string) ([]entity.MilestoneEvent, error) {
	var result []entity.MilestoneEvent
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("achieved_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
