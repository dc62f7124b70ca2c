package repository

import (
	"context"
	"time"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/dateutil"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type HabitLogRepository interface {
	Create(ctx context.Context, log *entity.HabitLogEntry) error
	Get(ctx context.Context, habitID string, day time.Time) (*entity.HabitLogEntry, error)
	Update(ctx context.Context, log *entity.HabitLogEntry) error

	// GetCompletedInRange returns completed entries of a habit between two
	// days inclusive, most recent day first.
	GetCompletedInRange(ctx context.Context, habitID string, from, to time.Time) ([]entity.HabitLogEntry, error)

	// GetLatest returns the entry with the most recent day of a habit.
	GetLatest(ctx context.Context, habitID string) (*entity.HabitLogEntry, error)
}

type habitLogRepository struct{}

func NewHabitLogRepository() *habitLogRepository {
	return &habitLogRepository{}
}

func (r *habitLogRepository) Create(ctx context.Context, log *entity.HabitLogEntry) error {
	log.Day = dateutil.Day(log.Day)
	return xcontext.DB(ctx).Create(log).Error
}

func (r *habitLogRepository) Get(
	ctx context.Context, habitID string, day time.Time,
) (*entity.HabitLogEntry, error) {
	var result entity.HabitLogEntry
	err := xcontext.DB(ctx).
		Where("habit_id=? AND day=?", habitID, dateutil.Day(day)).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *habitLogRepository) Update(ctx context.Context, log *entity.HabitLogEntry) error {
	tx := xcontext.DB(ctx).
		Model(&entity.HabitLogEntry{}).
		Where("id=?", log.ID).
		Updates(map[string]any{
			"completed":   log.Completed,
			"mood_before": log.MoodBefore,
			"mood_after":  log.MoodAfter,
			"difficulty":  log.Difficulty,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *habitLogRepository) GetLatest(
	ctx context.Context, habitID string,
) (*entity.HabitLogEntry, error) {
	var result entity.HabitLogEntry
	err := xcontext.DB(ctx).
		Where("habit_id=?", habitID).
		Order("day DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *habitLogRepository) GetCompletedInRange(
	ctx context.Context, habitID string, from, to time.Time,
) ([]entity.HabitLogEntry, error) {
	var result []entity.HabitLogEntry
	err := xcontext.DB(ctx).
		Where("habit_id=? AND completed=? AND day BETWEEN ? AND ?",
			habitID, true, dateutil.Day(from), dateutil.Day(to)).
		Order("day DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
