package repository

import (
	"context"
	"time"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type BestFriendRepository interface {
	// CreateIfBelowCap inserts the row only while the user holds fewer than
	// cap best friends and the row does not exist yet, in a single statement.
	// A separate read-then-insert would overshoot the cap when two calls for
	// the same user commit concurrently. It reports whether a row was
	// inserted; the caller disambiguates cap versus duplicate.
	CreateIfBelowCap(ctx context.Context, userID, friendID string, cap int) (bool, error)

	Get(ctx context.Context, userID, friendID string) (*entity.BestFriend, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.BestFriend, error)
	Count(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, friendID string) error
}

type bestFriendRepository struct{}

func NewBestFriendRepository() *bestFriendRepository {
	return &bestFriendRepository{}
}

func (r *bestFriendRepository) CreateIfBelowCap(
	ctx context.Context, userID, friendID string, cap int,
) (bool, error) {
	tx := xcontext.DB(ctx).Exec(`
		INSERT INTO best_friends (user_id, friend_id, created_at)
		SELECT ?, ?, ? FROM (SELECT 1) AS seed
		WHERE (SELECT COUNT(*) FROM best_friends WHERE user_id=?) < ?
		AND NOT EXISTS (SELECT 1 FROM best_friends WHERE user_id=? AND friend_id=?)`,
		userID, friendID, time.Now(), userID, cap, userID, friendID,
	)

	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *bestFriendRepository) Get(ctx context.Context, userID, friendID string) (*entity.BestFriend, error) {
	var result entity.BestFriend
	err := xcontext.DB(ctx).
		Where("user_id=? AND friend_id=?", userID, friendID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *bestFriendRepository) GetByUserID(ctx context.Context, userID string) ([]entity.BestFriend, error) {
	var result []entity.BestFriend
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *bestFriendRepository) Count(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.BestFriend{}).
		Where("user_id=?", userID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *bestFriendRepository) Delete(ctx context.Context, userID, friendID string) error {
	tx := xcontext.DB(ctx).
		Where("user_id=? AND friend_id=?", userID, friendID).
		Delete(&entity.BestFriend{})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
