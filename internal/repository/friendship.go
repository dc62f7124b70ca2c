package repository

import (
	"context"
	"errors"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type FriendshipRepository interface {
	Create(ctx context.Context, friendship *entity.Friendship) error
	GetByID(ctx context.Context, id string) (*entity.Friendship, error)

	// GetByPair looks the row up by the unordered pair, regardless of which
	// user requested it.
	GetByPair(ctx context.Context, a, b string) (*entity.Friendship, error)

	// UpdateStatus transitions the row from an expected status to a new one.
	// It fails with gorm.ErrRecordNotFound if the row is not currently in the
	// expected status, which makes concurrent conflicting transitions lose
	// cleanly instead of overwriting each other.
	UpdateStatus(ctx context.Context, id string, from, to entity.FriendshipStatus) error

	// Rerequest reopens a declined row as a pending request, possibly with the
	// roles flipped. Like UpdateStatus, it fails with gorm.ErrRecordNotFound
	// if the row has left the declined status in the meantime.
	Rerequest(ctx context.Context, id, requesterID, addresseeID string) error

	GetAcceptedByUserID(ctx context.Context, userID string) ([]entity.Friendship, error)
	CountAcceptedByUserID(ctx context.Context, userID string) (int64, error)
}

type friendshipRepository struct{}

func NewFriendshipRepository() *friendshipRepository {
	return &friendshipRepository{}
}

func (r *friendshipRepository) Create(ctx context.Context, friendship *entity.Friendship) error {
	return xcontext.DB(ctx).Create(friendship).Error
}

func (r *friendshipRepository) GetByID(ctx context.Context, id string) (*entity.Friendship, error) {
	var result entity.Friendship
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *friendshipRepository) GetByPair(ctx context.Context, a, b string) (*entity.Friendship, error) {
	var result entity.Friendship
	err := xcontext.DB(ctx).
		Where("pair_key=?", entity.FriendshipPairKey(a, b)).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *friendshipRepository) UpdateStatus(
	ctx context.Context, id string, from, to entity.FriendshipStatus,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Friendship{}).
		Where("id=? AND status=?", id, from).
		Update("status", to)

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *friendshipRepository) Rerequest(ctx context.Context, id, requesterID, addresseeID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Friendship{}).
		Where("id=? AND status=?", id, entity.FriendshipDeclined).
		Updates(map[string]any{
			"requester_id": requesterID,
			"addressee_id": addresseeID,
			"status":       entity.FriendshipPending,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *friendshipRepository) GetAcceptedByUserID(
	ctx context.Context, userID string,
) ([]entity.Friendship, error) {
	var result []entity.Friendship
	err := xcontext.DB(ctx).
		Where("(requester_id=? OR addressee_id=?) AND status=?",
			userID, userID, entity.FriendshipAccepted).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *friendshipRepository) CountAcceptedByUserID(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.Friendship{}).
		Where("(requester_id=? OR addressee_id=?) AND status=?",
			userID, userID, entity.FriendshipAccepted).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}
