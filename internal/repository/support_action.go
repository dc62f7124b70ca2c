package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

type SupportActionRepository interface {
	Create(ctx context.Context, action *entity.SupportAction) error
	CountByUserID(ctx context.Context, userID string) (int64, error)
}

type supportActionRepository struct {
	idGenerator *snowflake.Node
}

func NewSupportActionRepository() *supportActionRepository {
	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err)
	}

	return &supportActionRepository{idGenerator: node}
}

func (r *supportActionRepository) Create(ctx context.Context, action *entity.SupportAction) error {
	if action.ID == 0 {
		action.ID = r.idGenerator.Generate().Int64()
	}

	return xcontext.DB(ctx).Create(action).Error
}

func (r *supportActionRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.SupportAction{}).
		Where("user_id=?", userID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}
