package domain

import (
	"context"
	"errors"

	"github.com/steadyhabits/backend/internal/domain/progress"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type SupportDomain interface {
	GiveSupport(ctx context.Context, req *model.GiveSupportRequest) (*model.GiveSupportResponse, error)
}

type supportDomain struct {
	supportActionRepo repository.SupportActionRepository
	friendshipRepo    repository.FriendshipRepository
	userRepo          repository.UserRepository
	engine            *progress.Engine
}

func NewSupportDomain(
	supportActionRepo repository.SupportActionRepository,
	friendshipRepo repository.FriendshipRepository,
	userRepo repository.UserRepository,
	engine *progress.Engine,
) *supportDomain {
	return &supportDomain{
		supportActionRepo: supportActionRepo,
		friendshipRepo:    friendshipRepo,
		userRepo:          userRepo,
		engine:            engine,
	}
}

func (d *supportDomain) GiveSupport(
	ctx context.Context, req *model.GiveSupportRequest,
) (*model.GiveSupportResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == req.RecipientID {
		return nil, errorx.New(errorx.SelfReference, "Not allow supporting yourself")
	}

	if _, err := d.userRepo.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	// A block cuts off support in both directions.
	friendship, err := d.friendshipRepo.GetByPair(ctx, userID, req.RecipientID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get friendship: %v", err)
		return nil, errorx.Unknown
	}

	if friendship != nil && friendship.Status == entity.FriendshipBlocked {
		return nil, errorx.New(errorx.Blocked, "This friendship is blocked")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	action := &entity.SupportAction{
		UserID:      userID,
		RecipientID: req.RecipientID,
		Kind:        req.Kind,
	}

	if err := d.supportActionRepo.Create(ctx, action); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create support action: %v", err)
		return nil, errorx.Unknown
	}

	unlocked, err := d.engine.OnSocialStateChanged(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot evaluate achievements: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.engine.Notify(ctx, nil, unlocked)
	return &model.GiveSupportResponse{Achievements: convertUserAchievements(unlocked)}, nil
}
