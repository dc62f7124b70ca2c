package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/steadyhabits/backend/internal/domain/progress"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type FriendDomain interface {
	RequestFriendship(ctx context.Context, req *model.RequestFriendshipRequest) (*model.RequestFriendshipResponse, error)
	RespondFriendship(ctx context.Context, req *model.RespondFriendshipRequest) (*model.RespondFriendshipResponse, error)
	BlockFriendship(ctx context.Context, req *model.BlockFriendshipRequest) (*model.BlockFriendshipResponse, error)
	GetMyFriends(ctx context.Context, req *model.GetMyFriendsRequest) (*model.GetMyFriendsResponse, error)
	AddBestFriend(ctx context.Context, req *model.AddBestFriendRequest) (*model.AddBestFriendResponse, error)
	RemoveBestFriend(ctx context.Context, req *model.RemoveBestFriendRequest) (*model.RemoveBestFriendResponse, error)
	GetMyBestFriends(ctx context.Context, req *model.GetMyBestFriendsRequest) (*model.GetMyBestFriendsResponse, error)
}

type friendDomain struct {
	friendshipRepo repository.FriendshipRepository
	bestFriendRepo repository.BestFriendRepository
	userRepo       repository.UserRepository
	engine         *progress.Engine
}

func NewFriendDomain(
	friendshipRepo repository.FriendshipRepository,
	bestFriendRepo repository.BestFriendRepository,
	userRepo repository.UserRepository,
	engine *progress.Engine,
) *friendDomain {
	return &friendDomain{
		friendshipRepo: friendshipRepo,
		bestFriendRepo: bestFriendRepo,
		userRepo:       userRepo,
		engine:         engine,
	}
}

func (d *friendDomain) RequestFriendship(
	ctx context.Context, req *model.RequestFriendshipRequest,
) (*model.RequestFriendshipResponse, error) {
	requesterID := xcontext.RequestUserID(ctx)
	if requesterID == req.UserID {
		return nil, errorx.New(errorx.SelfReference, "Not allow sending a request to yourself")
	}

	if _, err := d.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	existing, err := d.friendshipRepo.GetByPair(ctx, requesterID, req.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get friendship: %v", err)
		return nil, errorx.Unknown
	}

	if existing != nil {
		friendship, err := d.rerequest(ctx, existing, requesterID, req.UserID)
		if err != nil {
			return nil, err
		}

		xcontext.WithCommitDBTransaction(ctx)
		return &model.RequestFriendshipResponse{Friendship: model.ConvertFriendship(friendship)}, nil
	}

	friendship := &entity.Friendship{
		Base:        entity.Base{ID: uuid.NewString()},
		RequesterID: requesterID,
		AddresseeID: req.UserID,
		Status:      entity.FriendshipPending,
	}

	if err := d.friendshipRepo.Create(ctx, friendship); err != nil {
		// A concurrent request for the same pair hits the pair_key unique
		// index. Re-check so the caller gets a conflict instead of a 500.
		if _, rerr := d.friendshipRepo.GetByPair(ctx, requesterID, req.UserID); rerr == nil {
			return nil, errorx.New(errorx.AlreadyExists, "The friendship already exists")
		}

		xcontext.Logger(ctx).Errorf("Cannot create friendship: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.RequestFriendshipResponse{Friendship: model.ConvertFriendship(friendship)}, nil
}

// rerequest decides what to do with an existing row for the pair. Only a
// declined friendship can be reopened; anything else conflicts, and a block
// is terminal by definition.
func (d *friendDomain) rerequest(
	ctx context.Context, existing *entity.Friendship, requesterID, addresseeID string,
) (*entity.Friendship, error) {
	switch existing.Status {
	case entity.FriendshipBlocked:
		return nil, errorx.New(errorx.Blocked, "This friendship is blocked")

	case entity.FriendshipPending, entity.FriendshipAccepted:
		return nil, errorx.New(errorx.AlreadyExists, "The friendship already exists")

	case entity.FriendshipDeclined:
		cfg := xcontext.Configs(ctx).Social
		if cfg.DeclinedRerequestBySameUserOnly && existing.RequesterID != requesterID {
			return nil, errorx.New(errorx.PermissionDenied,
				"Only the original requester can send this request again")
		}

		if err := d.friendshipRepo.Rerequest(ctx, existing.ID, requesterID, addresseeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.AlreadyExists, "The friendship already exists")
			}

			xcontext.Logger(ctx).Errorf("Cannot reopen friendship: %v", err)
			return nil, errorx.Unknown
		}

		existing.RequesterID = requesterID
		existing.AddresseeID = addresseeID
		existing.Status = entity.FriendshipPending
		return existing, nil

	default:
		xcontext.Logger(ctx).Errorf("Invalid friendship status %s", existing.Status)
		return nil, errorx.Unknown
	}
}

func (d *friendDomain) RespondFriendship(
	ctx context.Context, req *model.RespondFriendshipRequest,
) (*model.RespondFriendshipResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	friendship, err := d.friendshipRepo.GetByID(ctx, req.FriendshipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found friendship")
		}

		xcontext.Logger(ctx).Errorf("Cannot get friendship: %v", err)
		return nil, errorx.Unknown
	}

	// Only the addressee decides. The requester cannot accept on behalf of
	// the other side.
	if friendship.AddresseeID != userID {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	newStatus := entity.FriendshipDeclined
	if req.Accept {
		newStatus = entity.FriendshipAccepted
	}

	err = d.friendshipRepo.UpdateStatus(ctx, friendship.ID, entity.FriendshipPending, newStatus)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.BadRequest, "The friendship is not pending")
		}

		xcontext.Logger(ctx).Errorf("Cannot update friendship: %v", err)
		return nil, errorx.Unknown
	}

	friendship.Status = newStatus

	var unlocked []entity.UserAchievement
	if req.Accept {
		// Both sides gained a friend.
		for _, id := range []string{friendship.RequesterID, friendship.AddresseeID} {
			achievements, err := d.engine.OnSocialStateChanged(ctx, id)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot evaluate achievements: %v", err)
				return nil, errorx.Unknown
			}

			unlocked = append(unlocked, achievements...)
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.engine.Notify(ctx, nil, unlocked)

	var mine []entity.UserAchievement
	for _, ua := range unlocked {
		if ua.UserID == userID {
			mine = append(mine, ua)
		}
	}

	return &model.RespondFriendshipResponse{
		Friendship:   model.ConvertFriendship(friendship),
		Achievements: convertUserAchievements(mine),
	}, nil
}

func (d *friendDomain) BlockFriendship(
	ctx context.Context, req *model.BlockFriendshipRequest,
) (*model.BlockFriendshipResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == req.UserID {
		return nil, errorx.New(errorx.SelfReference, "Not allow blocking yourself")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	friendship, err := d.friendshipRepo.GetByPair(ctx, userID, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found friendship")
		}

		xcontext.Logger(ctx).Errorf("Cannot get friendship: %v", err)
		return nil, errorx.Unknown
	}

	if friendship.Status == entity.FriendshipBlocked {
		xcontext.WithCommitDBTransaction(ctx)
		return &model.BlockFriendshipResponse{}, nil
	}

	err = d.friendshipRepo.UpdateStatus(ctx, friendship.ID, friendship.Status, entity.FriendshipBlocked)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost a race with another transition. Blocking still wins unless
			// the row is already blocked, so try once more with fresh state.
			fresh, gerr := d.friendshipRepo.GetByID(ctx, friendship.ID)
			if gerr == nil && fresh.Status != entity.FriendshipBlocked {
				err = d.friendshipRepo.UpdateStatus(ctx, fresh.ID, fresh.Status, entity.FriendshipBlocked)
			} else {
				err = gerr
			}
		}

		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot block friendship: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.BlockFriendshipResponse{}, nil
}

func (d *friendDomain) GetMyFriends(
	ctx context.Context, req *model.GetMyFriendsRequest,
) (*model.GetMyFriendsResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	friendships, err := d.friendshipRepo.GetAcceptedByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get friendships: %v", err)
		return nil, errorx.Unknown
	}

	var friendIDs []string
	for _, f := range friendships {
		if f.RequesterID == userID {
			friendIDs = append(friendIDs, f.AddresseeID)
		} else {
			friendIDs = append(friendIDs, f.RequesterID)
		}
	}

	friends, err := d.loadFriends(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	return &model.GetMyFriendsResponse{Friends: friends}, nil
}

func (d *friendDomain) AddBestFriend(
	ctx context.Context, req *model.AddBestFriendRequest,
) (*model.AddBestFriendResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == req.FriendID {
		return nil, errorx.New(errorx.SelfReference, "Not allow adding yourself")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	friendship, err := d.friendshipRepo.GetByPair(ctx, userID, req.FriendID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.BadRequest, "This user is not your friend")
		}

		xcontext.Logger(ctx).Errorf("Cannot get friendship: %v", err)
		return nil, errorx.Unknown
	}

	if friendship.Status != entity.FriendshipAccepted {
		return nil, errorx.New(errorx.BadRequest, "This user is not your friend")
	}

	created, err := d.bestFriendRepo.CreateIfBelowCap(
		ctx, userID, req.FriendID, xcontext.Configs(ctx).Social.MaxBestFriends)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add best friend: %v", err)
		return nil, errorx.Unknown
	}

	if !created {
		// The insert refuses for two reasons. Distinguish them for the caller.
		if _, err := d.bestFriendRepo.Get(ctx, userID, req.FriendID); err == nil {
			return nil, errorx.New(errorx.AlreadyExists, "This user is already your best friend")
		}

		return nil, errorx.New(errorx.MaximumReached,
			"You can only have %d best friends", xcontext.Configs(ctx).Social.MaxBestFriends)
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.AddBestFriendResponse{}, nil
}

func (d *friendDomain) RemoveBestFriend(
	ctx context.Context, req *model.RemoveBestFriendRequest,
) (*model.RemoveBestFriendResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	if err := d.bestFriendRepo.Delete(ctx, userID, req.FriendID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "This user is not your best friend")
		}

		xcontext.Logger(ctx).Errorf("Cannot remove best friend: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RemoveBestFriendResponse{}, nil
}

func (d *friendDomain) GetMyBestFriends(
	ctx context.Context, req *model.GetMyBestFriendsRequest,
) (*model.GetMyBestFriendsResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	bestFriends, err := d.bestFriendRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get best friends: %v", err)
		return nil, errorx.Unknown
	}

	var friendIDs []string
	for _, bf := range bestFriends {
		friendIDs = append(friendIDs, bf.FriendID)
	}

	friends, err := d.loadFriends(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	return &model.GetMyBestFriendsResponse{BestFriends: friends}, nil
}

func (d *friendDomain) loadFriends(ctx context.Context, ids []string) ([]model.Friend, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := d.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	var friends []model.Friend
	for _, u := range users {
		friends = append(friends, model.Friend{UserID: u.ID, Name: u.Name})
	}

	return friends, nil
}
