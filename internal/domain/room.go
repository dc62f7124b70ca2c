package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/steadyhabits/backend/internal/domain/progress"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

type RoomDomain interface {
	CreateRoom(ctx context.Context, req *model.CreateRoomRequest) (*model.CreateRoomResponse, error)
	GetMyRooms(ctx context.Context, req *model.GetMyRoomsRequest) (*model.GetMyRoomsResponse, error)
}

type roomDomain struct {
	roomRepo repository.RoomRepository
	engine   *progress.Engine
}

func NewRoomDomain(roomRepo repository.RoomRepository, engine *progress.Engine) *roomDomain {
	return &roomDomain{roomRepo: roomRepo, engine: engine}
}

func (d *roomDomain) CreateRoom(
	ctx context.Context, req *model.CreateRoomRequest,
) (*model.CreateRoomResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	userID := xcontext.RequestUserID(ctx)
	room := &entity.Room{
		Base:   entity.Base{ID: uuid.NewString()},
		UserID: userID,
		Name:   req.Name,
		Theme:  req.Theme,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.roomRepo.Create(ctx, room); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create room: %v", err)
		return nil, errorx.Unknown
	}

	unlocked, err := d.engine.OnSocialStateChanged(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot evaluate achievements: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.engine.Notify(ctx, nil, unlocked)
	return &model.CreateRoomResponse{
		ID:           room.ID,
		Achievements: convertUserAchievements(unlocked),
	}, nil
}

func (d *roomDomain) GetMyRooms(
	ctx context.Context, req *model.GetMyRoomsRequest,
) (*model.GetMyRoomsResponse, error) {
	rooms, err := d.roomRepo.GetByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get rooms: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetMyRoomsResponse{}
	for i := range rooms {
		resp.Rooms = append(resp.Rooms, model.Room{
			ID:    rooms[i].ID,
			Name:  rooms[i].Name,
			Theme: rooms[i].Theme,
		})
	}

	return resp, nil
}
