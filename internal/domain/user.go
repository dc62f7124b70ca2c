package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error)
	GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error)
}

type userDomain struct {
	userRepo repository.UserRepository
}

func NewUserDomain(userRepo repository.UserRepository) *userDomain {
	return &userDomain{userRepo: userRepo}
}

func (d *userDomain) Register(
	ctx context.Context, req *model.RegisterRequest,
) (*model.RegisterResponse, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	user := &entity.User{
		Base: entity.Base{ID: uuid.NewString()},
		Name: req.Name,
		Role: entity.UserRole,
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorx.New(errorx.AlreadyExists, "This username is already taken")
		}

		xcontext.Logger(ctx).Errorf("Cannot create user: %v", err)
		return nil, errorx.Unknown
	}

	cfg := xcontext.Configs(ctx).Auth
	token, err := xcontext.TokenEngine(ctx).Generate(
		cfg.AccessToken.Expiration, model.AccessToken{ID: user.ID, Name: user.Name})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	// Browsers get the token in the session cookie too, so they don't have to
	// manage the Authorization header.
	if r := xcontext.HTTPRequest(ctx); r != nil {
		session, err := xcontext.SessionStore(ctx).Get(r, xcontext.Configs(ctx).Session.Name)
		if err == nil {
			session.Values[cfg.AccessToken.Name] = token
			if err := session.Save(r, xcontext.HTTPWriter(ctx)); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot save session: %v", err)
			}
		}
	}

	return &model.RegisterResponse{
		User:        model.User{ID: user.ID, Name: user.Name, Role: user.Role},
		AccessToken: token,
	}, nil
}

func (d *userDomain) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMeResponse{
		User: model.User{ID: user.ID, Name: user.Name, Role: user.Role},
	}, nil
}
