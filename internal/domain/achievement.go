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

type AchievementDomain interface {
	CreateAchievement(ctx context.Context, req *model.CreateAchievementRequest) (*model.CreateAchievementResponse, error)
	GetAchievements(ctx context.Context, req *model.GetAchievementsRequest) (*model.GetAchievementsResponse, error)
	GetMyAchievements(ctx context.Context, req *model.GetMyAchievementsRequest) (*model.GetMyAchievementsResponse, error)
}

type achievementDomain struct {
	achievementRepo repository.AchievementRepository
	userRepo        repository.UserRepository
}

func NewAchievementDomain(
	achievementRepo repository.AchievementRepository,
	userRepo repository.UserRepository,
) *achievementDomain {
	return &achievementDomain{
		achievementRepo: achievementRepo,
		userRepo:        userRepo,
	}
}

func (d *achievementDomain) CreateAchievement(
	ctx context.Context, req *model.CreateAchievementRequest,
) (*model.CreateAchievementResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	if user.Role != entity.AdminRole && user.Role != entity.SuperAdminRole {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	// Reject malformed criteria at write time so the evaluator never sees one.
	criteria := entity.Map(req.Criteria)
	if _, err := progress.ParseCriteria(criteria); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid criteria: %v", err)
	}

	achievement := &entity.Achievement{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Criteria:    criteria,
	}

	if err := d.achievementRepo.Create(ctx, achievement); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorx.New(errorx.AlreadyExists, "The achievement name already exists")
		}

		xcontext.Logger(ctx).Errorf("Cannot create achievement: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateAchievementResponse{ID: achievement.ID}, nil
}

func (d *achievementDomain) GetAchievements(
	ctx context.Context, req *model.GetAchievementsRequest,
) (*model.GetAchievementsResponse, error) {
	achievements, err := d.achievementRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get achievements: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetAchievementsResponse{}
	for i := range achievements {
		resp.Achievements = append(resp.Achievements, model.Achievement{
			ID:          achievements[i].ID,
			Name:        achievements[i].Name,
			Description: achievements[i].Description,
			Icon:        achievements[i].Icon,
		})
	}

	return resp, nil
}

func (d *achievementDomain) GetMyAchievements(
	ctx context.Context, req *model.GetMyAchievementsRequest,
) (*model.GetMyAchievementsResponse, error) {
	uas, err := d.achievementRepo.GetByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user achievements: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMyAchievementsResponse{Achievements: convertUserAchievements(uas)}, nil
}
