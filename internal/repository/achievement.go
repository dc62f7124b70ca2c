package repository

import (
	"context"

	"github.com/puzpuzpuz/xsync"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

const achievementCatalogKey = "catalog"

type AchievementRepository interface {
	Create(ctx context.Context, achievement *entity.Achievement) error

	// GetAll returns the full achievement catalog. The catalog is read-only
	// at runtime, so it is served from an in-process cache after first load.
	GetAll(ctx context.Context) ([]entity.Achievement, error)

	GetByID(ctx context.Context, id string) (*entity.Achievement, error)

	// CreateUserAchievement inserts an unlock row unless the user already has
	// one for this achievement. It reports whether a row was inserted.
	CreateUserAchievement(ctx context.Context, ua *entity.UserAchievement) (bool, error)

	GetByUserID(ctx context.Context, userID string) ([]entity.UserAchievement, error)

	// MarkUserAchievementNotified records that the unlock reached the
	// notification topic.
	MarkUserAchievementNotified(ctx context.Context, userID, achievementID string) error
}

type achievementRepository struct {
	catalogCache *xsync.MapOf[string, []entity.Achievement]
}

func NewAchievementRepository() *achievementRepository {
	return &achievementRepository{
		catalogCache: xsync.NewMapOf[[]entity.Achievement](),
	}
}

func (r *achievementRepository) Create(ctx context.Context, achievement *entity.Achievement) error {
	if err := xcontext.DB(ctx).Create(achievement).Error; err != nil {
		return err
	}

	r.catalogCache.Delete(achievementCatalogKey)
	return nil
}

func (r *achievementRepository) GetAll(ctx context.Context) ([]entity.Achievement, error) {
	if cached, ok := r.catalogCache.Load(achievementCatalogKey); ok {
		return cached, nil
	}

	var result []entity.Achievement
	if err := xcontext.DB(ctx).Find(&result).Error; err != nil {
		return nil, err
	}

	r.catalogCache.Store(achievementCatalogKey, result)
	return result, nil
}

func (r *achievementRepository) GetByID(ctx context.Context, id string) (*entity.Achievement, error) {
	var result entity.Achievement
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *achievementRepository) CreateUserAchievement(
	ctx context.Context, ua *entity.UserAchievement,
) (bool, error) {
	tx := xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "achievement_id"},
			},
			DoNothing: true,
		}).Create(ua)

	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *achievementRepository) MarkUserAchievementNotified(
	ctx context.Context, userID, achievementID string,
) error {
	return xcontext.DB(ctx).
		Model(&entity.UserAchievement{}).
		Where("user_id=? AND achievement_id=?", userID, achievementID).
		Update("was_notified", true).Error
}

func (r *achievementRepository) GetByUserID(
	ctx context.Context, userID string,
) ([]entity.UserAchievement, error) {
	var result []entity.UserAchievement
	err := xcontext.DB(ctx).
		Preload("Achievement").
		Where("user_id=?", userID).
		Order("achieved_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
