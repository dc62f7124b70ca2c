package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/steadyhabits/backend/internal/domain/progress"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/dateutil"
	"github.com/steadyhabits/backend/pkg/enum"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type HabitDomain interface {
	CreateHabit(ctx context.Context, req *model.CreateHabitRequest) (*model.CreateHabitResponse, error)
	GetMyHabits(ctx context.Context, req *model.GetMyHabitsRequest) (*model.GetMyHabitsResponse, error)
	LogHabit(ctx context.Context, req *model.LogHabitRequest) (*model.LogHabitResponse, error)
	AmendHabitLog(ctx context.Context, req *model.AmendHabitLogRequest) (*model.AmendHabitLogResponse, error)
	GetStreak(ctx context.Context, req *model.GetStreakRequest) (*model.GetStreakResponse, error)
	GetMyMilestones(ctx context.Context, req *model.GetMyMilestonesRequest) (*model.GetMyMilestonesResponse, error)
}

type habitDomain struct {
	habitRepo     repository.HabitRepository
	habitLogRepo  repository.HabitLogRepository
	milestoneRepo repository.MilestoneRepository
	engine        *progress.Engine
}

func NewHabitDomain(
	habitRepo repository.HabitRepository,
	habitLogRepo repository.HabitLogRepository,
	milestoneRepo repository.MilestoneRepository,
	engine *progress.Engine,
) *habitDomain {
	return &habitDomain{
		habitRepo:     habitRepo,
		habitLogRepo:  habitLogRepo,
		milestoneRepo: milestoneRepo,
		engine:        engine,
	}
}

func (d *habitDomain) CreateHabit(
	ctx context.Context, req *model.CreateHabitRequest,
) (*model.CreateHabitResponse, error) {
	if req.Title == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty title")
	}

	startDate := dateutil.Day(time.Now())
	if req.StartDate != "" {
		var err error
		startDate, err = dateutil.ParseDay(req.StartDate)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid start date")
		}
	}

	for _, days := range req.CustomMilestones {
		if days <= 0 {
			return nil, errorx.New(errorx.BadRequest, "Custom milestones must be positive")
		}
	}

	habit := &entity.Habit{
		Base:             entity.Base{ID: uuid.NewString()},
		UserID:           xcontext.RequestUserID(ctx),
		Title:            req.Title,
		Description:      req.Description,
		StartDate:        startDate,
		IsActive:         true,
		CustomMilestones: entity.Array[int](req.CustomMilestones),
	}

	if err := d.habitRepo.Create(ctx, habit); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create habit: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateHabitResponse{ID: habit.ID}, nil
}

func (d *habitDomain) GetMyHabits(
	ctx context.Context, req *model.GetMyHabitsRequest,
) (*model.GetMyHabitsResponse, error) {
	habits, err := d.habitRepo.GetByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get habits: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetMyHabitsResponse{}
	for i := range habits {
		resp.Habits = append(resp.Habits, model.ConvertHabit(&habits[i]))
	}

	return resp, nil
}

func (d *habitDomain) LogHabit(
	ctx context.Context, req *model.LogHabitRequest,
) (*model.LogHabitResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	habit, day, err := d.validateLogTarget(ctx, userID, req.HabitID, req.Day)
	if err != nil {
		return nil, err
	}

	entry := &entity.HabitLogEntry{
		Base:      entity.Base{ID: uuid.NewString()},
		HabitID:   habit.ID,
		UserID:    userID,
		Day:       day,
		Completed: req.Completed,
	}

	if err := applyLogDetails(entry, req.MoodBefore, req.MoodAfter, req.Difficulty); err != nil {
		return nil, err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if _, err := d.habitLogRepo.Get(ctx, habit.ID, day); err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "This day is already logged")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check existing log entry: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.habitLogRepo.Create(ctx, entry); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create log entry: %v", err)
		return nil, errorx.Unknown
	}

	result, err := d.engine.OnHabitLogWritten(ctx, userID, habit, day)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot run progress engine: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.engine.Notify(ctx, result.Milestones, result.Achievements)
	return &model.LogHabitResponse{
		Streak:       result.Streak,
		Milestones:   convertMilestones(result.Milestones),
		Achievements: convertUserAchievements(result.Achievements),
	}, nil
}

func (d *habitDomain) AmendHabitLog(
	ctx context.Context, req *model.AmendHabitLogRequest,
) (*model.AmendHabitLogResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	habit, day, err := d.validateLogTarget(ctx, userID, req.HabitID, req.Day)
	if err != nil {
		return nil, err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	entry, err := d.habitLogRepo.Get(ctx, habit.ID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found log entry")
		}

		xcontext.Logger(ctx).Errorf("Cannot get log entry: %v", err)
		return nil, errorx.Unknown
	}

	// Entries are immutable except for amendment by their owner.
	if entry.UserID != userID {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	entry.Completed = req.Completed
	if err := applyLogDetails(entry, req.MoodBefore, req.MoodAfter, req.Difficulty); err != nil {
		return nil, err
	}

	if err := d.habitLogRepo.Update(ctx, entry); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot amend log entry: %v", err)
		return nil, errorx.Unknown
	}

	result, err := d.engine.OnHabitLogWritten(ctx, userID, habit, day)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot run progress engine: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	d.engine.Notify(ctx, result.Milestones, result.Achievements)
	return &model.AmendHabitLogResponse{
		Streak:       result.Streak,
		Milestones:   convertMilestones(result.Milestones),
		Achievements: convertUserAchievements(result.Achievements),
	}, nil
}

func (d *habitDomain) GetStreak(
	ctx context.Context, req *model.GetStreakRequest,
) (*model.GetStreakResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	asOf := dateutil.Day(time.Now())
	if req.AsOf != "" {
		var err error
		asOf, err = dateutil.ParseDay(req.AsOf)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid as-of date")
		}
	}

	habit, err := d.getOwnedHabit(ctx, userID, req.HabitID)
	if err != nil {
		return nil, err
	}

	streak, err := d.engine.Streak().ComputeStreak(ctx, userID, habit, asOf)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot compute streak: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetStreakResponse{Streak: streak}, nil
}

func (d *habitDomain) GetMyMilestones(
	ctx context.Context, req *model.GetMyMilestonesRequest,
) (*model.GetMyMilestonesResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	var events []entity.MilestoneEvent
	var err error
	if req.HabitID != "" {
		events, err = d.milestoneRepo.GetByUserHabit(ctx, userID, req.HabitID)
	} else {
		events, err = d.milestoneRepo.GetByUserID(ctx, userID)
	}

	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get milestones: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMyMilestonesResponse{Milestones: convertMilestones(events)}, nil
}

func (d *habitDomain) validateLogTarget(
	ctx context.Context, userID, habitID, dayStr string,
) (*entity.Habit, time.Time, error) {
	habit, err := d.getOwnedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, time.Time{}, err
	}

	day, err := dateutil.ParseDay(dayStr)
	if err != nil {
		return nil, time.Time{}, errorx.New(errorx.BadRequest, "Invalid day")
	}

	if day.Before(dateutil.Day(habit.StartDate)) {
		return nil, time.Time{}, errorx.New(errorx.BadRequest, "Cannot log before the habit started")
	}

	return habit, day, nil
}

func (d *habitDomain) getOwnedHabit(ctx context.Context, userID, habitID string) (*entity.Habit, error) {
	habit, err := d.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found habit")
		}

		xcontext.Logger(ctx).Errorf("Cannot get habit: %v", err)
		return nil, errorx.Unknown
	}

	if habit.UserID != userID {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return habit, nil
}

func applyLogDetails(entry *entity.HabitLogEntry, moodBefore, moodAfter string, difficulty int) error {
	if moodBefore != "" {
		if _, err := enum.ToEnum[entity.Mood](moodBefore); err != nil {
			return errorx.New(errorx.BadRequest, "Invalid mood")
		}

		entry.MoodBefore = sql.NullString{Valid: true, String: moodBefore}
	}

	if moodAfter != "" {
		if _, err := enum.ToEnum[entity.Mood](moodAfter); err != nil {
			return errorx.New(errorx.BadRequest, "Invalid mood")
		}

		entry.MoodAfter = sql.NullString{Valid: true, String: moodAfter}
	}

	if difficulty != 0 {
		if difficulty < 1 || difficulty > 10 {
			return errorx.New(errorx.BadRequest, "Difficulty must be between 1 and 10")
		}

		entry.Difficulty = sql.NullInt32{Valid: true, Int32: int32(difficulty)}
	}

	return nil
}

func convertMilestones(events []entity.MilestoneEvent) []model.MilestoneEvent {
	var result []model.MilestoneEvent
	for i := range events {
		result = append(result, model.ConvertMilestoneEvent(&events[i]))
	}

	return result
}

func convertUserAchievements(uas []entity.UserAchievement) []model.UserAchievement {
	var result []model.UserAchievement
	for i := range uas {
		result = append(result, model.ConvertUserAchievement(&uas[i]))
	}

	return result
}
