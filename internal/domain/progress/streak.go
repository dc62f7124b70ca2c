package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/dateutil"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"github.com/steadyhabits/backend/pkg/xredis"
	"gorm.io/gorm"
)

// StreakCalculator derives the current consecutive-completion streak of a
// (user, habit) pair from the log. The log is the only source of truth; the
// redis cache is a pure read-through optimization invalidated on every log
// write, so a stale value can never outlive the next decision point.
type StreakCalculator struct {
	habitLogRepo repository.HabitLogRepository

	// cache may be nil, in which case every call recomputes from the log.
	cache xredis.Client
}

func NewStreakCalculator(habitLogRepo repository.HabitLogRepository, cache xredis.Client) *StreakCalculator {
	return &StreakCalculator{habitLogRepo: habitLogRepo, cache: cache}
}

// ComputeStreak walks backward one calendar day at a time from asOf, counting
// consecutive days with a completed entry. A day with no entry breaks the
// streak exactly like a day logged as not completed. The walk is bounded by
// the habit's start date.
//
// If asOf itself has no entry at all, the walk is anchored at the most recent
// completed day before it, so a streak is not reported as zero just because
// today has not been logged yet. A day explicitly logged as not completed is
// a relapse and yields zero.
func (c *StreakCalculator) ComputeStreak(
	ctx context.Context, userID string, habit *entity.Habit, asOf time.Time,
) (int, error) {
	asOf = dateutil.Day(asOf)
	start := dateutil.Day(habit.StartDate)
	if asOf.Before(start) {
		return 0, nil
	}

	if streak, ok := c.fromCache(ctx, userID, habit.ID, asOf); ok {
		return streak, nil
	}

	asOfEntry, err := c.habitLogRepo.Get(ctx, habit.ID, asOf)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	if asOfEntry != nil && !asOfEntry.Completed {
		return 0, nil
	}

	completed, err := c.habitLogRepo.GetCompletedInRange(ctx, habit.ID, start, asOf)
	if err != nil {
		return 0, err
	}

	if len(completed) == 0 {
		return 0, nil
	}

	// Anchor at asOf when it is completed, otherwise at the most recent
	// completed day before it.
	anchor := dateutil.Day(completed[0].Day)

	streak := 0
	for i, entry := range completed {
		if !dateutil.Day(entry.Day).Equal(anchor.AddDate(0, 0, -i)) {
			break
		}

		streak++
	}

	c.toCache(ctx, userID, habit.ID, asOf, streak)
	return streak, nil
}

// LatestLoggedDay returns the most recent day with any log entry of the
// habit, or the zero time when nothing has been logged yet.
func (c *StreakCalculator) LatestLoggedDay(ctx context.Context, habitID string) (time.Time, error) {
	entry, err := c.habitLogRepo.GetLatest(ctx, habitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}

		return time.Time{}, err
	}

	return dateutil.Day(entry.Day), nil
}

// InvalidateCache must be called on every write to the (user, habit) log.
func (c *StreakCalculator) InvalidateCache(ctx context.Context, userID, habitID string) {
	if c.cache == nil {
		return
	}

	if err := c.cache.Del(ctx, streakKey(userID, habitID)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate streak cache: %v", err)
	}
}

// cachedStreak pins the cached value to the day it was computed for, so a
// lookup with a different reference date recomputes instead of serving the
// wrong day.
type cachedStreak struct {
	Day    string `json:"day"`
	Streak int    `json:"streak"`
}

func (c *StreakCalculator) fromCache(ctx context.Context, userID, habitID string, asOf time.Time) (int, bool) {
	if c.cache == nil {
		return 0, false
	}

	var cached cachedStreak
	err := c.cache.GetObj(ctx, streakKey(userID, habitID), &cached)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			xcontext.Logger(ctx).Warnf("Cannot read streak cache: %v", err)
		}

		return 0, false
	}

	if cached.Day != dateutil.FormatDay(asOf) {
		return 0, false
	}

	return cached.Streak, true
}

func (c *StreakCalculator) toCache(ctx context.Context, userID, habitID string, asOf time.Time, streak int) {
	if c.cache == nil {
		return
	}

	// A value computed inside an open transaction may derive from writes
	// that roll back; it must never outlive them in the cache.
	if xcontext.HasDBTransaction(ctx) {
		return
	}

	cached := cachedStreak{Day: dateutil.FormatDay(asOf), Streak: streak}
	ttl := xcontext.Configs(ctx).Progress.StreakCacheTTL
	if err := c.cache.SetObj(ctx, streakKey(userID, habitID), cached, ttl); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot write streak cache: %v", err)
	}
}

func streakKey(userID, habitID string) string {
	return fmt.Sprintf("streak:%s:%s", userID, habitID)
}
