package domain

import (
	"testing"

	"github.com/steadyhabits/backend/internal/domain/progress"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/dateutil"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/testutil"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestEngine(publisher *testutil.MockPublisher) *progress.Engine {
	return progress.NewEngine(
		repository.NewMilestoneRepository(),
		repository.NewAchievementRepository(),
		repository.NewFriendshipRepository(),
		repository.NewRoomRepository(),
		repository.NewSupportActionRepository(),
		progress.NewStreakCalculator(repository.NewHabitLogRepository(), nil),
		publisher,
	)
}

func newTestHabitDomain(publisher *testutil.MockPublisher) HabitDomain {
	return NewHabitDomain(
		repository.NewHabitRepository(),
		repository.NewHabitLogRepository(),
		repository.NewMilestoneRepository(),
		newTestEngine(publisher),
	)
}

func Test_habitDomain_LogHabit_RelapseScenario(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	publisher := &testutil.MockPublisher{}
	habitDomain := newTestHabitDomain(publisher)

	base := testutil.Habit1StartDate
	logDay := func(offset int, completed bool) *model.LogHabitResponse {
		resp, err := habitDomain.LogHabit(ctx, &model.LogHabitRequest{
			HabitID:   testutil.Habit1,
			Day:       dateutil.FormatDay(base.AddDate(0, 0, offset)),
			Completed: completed,
		})
		require.NoError(t, err)
		return resp
	}

	// Day one fires the one-day milestone.
	resp := logDay(0, true)
	require.Equal(t, 1, resp.Streak)
	require.Len(t, resp.Milestones, 1)
	require.Equal(t, string(entity.MilestoneDays), resp.Milestones[0].MilestoneType)

	for i := 1; i < 6; i++ {
		resp = logDay(i, true)
		require.Equal(t, i+1, resp.Streak)
		require.Empty(t, resp.Milestones)
	}

	// Day seven fires the one-week milestone and unlocks One Week Strong.
	resp = logDay(6, true)
	require.Equal(t, 7, resp.Streak)
	require.Len(t, resp.Milestones, 1)
	require.Equal(t, string(entity.MilestoneWeeks), resp.Milestones[0].MilestoneType)
	require.Len(t, resp.Achievements, 1)
	require.Equal(t, testutil.AchievementFirstWeek, resp.Achievements[0].AchievementID)

	// Relapse on day eight.
	resp = logDay(7, false)
	require.Equal(t, 0, resp.Streak)
	require.Empty(t, resp.Milestones)
	require.Empty(t, resp.Achievements)

	// The streak rebuilds through day fifteen, but no milestone and no
	// achievement fires a second time.
	for i := 8; i < 15; i++ {
		resp = logDay(i, true)
		require.Equal(t, i-7, resp.Streak)
		require.Empty(t, resp.Milestones, "day offset %d", i)
		require.Empty(t, resp.Achievements, "day offset %d", i)
	}

	// One event per milestone and one per achievement went out, regardless
	// of how many times the thresholds were re-approached.
	milestones, err := repository.NewMilestoneRepository().GetByUserHabit(ctx, testutil.User1, testutil.Habit1)
	require.NoError(t, err)
	require.Len(t, milestones, 2)
	require.Len(t, publisher.Published, 3)

	for _, milestone := range milestones {
		require.True(t, milestone.WasNotified)
	}
}

func Test_habitDomain_LogHabit_DuplicateDay(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	habitDomain := newTestHabitDomain(&testutil.MockPublisher{})

	req := &model.LogHabitRequest{
		HabitID:   testutil.Habit1,
		Day:       dateutil.FormatDay(testutil.Habit1StartDate),
		Completed: true,
	}

	_, err := habitDomain.LogHabit(ctx, req)
	require.NoError(t, err)

	_, err = habitDomain.LogHabit(ctx, req)
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)
}

func Test_habitDomain_LogHabit_Validation(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	habitDomain := newTestHabitDomain(&testutil.MockPublisher{})

	var errx errorx.Error

	// Logging someone else's habit is denied.
	_, err := habitDomain.LogHabit(ctx, &model.LogHabitRequest{
		HabitID:   testutil.Habit2,
		Day:       dateutil.FormatDay(testutil.Habit1StartDate),
		Completed: true,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PermissionDenied, errx.Code)

	// Logging before the habit started is rejected.
	_, err = habitDomain.LogHabit(ctx, &model.LogHabitRequest{
		HabitID:   testutil.Habit1,
		Day:       dateutil.FormatDay(testutil.Habit1StartDate.AddDate(0, 0, -1)),
		Completed: true,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	// Difficulty is bounded.
	_, err = habitDomain.LogHabit(ctx, &model.LogHabitRequest{
		HabitID:    testutil.Habit1,
		Day:        dateutil.FormatDay(testutil.Habit1StartDate),
		Completed:  true,
		Difficulty: 11,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_habitDomain_AmendHabitLog(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	habitDomain := newTestHabitDomain(&testutil.MockPublisher{})
	base := testutil.Habit1StartDate

	for i := 0; i < 3; i++ {
		_, err := habitDomain.LogHabit(ctx, &model.LogHabitRequest{
			HabitID:   testutil.Habit1,
			Day:       dateutil.FormatDay(base.AddDate(0, 0, i)),
			Completed: true,
		})
		require.NoError(t, err)
	}

	// Amending the middle day to a relapse cuts the streak retroactively:
	// only the last day still counts.
	resp, err := habitDomain.AmendHabitLog(ctx, &model.AmendHabitLogRequest{
		HabitID:   testutil.Habit1,
		Day:       dateutil.FormatDay(base.AddDate(0, 0, 1)),
		Completed: false,
	})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Streak)

	streakResp, err := habitDomain.GetStreak(ctx, &model.GetStreakRequest{
		HabitID: testutil.Habit1,
		AsOf:    dateutil.FormatDay(base.AddDate(0, 0, 2)),
	})
	require.NoError(t, err)
	require.Equal(t, 1, streakResp.Streak)

	// Amending a day that was never logged is not found.
	_, err = habitDomain.AmendHabitLog(ctx, &model.AmendHabitLogRequest{
		HabitID:   testutil.Habit1,
		Day:       dateutil.FormatDay(base.AddDate(0, 0, 5)),
		Completed: true,
	})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)
}

func Test_habitDomain_AmendHabitLog_BackfillFiresMilestones(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	habitDomain := newTestHabitDomain(&testutil.MockPublisher{})
	base := testutil.Habit1StartDate

	// Seven days with a relapse in the middle: the one-week threshold is
	// never crossed.
	for i := 0; i < 7; i++ {
		_, err := habitDomain.LogHabit(ctx, &model.LogHabitRequest{
			HabitID:   testutil.Habit1,
			Day:       dateutil.FormatDay(base.AddDate(0, 0, i)),
			Completed: i != 3,
		})
		require.NoError(t, err)
	}

	// Amending the relapse day makes the seven days contiguous; the one-week
	// milestone the streak now stands on fires exactly once.
	resp, err := habitDomain.AmendHabitLog(ctx, &model.AmendHabitLogRequest{
		HabitID:   testutil.Habit1,
		Day:       dateutil.FormatDay(base.AddDate(0, 0, 3)),
		Completed: true,
	})
	require.NoError(t, err)
	require.Equal(t, 7, resp.Streak)
	require.Len(t, resp.Milestones, 1)
	require.Equal(t, string(entity.MilestoneWeeks), resp.Milestones[0].MilestoneType)
	require.Equal(t, 7, resp.Milestones[0].Value)

	// The next log extends the streak without re-emitting anything.
	logResp, err := habitDomain.LogHabit(ctx, &model.LogHabitRequest{
		HabitID:   testutil.Habit1,
		Day:       dateutil.FormatDay(base.AddDate(0, 0, 7)),
		Completed: true,
	})
	require.NoError(t, err)
	require.Equal(t, 8, logResp.Streak)
	require.Empty(t, logResp.Milestones)

	milestones, err := repository.NewMilestoneRepository().GetByUserHabit(ctx, testutil.User1, testutil.Habit1)
	require.NoError(t, err)
	require.Len(t, milestones, 2)
}

func Test_habitDomain_CreateHabit_CustomMilestones(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	publisher := &testutil.MockPublisher{}
	habitDomain := newTestHabitDomain(publisher)

	createResp, err := habitDomain.CreateHabit(ctx, &model.CreateHabitRequest{
		Title:            "Meditation",
		StartDate:        dateutil.FormatDay(testutil.Habit1StartDate),
		CustomMilestones: []int{3},
	})
	require.NoError(t, err)

	var lastResp *model.LogHabitResponse
	for i := 0; i < 3; i++ {
		lastResp, err = habitDomain.LogHabit(ctx, &model.LogHabitRequest{
			HabitID:   createResp.ID,
			Day:       dateutil.FormatDay(testutil.Habit1StartDate.AddDate(0, 0, i)),
			Completed: true,
		})
		require.NoError(t, err)
	}

	require.Equal(t, 3, lastResp.Streak)
	require.Len(t, lastResp.Milestones, 1)
	require.Equal(t, string(entity.MilestoneCustom), lastResp.Milestones[0].MilestoneType)
	require.Equal(t, 3, lastResp.Milestones[0].Value)
}

func Test_habitDomain_GetMyMilestones(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	habitDomain := newTestHabitDomain(&testutil.MockPublisher{})

	_, err := habitDomain.LogHabit(ctx, &model.LogHabitRequest{
		HabitID:   testutil.Habit1,
		Day:       dateutil.FormatDay(testutil.Habit1StartDate),
		Completed: true,
	})
	require.NoError(t, err)

	resp, err := habitDomain.GetMyMilestones(ctx, &model.GetMyMilestonesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Milestones, 1)

	// Scoped to another user, nothing shows up.
	resp, err = habitDomain.GetMyMilestones(
		xcontext.WithRequestUserID(ctx, testutil.User2), &model.GetMyMilestonesRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Milestones)
}
