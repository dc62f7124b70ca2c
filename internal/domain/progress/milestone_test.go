package progress

import (
	"testing"
	"time"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/stretchr/testify/require"
)

func Test_DetectNewMilestones_Crossing(t *testing.T) {
	now := time.Now()
	thresholds := StandardThresholds()

	// 0 -> 1 crosses only the one-day bucket.
	events := DetectNewMilestones("user1", "habit1", 0, 1, thresholds, nil, now)
	require.Len(t, events, 1)
	require.Equal(t, entity.MilestoneDays, events[0].MilestoneType)
	require.Equal(t, 1, events[0].Value)

	// 6 -> 7 crosses only the one-week bucket.
	events = DetectNewMilestones("user1", "habit1", 6, 7, thresholds, nil, now)
	require.Len(t, events, 1)
	require.Equal(t, entity.MilestoneWeeks, events[0].MilestoneType)
	require.Equal(t, 7, events[0].Value)

	// 0 -> 30 crosses all three at once.
	events = DetectNewMilestones("user1", "habit1", 0, 30, thresholds, nil, now)
	require.Len(t, events, 3)

	// 7 -> 7 crosses nothing.
	events = DetectNewMilestones("user1", "habit1", 7, 7, thresholds, nil, now)
	require.Empty(t, events)

	// 7 -> 3 (relapse) crosses nothing.
	events = DetectNewMilestones("user1", "habit1", 7, 3, thresholds, nil, now)
	require.Empty(t, events)
}

func Test_DetectNewMilestones_ReplayAfterRelapse(t *testing.T) {
	now := time.Now()
	thresholds := StandardThresholds()

	existing := []entity.MilestoneEvent{
		{UserID: "user1", HabitID: "habit1", MilestoneType: entity.MilestoneDays, Value: 1},
		{UserID: "user1", HabitID: "habit1", MilestoneType: entity.MilestoneWeeks, Value: 7},
	}

	// The streak was rebuilt to 7 after a relapse; both buckets were already
	// achieved, so nothing fires again.
	events := DetectNewMilestones("user1", "habit1", 6, 7, thresholds, existing, now)
	require.Empty(t, events)

	// Crossing a bucket never achieved before still fires.
	events = DetectNewMilestones("user1", "habit1", 29, 30, thresholds, existing, now)
	require.Len(t, events, 1)
	require.Equal(t, entity.MilestoneMonths, events[0].MilestoneType)
}

func Test_ThresholdsForHabit(t *testing.T) {
	habit := &entity.Habit{
		CustomMilestones: entity.Array[int]{7, 10, -3, 100},
	}

	thresholds := ThresholdsForHabit(habit)

	// Standard buckets plus 10 and 100, sorted ascending; the colliding 7
	// and the invalid -3 are dropped.
	require.Equal(t, []Threshold{
		{Type: entity.MilestoneDays, Days: 1},
		{Type: entity.MilestoneWeeks, Days: 7},
		{Type: entity.MilestoneCustom, Days: 10},
		{Type: entity.MilestoneMonths, Days: 30},
		{Type: entity.MilestoneCustom, Days: 100},
	}, thresholds)
}
