package progress

import (
	"time"

	"github.com/google/uuid"
	"github.com/steadyhabits/backend/internal/entity"
	"golang.org/x/exp/slices"
)

// Threshold is a streak length, in days, at which a milestone fires. The
// standard buckets are one day, one week and one month; habits can configure
// extra custom thresholds.
type Threshold struct {
	Type entity.MilestoneType
	Days int
}

func StandardThresholds() []Threshold {
	return []Threshold{
		{Type: entity.MilestoneDays, Days: 1},
		{Type: entity.MilestoneWeeks, Days: 7},
		{Type: entity.MilestoneMonths, Days: 30},
	}
}

// ThresholdsForHabit returns the standard buckets plus the habit's custom
// thresholds. Custom thresholds colliding with a standard bucket are dropped;
// the standard bucket already covers them.
func ThresholdsForHabit(habit *entity.Habit) []Threshold {
	thresholds := StandardThresholds()
	standard := map[int]bool{}
	for _, t := range thresholds {
		standard[t.Days] = true
	}

	for _, days := range habit.CustomMilestones {
		if days <= 0 || standard[days] {
			continue
		}

		thresholds = append(thresholds, Threshold{Type: entity.MilestoneCustom, Days: days})
	}

	slices.SortFunc(thresholds, func(a, b Threshold) bool { return a.Days < b.Days })
	return thresholds
}

// DetectNewMilestones returns the milestone events newly crossed when a
// streak moves from previousStreak to newStreak. A threshold t fires iff
// previousStreak < t <= newStreak and no event for (type, t) exists yet, so
// replaying the same log write emits nothing new, and a streak rebuilt after
// a relapse re-emits nothing until it exceeds what was already achieved.
func DetectNewMilestones(
	userID, habitID string,
	previousStreak, newStreak int,
	thresholds []Threshold,
	existing []entity.MilestoneEvent,
	now time.Time,
) []entity.MilestoneEvent {
	achieved := map[entity.MilestoneType]map[int]bool{}
	for _, event := range existing {
		if achieved[event.MilestoneType] == nil {
			achieved[event.MilestoneType] = map[int]bool{}
		}

		achieved[event.MilestoneType][event.Value] = true
	}

	var events []entity.MilestoneEvent
	for _, t := range thresholds {
		if !(previousStreak < t.Days && t.Days <= newStreak) {
			continue
		}

		if achieved[t.Type][t.Days] {
			continue
		}

		events = append(events, entity.MilestoneEvent{
			Base:          entity.Base{ID: uuid.NewString()},
			UserID:        userID,
			HabitID:       habitID,
			MilestoneType: t.Type,
			Value:         t.Days,
			AchievedAt:    now,
		})
	}

	return events
}
