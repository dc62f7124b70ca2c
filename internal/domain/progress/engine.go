package progress

import (
	"context"
	"encoding/json"
	"time"

	"github.com/steadyhabits/backend/internal/common"
	"github.com/steadyhabits/backend/internal/domain/notification/event"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/dateutil"
	"github.com/steadyhabits/backend/pkg/pubsub"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

// Engine composes the streak calculator, milestone detector and achievement
// evaluator in response to a single triggering event. It is a synchronous
// library: all methods run on the caller's goroutine inside the caller's
// transaction, and every derived write of one trigger commits or rolls back
// together with it.
type Engine struct {
	milestoneRepo     repository.MilestoneRepository
	achievementRepo   repository.AchievementRepository
	friendshipRepo    repository.FriendshipRepository
	roomRepo          repository.RoomRepository
	supportActionRepo repository.SupportActionRepository

	streak    *StreakCalculator
	publisher pubsub.Publisher
}

func NewEngine(
	milestoneRepo repository.MilestoneRepository,
	achievementRepo repository.AchievementRepository,
	friendshipRepo repository.FriendshipRepository,
	roomRepo repository.RoomRepository,
	supportActionRepo repository.SupportActionRepository,
	streak *StreakCalculator,
	publisher pubsub.Publisher,
) *Engine {
	return &Engine{
		milestoneRepo:     milestoneRepo,
		achievementRepo:   achievementRepo,
		friendshipRepo:    friendshipRepo,
		roomRepo:          roomRepo,
		supportActionRepo: supportActionRepo,
		streak:            streak,
		publisher:         publisher,
	}
}

// Result is the set of newly-created facts of one triggering event, for the
// caller to return to the client and hand to the notification collaborator.
type Result struct {
	Streak       int
	Milestones   []entity.MilestoneEvent
	Achievements []entity.UserAchievement
}

func (e *Engine) Streak() *StreakCalculator {
	return e.streak
}

// OnHabitLogWritten runs after a log entry for the given day has been
// written or amended: recompute the streak, detect newly crossed milestones,
// then evaluate achievements against the refreshed user state. The previous
// streak is recomputed as of the day before the write, never taken from a
// stale cached maximum, so detection behaves correctly across relapses.
func (e *Engine) OnHabitLogWritten(
	ctx context.Context, userID string, habit *entity.Habit, day time.Time,
) (*Result, error) {
	e.streak.InvalidateCache(ctx, userID, habit.ID)

	previousStreak, err := e.streak.ComputeStreak(ctx, userID, habit, dateutil.PrevDay(day))
	if err != nil {
		return nil, err
	}

	// The new streak is measured at the habit's latest logged day, not at
	// the written day: backfilling a gap can extend a streak that stands on
	// entries logged after it, and the crossed thresholds must fire now or
	// they never will.
	asOf, err := e.streak.LatestLoggedDay(ctx, habit.ID)
	if err != nil {
		return nil, err
	}
	if asOf.Before(day) {
		asOf = day
	}

	newStreak, err := e.streak.ComputeStreak(ctx, userID, habit, asOf)
	if err != nil {
		return nil, err
	}

	existing, err := e.milestoneRepo.GetByUserHabit(ctx, userID, habit.ID)
	if err != nil {
		return nil, err
	}

	detected := DetectNewMilestones(
		userID, habit.ID,
		previousStreak, newStreak,
		ThresholdsForHabit(habit),
		existing,
		time.Now(),
	)

	var milestones []entity.MilestoneEvent
	for i := range detected {
		// The unique index makes this a no-op when a concurrent reprocessing
		// of the same write got there first.
		created, err := e.milestoneRepo.Create(ctx, &detected[i])
		if err != nil {
			return nil, err
		}

		if created {
			milestones = append(milestones, detected[i])
			common.PromCounters[common.MilestoneDetectedTotal].
				WithLabelValues(string(detected[i].MilestoneType)).Inc()
		}
	}

	state, err := e.AssembleUserState(ctx, userID, newStreak)
	if err != nil {
		return nil, err
	}

	achievements, err := e.EvaluateAchievements(ctx, userID, state)
	if err != nil {
		return nil, err
	}

	return &Result{
		Streak:       newStreak,
		Milestones:   milestones,
		Achievements: achievements,
	}, nil
}

// OnSocialStateChanged runs after a friend-graph mutation, a room creation
// or a support action, and evaluates the social families of achievements.
func (e *Engine) OnSocialStateChanged(ctx context.Context, userID string) ([]entity.UserAchievement, error) {
	state, err := e.AssembleUserState(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	return e.EvaluateAchievements(ctx, userID, state)
}

// AssembleUserState gathers the aggregate counts achievements are evaluated
// against. The streak, if relevant to the trigger, is supplied by the caller;
// everything else comes from the collaborating repositories.
func (e *Engine) AssembleUserState(ctx context.Context, userID string, maxStreakDays int) (UserState, error) {
	friends, err := e.friendshipRepo.CountAcceptedByUserID(ctx, userID)
	if err != nil {
		return UserState{}, err
	}

	rooms, err := e.roomRepo.CountByUserID(ctx, userID)
	if err != nil {
		return UserState{}, err
	}

	support, err := e.supportActionRepo.CountByUserID(ctx, userID)
	if err != nil {
		return UserState{}, err
	}

	return UserState{
		MaxStreakDays: maxStreakDays,
		Friends:       int(friends),
		Rooms:         int(rooms),
		SupportGiven:  int(support),
	}, nil
}

// EvaluateAchievements walks the catalog and unlocks every achievement whose
// criteria the state satisfies and the user does not hold yet. Re-evaluation
// is a no-op thanks to the unlock row's uniqueness.
func (e *Engine) EvaluateAchievements(
	ctx context.Context, userID string, state UserState,
) ([]entity.UserAchievement, error) {
	catalog, err := e.achievementRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var unlocked []entity.UserAchievement
	for _, achievement := range catalog {
		criteria, err := ParseCriteria(achievement.Criteria)
		if err != nil {
			// The catalog is validated when rows are created; a malformed
			// document here means an out-of-band write. Skip it rather than
			// failing every evaluation.
			xcontext.Logger(ctx).Errorf("Malformed criteria of achievement %s: %v", achievement.ID, err)
			continue
		}

		if !criteria.Evaluate(state) {
			continue
		}

		ua := entity.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
			AchievedAt:    time.Now(),
		}

		created, err := e.achievementRepo.CreateUserAchievement(ctx, &ua)
		if err != nil {
			return nil, err
		}

		if created {
			ua.Achievement = achievement
			unlocked = append(unlocked, ua)
		}
	}

	return unlocked, nil
}

// Notify publishes the new facts to the notification collaborator, each one
// keyed and addressed to the user it belongs to. It must be called after the
// triggering transaction commits. Publish failures are logged, not returned:
// delivery guarantees belong to the collaborator, the engine only guarantees
// it never publishes the same fact twice.
func (e *Engine) Notify(
	ctx context.Context,
	milestones []entity.MilestoneEvent,
	achievements []entity.UserAchievement,
) {
	if e.publisher == nil {
		return
	}

	topic := xcontext.Configs(ctx).Kafka.NotificationTopic

	for i := range milestones {
		if !e.publish(ctx, topic, milestones[i].UserID, event.NewMilestoneAchievedEvent(&milestones[i])) {
			continue
		}

		err := e.milestoneRepo.MarkNotified(ctx, milestones[i].ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mark milestone %s as notified: %v", milestones[i].ID, err)
		}
	}

	for i := range achievements {
		if !e.publish(ctx, topic, achievements[i].UserID, event.NewAchievementUnlockedEvent(&achievements[i])) {
			continue
		}

		err := e.achievementRepo.MarkUserAchievementNotified(
			ctx, achievements[i].UserID, achievements[i].AchievementID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mark achievement %s as notified: %v",
				achievements[i].AchievementID, err)
		}
	}
}

func (e *Engine) publish(ctx context.Context, topic, userID string, ev event.Event) bool {
	b, err := json.Marshal(event.New(ev, event.Metadata{To: userID}))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal %s event: %v", ev.Op(), err)
		return false
	}

	err = e.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(userID), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish %s event: %v", ev.Op(), err)
		return false
	}

	return true
}
