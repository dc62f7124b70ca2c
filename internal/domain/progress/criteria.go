package progress

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/enum"
)

// Criteria is the parsed form of an achievement's declarative criteria
// document. The tag set is closed; parsing rejects unknown tags so malformed
// catalog rows fail at load time, not at evaluation time.
type Criteria struct {
	Type  string `mapstructure:"type"`
	Value int    `mapstructure:"value"`

	// Key selects the counter a custom criteria compares against.
	Key string `mapstructure:"key"`

	parsedType entity.CriteriaType
}

func ParseCriteria(doc entity.Map) (Criteria, error) {
	var criteria Criteria
	if err := mapstructure.Decode(map[string]any(doc), &criteria); err != nil {
		return Criteria{}, fmt.Errorf("cannot decode criteria document: %w", err)
	}

	parsedType, err := enum.ToEnum[entity.CriteriaType](criteria.Type)
	if err != nil {
		return Criteria{}, fmt.Errorf("invalid criteria type: %w", err)
	}

	if criteria.Value <= 0 {
		return Criteria{}, fmt.Errorf("criteria value must be positive, got %d", criteria.Value)
	}

	if parsedType == entity.CriteriaCustom && criteria.Key == "" {
		return Criteria{}, fmt.Errorf("custom criteria requires a key")
	}

	criteria.parsedType = parsedType
	return criteria, nil
}

// UserState is the pre-aggregated state an achievement is evaluated against.
// The evaluator never re-scans history; callers assemble this from the
// collaborating repositories.
type UserState struct {
	MaxStreakDays int
	Friends       int
	Rooms         int
	SupportGiven  int
	Custom        map[string]int
}

// Evaluate reports whether the user state satisfies the criteria. Unlocking
// is monotonic; the caller only acts when no unlock row exists yet.
func (c Criteria) Evaluate(state UserState) bool {
	switch c.parsedType {
	case entity.CriteriaDays:
		return state.MaxStreakDays >= c.Value
	case entity.CriteriaFriends:
		return state.Friends >= c.Value
	case entity.CriteriaRooms:
		return state.Rooms >= c.Value
	case entity.CriteriaSupportGiven:
		return state.SupportGiven >= c.Value
	case entity.CriteriaCustom:
		return state.Custom[c.Key] >= c.Value
	default:
		return false
	}
}
