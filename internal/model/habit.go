package model

type Habit struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	StartDate        string `json:"start_date"`
	IsActive         bool   `json:"is_active"`
	CustomMilestones []int  `json:"custom_milestones,omitempty"`
}

type CreateHabitRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	StartDate        string `json:"start_date"`
	CustomMilestones []int  `json:"custom_milestones"`
}

type CreateHabitResponse struct {
	ID string `json:"id"`
}

type GetMyHabitsRequest struct{}

type GetMyHabitsResponse struct {
	Habits []Habit `json:"habits"`
}

type LogHabitRequest struct {
	HabitID    string `json:"habit_id"`
	Day        string `json:"day"`
	Completed  bool   `json:"completed"`
	MoodBefore string `json:"mood_before"`
	MoodAfter  string `json:"mood_after"`
	Difficulty int    `json:"difficulty"`
}

type LogHabitResponse struct {
	Streak       int               `json:"streak"`
	Milestones   []MilestoneEvent  `json:"milestones"`
	Achievements []UserAchievement `json:"achievements"`
}

type AmendHabitLogRequest struct {
	HabitID    string `json:"habit_id"`
	Day        string `json:"day"`
	Completed  bool   `json:"completed"`
	MoodBefore string `json:"mood_before"`
	MoodAfter  string `json:"mood_after"`
	Difficulty int    `json:"difficulty"`
}

type AmendHabitLogResponse struct {
	Streak       int               `json:"streak"`
	Milestones   []MilestoneEvent  `json:"milestones"`
	Achievements []UserAchievement `json:"achievements"`
}

type GetStreakRequest struct {
	HabitID string `json:"habit_id"`
	AsOf    string `json:"as_of"`
}

type GetStreakResponse struct {
	Streak int `json:"streak"`
}

type MilestoneEvent struct {
	HabitID       string `json:"habit_id"`
	MilestoneType string `json:"milestone_type"`
	Value         int    `json:"value"`
	AchievedAt    string `json:"achieved_at"`
}

type GetMyMilestonesRequest struct {
	HabitID string `json:"habit_id"`
}

type GetMyMilestonesResponse struct {
	Milestones []MilestoneEvent `json:"milestones"`
}
