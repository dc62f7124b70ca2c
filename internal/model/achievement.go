package model

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type UserAchievement struct {
	AchievementID string `json:"achievement_id"`
	Name          string `json:"name"`
	AchievedAt    string `json:"achieved_at"`
}

type CreateAchievementRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Criteria    map[string]any `json:"criteria"`
}

type CreateAchievementResponse struct {
	ID string `json:"id"`
}

type GetAchievementsRequest struct{}

type GetAchievementsResponse struct {
	Achievements []Achievement `json:"achievements"`
}

type GetMyAchievementsRequest struct{}

type GetMyAchievementsResponse struct {
	Achievements []UserAchievement `json:"achievements"`
}
