package model

type Room struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

type CreateRoomRequest struct {
	Name  string `json:"name"`
	Theme string `json:"theme"`
}

type CreateRoomResponse struct {
	ID           string            `json:"id"`
	Achievements []UserAchievement `json:"achievements"`
}

type GetMyRoomsRequest struct{}

type GetMyRoomsResponse struct {
	Rooms []Room `json:"rooms"`
}

type GiveSupportRequest struct {
	RecipientID string `json:"recipient_id"`
	Kind        string `json:"kind"`
}

type GiveSupportResponse struct {
	Achievements []UserAchievement `json:"achievements"`
}
