package model

type Friendship struct {
	ID          string `json:"id"`
	RequesterID string `json:"requester_id"`
	AddresseeID string `json:"addressee_id"`
	Status      string `json:"status"`
}

type RequestFriendshipRequest struct {
	UserID string `json:"user_id"`
}

type RequestFriendshipResponse struct {
	Friendship Friendship `json:"friendship"`
}

type RespondFriendshipRequest struct {
	FriendshipID string `json:"friendship_id"`
	Accept       bool   `json:"accept"`
}

type RespondFriendshipResponse struct {
	Friendship   Friendship        `json:"friendship"`
	Achievements []UserAchievement `json:"achievements"`
}

type BlockFriendshipRequest struct {
	UserID string `json:"user_id"`
}

type BlockFriendshipResponse struct{}

type Friend struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type GetMyFriendsRequest struct{}

type GetMyFriendsResponse struct {
	Friends []Friend `json:"friends"`
}

type AddBestFriendRequest struct {
	FriendID string `json:"friend_id"`
}

type AddBestFriendResponse struct{}

type RemoveBestFriendRequest struct {
	FriendID string `json:"friend_id"`
}

type RemoveBestFriendResponse struct{}

type GetMyBestFriendsRequest struct{}

type GetMyBestFriendsResponse struct {
	BestFriends []Friend `json:"best_friends"`
}
