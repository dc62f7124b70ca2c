package model

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type RegisterRequest struct {
	Name string `json:"name"`
}

type RegisterResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

type GetMeRequest struct{}

type GetMeResponse struct {
	User User `json:"user"`
}
