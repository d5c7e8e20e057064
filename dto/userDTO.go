package dto

import (
	"time"

	"taskhub/model"
)

// UserResponse is the public profile. It never carries the password hash.
type UserResponse struct {
	UserID    string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// UserSummary is embedded in task responses for creator and assignee.
type UserSummary struct {
	UserID string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func NewUserResponse(user *model.User) UserResponse {
	resp := UserResponse{
		UserID: user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
	if !user.CreatedAt.IsZero() {
		resp.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// NewUserSummary returns nil for a user that no longer exists.
func NewUserSummary(user *model.User) *UserSummary {
	if user == nil {
		return nil
	}
	return &UserSummary{
		UserID: user.UserID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	}
}
