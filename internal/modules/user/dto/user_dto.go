package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	FullName        *string `json:"full_name" binding:"omitempty,max=100"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Username        *string `json:"username" binding:"omitempty,min=3,max=50"`
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password"`
	Bio             *string `json:"bio"`
	Link            *string `json:"link"`
	ProfileImg      *string `json:"profile_img"`
	CoverImg        *string `json:"cover_img"`
}

type ToggleFollowResponse struct {
	Following bool   `json:"following"`
	Message   string `json:"message"`
}

// ProfileResponse is the projection served for any user-shaped payload.
// Credentials never appear here.
type ProfileResponse struct {
	ID         uuid.UUID   `json:"id"`
	Username   string      `json:"username"`
	FullName   string      `json:"full_name"`
	Email      string      `json:"email"`
	Bio        string      `json:"bio"`
	Link       string      `json:"link"`
	ProfileImg string      `json:"profile_img"`
	CoverImg   string      `json:"cover_img"`
	Followers  []uuid.UUID `json:"followers"`
	Following  []uuid.UUID `json:"following"`
	CreatedAt  time.Time   `json:"created_at"`
}
