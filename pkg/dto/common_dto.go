package dto

import (
	"github.com/google/uuid"

	"santara.dev/chirpnet/internal/model"
)

// AuthorResponse is the public projection of a user embedded in posts,
// comments and notifications. It deliberately has no credential field.
type AuthorResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	ProfileImg string    `json:"profile_img"`
}

func NewAuthorResponse(u *model.User) AuthorResponse {
	if u == nil {
		return AuthorResponse{Username: "unknown"}
	}
	return AuthorResponse{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		ProfileImg: u.ProfileImg,
	}
}
