package dto

import (
	"time"

	"github.com/google/uuid"

	commonDto "santara.dev/chirpnet/pkg/dto"
)

type CreatePostRequest struct {
	Text string `json:"text"`
	Img  string `json:"img"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type CommentResponse struct {
	ID        uuid.UUID                `json:"id"`
	Author    commonDto.AuthorResponse `json:"author"`
	Text      string                   `json:"text"`
	CreatedAt time.Time                `json:"created_at"`
}

type PostResponse struct {
	ID        uuid.UUID                `json:"id"`
	Author    commonDto.AuthorResponse `json:"author"`
	Text      string                   `json:"text"`
	Image     string                   `json:"image"`
	Likes     []uuid.UUID              `json:"likes"`
	Comments  []CommentResponse        `json:"comments"`
	CreatedAt time.Time                `json:"created_at"`
}

type ToggleSaveResponse struct {
	Saved   bool   `json:"saved"`
	Message string `json:"message"`
}
