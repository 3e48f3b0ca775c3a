package dto

import (
	"time"

	"github.com/google/uuid"

	"santara.dev/chirpnet/internal/model"
	commonDto "santara.dev/chirpnet/pkg/dto"
)

type NotificationResponse struct {
	ID        uuid.UUID                `json:"id"`
	From      commonDto.AuthorResponse `json:"from"`
	Type      string                   `json:"type"`
	Read      bool                     `json:"read"`
	CreatedAt time.Time                `json:"created_at"`
}

func NewNotificationResponse(n *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		From:      commonDto.NewAuthorResponse(n.From),
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
