package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"santara.dev/chirpnet/internal/model"
	notifDto "santara.dev/chirpnet/internal/modules/notification/dto"
	notifRepo "santara.dev/chirpnet/internal/modules/notification/repository"
	"santara.dev/chirpnet/pkg/apperror"
)

type NotificationService interface {
	// Emit records a notification and pushes it to the recipient's live
	// channel. Emission is never deduplicated: every add-transition of a
	// follow/like produces its own record.
	Emit(ctx context.Context, from, to uuid.UUID, notifType string) (uuid.UUID, error)
	// ListForRecipient returns the whole inbox, newest first, and marks every
	// notification in it read. The read flags in the response reflect the
	// state before this call.
	ListForRecipient(ctx context.Context, userID uuid.UUID) ([]notifDto.NotificationResponse, error)
	DeleteOne(ctx context.Context, recipient, id uuid.UUID) error
	DeleteAll(ctx context.Context, recipient uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) Emit(ctx context.Context, from, to uuid.UUID, notifType string) (uuid.UUID, error) {
	notification := &model.Notification{
		FromID: from,
		ToID:   to,
		Type:   notifType,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return uuid.Nil, err
	}

	if s.redisClient != nil {
		channel := fmt.Sprintf("user_notifications:%s", to.String())
		if payload, err := json.Marshal(notification); err == nil {
			s.redisClient.Publish(ctx, channel, payload)
		}
	}

	return notification.ID, nil
}

func (s *notificationService) ListForRecipient(ctx context.Context, userID uuid.UUID) ([]notifDto.NotificationResponse, error) {
	notifications, err := s.repo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Viewing clears unread for the entire inbox, not just what a client
	// happens to render.
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return nil, err
	}

	responses := make([]notifDto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, notifDto.NewNotificationResponse(&notifications[i]))
	}
	return responses, nil
}

func (s *notificationService) DeleteOne(ctx context.Context, recipient, id uuid.UUID) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("notification not found")
		}
		return err
	}

	if notification.ToID != recipient {
		return apperror.Forbidden("you are not authorized to delete this notification")
	}

	return s.repo.Delete(ctx, id)
}

func (s *notificationService) DeleteAll(ctx context.Context, recipient uuid.UUID) (int64, error) {
	return s.repo.DeleteByRecipient(ctx, recipient)
}
