package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"santara.dev/chirpnet/internal/model"
	notifService "santara.dev/chirpnet/internal/modules/notification/service"
	userDto "santara.dev/chirpnet/internal/modules/user/dto"
	userRepo "santara.dev/chirpnet/internal/modules/user/repository"
	"santara.dev/chirpnet/pkg/apperror"
	"santara.dev/chirpnet/pkg/storage"
)

const (
	suggestedSampleSize = 10
	suggestedLimit      = 4

	minPasswordLength = 6
)

type UserService interface {
	// ToggleFollow flips the follow edge between actor and target. The add
	// half emits a follow notification; the remove half is silent.
	ToggleFollow(ctx context.Context, actorID, targetID uuid.UUID) (*userDto.ToggleFollowResponse, error)
	SuggestedUsers(ctx context.Context, viewerID uuid.UUID) ([]userDto.ProfileResponse, error)
	GetProfile(ctx context.Context, username string) (*userDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req userDto.UpdateProfileRequest) (*userDto.ProfileResponse, error)
}

type userService struct {
	repo                userRepo.UserRepository
	notificationService notifService.NotificationService
	imageStorage        storage.ImageStorage
}

func NewUserService(repo userRepo.UserRepository, notificationService notifService.NotificationService, imageStorage storage.ImageStorage) UserService {
	return &userService{
		repo:                repo,
		notificationService: notificationService,
		imageStorage:        imageStorage,
	}
}

func (s *userService) ToggleFollow(ctx context.Context, actorID, targetID uuid.UUID) (*userDto.ToggleFollowResponse, error) {
	if actorID == targetID {
		return nil, apperror.New(http.StatusBadRequest, "you can't follow/unfollow yourself", apperror.ErrSelfAction)
	}

	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	isFollowing, err := s.repo.IsFollowing(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if isFollowing {
		if err := s.repo.RemoveFollow(ctx, actorID, targetID); err != nil {
			return nil, err
		}
		return &userDto.ToggleFollowResponse{Following: false, Message: "user unfollowed successfully"}, nil
	}

	if err := s.repo.AddFollow(ctx, actorID, targetID); err != nil {
		return nil, err
	}

	if _, err := s.notificationService.Emit(ctx, actorID, targetID, model.NotificationTypeFollow); err != nil {
		return nil, err
	}

	return &userDto.ToggleFollowResponse{Following: true, Message: "user followed successfully"}, nil
}

func (s *userService) SuggestedUsers(ctx context.Context, viewerID uuid.UUID) ([]userDto.ProfileResponse, error) {
	sampled, err := s.repo.SampleUsers(ctx, viewerID, suggestedSampleSize)
	if err != nil {
		return nil, err
	}

	followingIDs, err := s.repo.ListFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	following := make(map[uuid.UUID]struct{}, len(followingIDs))
	for _, id := range followingIDs {
		following[id] = struct{}{}
	}

	// The sample is drawn before the follow filter, so an unlucky draw can
	// return fewer than the limit.
	suggestions := make([]userDto.ProfileResponse, 0, suggestedLimit)
	for i := range sampled {
		if _, ok := following[sampled[i].ID]; ok {
			continue
		}
		resp, err := s.toProfileResponse(ctx, &sampled[i])
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, *resp)
		if len(suggestions) == suggestedLimit {
			break
		}
	}

	return suggestions, nil
}

func (s *userService) GetProfile(ctx context.Context, username string) (*userDto.ProfileResponse, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	return s.toProfileResponse(ctx, user)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req userDto.UpdateProfileRequest) (*userDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	hasCurrent := req.CurrentPassword != nil && *req.CurrentPassword != ""
	hasNew := req.NewPassword != nil && *req.NewPassword != ""
	if hasCurrent != hasNew {
		return nil, apperror.Invalid("please provide both current password and new password")
	}

	if hasCurrent && hasNew {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*req.CurrentPassword)); err != nil {
			return nil, apperror.Invalid("current password is incorrect")
		}
		if len(*req.NewPassword) < minPasswordLength {
			return nil, apperror.Invalid(fmt.Sprintf("new password must have at least %d characters", minPasswordLength))
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}

	if req.Username != nil && *req.Username != "" && *req.Username != user.Username {
		if _, err := s.repo.FindByUsername(ctx, *req.Username); err == nil {
			return nil, apperror.Invalid("this username is already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *req.Username
	}

	if req.ProfileImg != nil && *req.ProfileImg != "" {
		url, err := s.replaceImage(ctx, user.ProfileImg, *req.ProfileImg, "avatars")
		if err != nil {
			return nil, err
		}
		user.ProfileImg = url
	}

	if req.CoverImg != nil && *req.CoverImg != "" {
		url, err := s.replaceImage(ctx, user.CoverImg, *req.CoverImg, "covers")
		if err != nil {
			return nil, err
		}
		user.CoverImg = url
	}

	if req.Email != nil && *req.Email != "" {
		user.Email = *req.Email
	}
	if req.FullName != nil && *req.FullName != "" {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Link != nil {
		user.Link = *req.Link
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.toProfileResponse(ctx, user)
}

// replaceImage uploads the inline payload and destroys the superseded image.
// Without a media collaborator the payload is kept as-is.
func (s *userService) replaceImage(ctx context.Context, oldURL, payload, folder string) (string, error) {
	if s.imageStorage == nil {
		return payload, nil
	}

	if oldURL != "" {
		if err := s.imageStorage.DeleteImage(ctx, oldURL); err != nil {
			log.Printf("failed to delete superseded image: %v", err)
		}
	}

	return s.imageStorage.UploadInline(ctx, payload, folder)
}

func (s *userService) toProfileResponse(ctx context.Context, user *model.User) (*userDto.ProfileResponse, error) {
	followerIDs, err := s.repo.ListFollowerIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.repo.ListFollowingIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &userDto.ProfileResponse{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		Email:      user.Email,
		Bio:        user.Bio,
		Link:       user.Link,
		ProfileImg: user.ProfileImg,
		CoverImg:   user.CoverImg,
		Followers:  followerIDs,
		Following:  followingIDs,
		CreatedAt:  user.CreatedAt,
	}, nil
}
