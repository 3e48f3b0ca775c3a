package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"santara.dev/chirpnet/internal/model"
	notifService "santara.dev/chirpnet/internal/modules/notification/service"
	postDto "santara.dev/chirpnet/internal/modules/post/dto"
	postRepo "santara.dev/chirpnet/internal/modules/post/repository"
	search "santara.dev/chirpnet/internal/modules/search/service"
	userRepo "santara.dev/chirpnet/internal/modules/user/repository"
	"santara.dev/chirpnet/pkg/apperror"
	"santara.dev/chirpnet/pkg/ratelimiter"
	"santara.dev/chirpnet/pkg/storage"
)

const searchResultLimit = 50

type PostService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error)
	DeletePost(ctx context.Context, userID uuid.UUID, postID uuid.UUID) error

	// ToggleLike flips the actor's like edge on the post and returns the
	// resulting like set. The add half notifies the post's author; the
	// remove half is silent and existing notifications stay.
	ToggleLike(ctx context.Context, userID uuid.UUID, postID uuid.UUID) ([]uuid.UUID, error)
	ToggleSave(ctx context.Context, userID uuid.UUID, postID uuid.UUID) (*postDto.ToggleSaveResponse, error)
	UnsaveAll(ctx context.Context, userID uuid.UUID) (int64, error)

	AddComment(ctx context.Context, userID uuid.UUID, postID uuid.UUID, text string) (*postDto.PostResponse, error)

	GetAllPosts(ctx context.Context) ([]postDto.PostResponse, error)
	GetFollowingFeed(ctx context.Context, viewerID uuid.UUID) ([]postDto.PostResponse, error)
	GetUserFeed(ctx context.Context, username string) ([]postDto.PostResponse, error)
	GetLikedFeed(ctx context.Context, userID uuid.UUID) ([]postDto.PostResponse, error)
	GetSavedFeed(ctx context.Context, viewerID uuid.UUID) ([]postDto.PostResponse, error)
	SearchPosts(ctx context.Context, query string) ([]postDto.PostResponse, error)
}

type postService struct {
	postRepo            postRepo.PostRepository
	userRepo            userRepo.UserRepository
	notificationService notifService.NotificationService
	imageStorage        storage.ImageStorage
	searchService       search.SearchService
	redisClient         *redis.Client
	rateLimitPost       time.Duration
}

func NewPostService(postRepo postRepo.PostRepository, userRepo userRepo.UserRepository, notificationService notifService.NotificationService, imageStorage storage.ImageStorage, searchService search.SearchService, redisClient *redis.Client, rateLimitPost time.Duration) PostService {
	return &postService{
		postRepo:            postRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		imageStorage:        imageStorage,
		searchService:       searchService,
		redisClient:         redisClient,
		rateLimitPost:       rateLimitPost,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error) {
	if req.Text == "" && req.Img == "" {
		return nil, apperror.Invalid("post must have text or image")
	}

	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, userID, "post", s.rateLimitPost)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, userID, "post")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are posting too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	// The cooldown is armed; release it if the post never lands so a failed
	// attempt doesn't consume the window.
	created := false
	defer func() {
		if !created {
			if err := ratelimiter.ClearRateLimit(ctx, s.redisClient, userID, "post"); err != nil {
				log.Printf("failed to clear rate limit for user %s: %v", userID, err)
			}
		}
	}()

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	img := req.Img
	if img != "" && s.imageStorage != nil {
		url, err := s.imageStorage.UploadInline(ctx, img, "posts")
		if err != nil {
			return nil, err
		}
		img = url
	}

	post := &model.Post{
		UserID: userID,
		Text:   req.Text,
		Image:  img,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	created = true
	post.User = *user

	if s.searchService != nil {
		if err := s.searchService.IndexPost(post); err != nil {
			log.Printf("failed to index post %s: %v", post.ID, err)
		}
	}

	return s.mapToResponse(ctx, post)
}

func (s *postService) DeletePost(ctx context.Context, userID uuid.UUID, postID uuid.UUID) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("post not found")
		}
		return err
	}

	if post.UserID != userID {
		return apperror.New(http.StatusUnauthorized, "you are not authorized to delete this post", apperror.ErrUnauthorized)
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	// Cleanup after the row is gone is best effort.
	if post.Image != "" && s.imageStorage != nil {
		if err := s.imageStorage.DeleteImage(ctx, post.Image); err != nil {
			log.Printf("failed to delete image for post %s: %v", postID, err)
		}
	}
	if s.searchService != nil {
		if err := s.searchService.DeletePost(postID.String()); err != nil {
			log.Printf("failed to deindex post %s: %v", postID, err)
		}
	}

	return nil
}

func (s *postService) ToggleLike(ctx context.Context, userID uuid.UUID, postID uuid.UUID) ([]uuid.UUID, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post not found")
		}
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.postRepo.RemoveLike(ctx, userID, postID); err != nil {
			return nil, err
		}
	} else {
		if err := s.postRepo.AddLike(ctx, userID, postID); err != nil {
			return nil, err
		}
		if _, err := s.notificationService.Emit(ctx, userID, post.UserID, model.NotificationTypeLike); err != nil {
			return nil, err
		}
	}

	return s.postRepo.ListLikerIDs(ctx, postID)
}

func (s *postService) ToggleSave(ctx context.Context, userID uuid.UUID, postID uuid.UUID) (*postDto.ToggleSaveResponse, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post not found")
		}
		return nil, err
	}

	saved, err := s.postRepo.IsSaved(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if saved {
		if err := s.postRepo.RemoveSave(ctx, userID, postID); err != nil {
			return nil, err
		}
		return &postDto.ToggleSaveResponse{Saved: false, Message: "post unsaved successfully"}, nil
	}

	if err := s.postRepo.AddSave(ctx, userID, postID); err != nil {
		return nil, err
	}
	return &postDto.ToggleSaveResponse{Saved: true, Message: "post saved successfully"}, nil
}

func (s *postService) UnsaveAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.postRepo.ClearSaves(ctx, userID)
}

func (s *postService) AddComment(ctx context.Context, userID uuid.UUID, postID uuid.UUID, text string) (*postDto.PostResponse, error) {
	if text == "" {
		return nil, apperror.Invalid("comment text is required")
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("post not found")
		}
		return nil, err
	}

	comment := &model.Comment{
		PostID: postID,
		UserID: userID,
		Text:   text,
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	if post.UserID != userID {
		if _, err := s.notificationService.Emit(ctx, userID, post.UserID, model.NotificationTypeComment); err != nil {
			return nil, err
		}
	}

	updated, err := s.postRepo.FindByIDWithAssociations(ctx, postID)
	if err != nil {
		return nil, err
	}

	return s.mapToResponse(ctx, updated)
}

func (s *postService) GetAllPosts(ctx context.Context) ([]postDto.PostResponse, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapAllToResponse(ctx, posts)
}

func (s *postService) GetFollowingFeed(ctx context.Context, viewerID uuid.UUID) ([]postDto.PostResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, viewerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	followingIDs, err := s.userRepo.ListFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthorIDs(ctx, followingIDs)
	if err != nil {
		return nil, err
	}
	return s.mapAllToResponse(ctx, posts)
}

func (s *postService) GetUserFeed(ctx context.Context, username string) ([]postDto.PostResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	posts, err := s.postRepo.ListByAuthorIDs(ctx, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	return s.mapAllToResponse(ctx, posts)
}

func (s *postService) GetLikedFeed(ctx context.Context, userID uuid.UUID) ([]postDto.PostResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	likedIDs, err := s.postRepo.ListLikedPostIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByIDs(ctx, likedIDs)
	if err != nil {
		return nil, err
	}
	return s.mapAllToResponse(ctx, posts)
}

func (s *postService) GetSavedFeed(ctx context.Context, viewerID uuid.UUID) ([]postDto.PostResponse, error) {
	savedIDs, err := s.postRepo.ListSavedPostIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByIDs(ctx, savedIDs)
	if err != nil {
		return nil, err
	}
	return s.mapAllToResponse(ctx, posts)
}

func (s *postService) SearchPosts(ctx context.Context, query string) ([]postDto.PostResponse, error) {
	if query == "" {
		return nil, apperror.Invalid("search query is required")
	}
	if s.searchService == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "search is not available", apperror.ErrInternal)
	}

	ids, err := s.searchService.SearchPostIDs(query, searchResultLimit)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.mapAllToResponse(ctx, posts)
}
