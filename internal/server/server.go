package server

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"santara.dev/chirpnet/internal/config"
	"santara.dev/chirpnet/internal/middleware"
	"santara.dev/chirpnet/pkg/storage"

	notifHttp "santara.dev/chirpnet/internal/modules/notification/delivery/http"
	notifRepo "santara.dev/chirpnet/internal/modules/notification/repository"
	notifService "santara.dev/chirpnet/internal/modules/notification/service"

	postHttp "santara.dev/chirpnet/internal/modules/post/delivery/http"
	postRepo "santara.dev/chirpnet/internal/modules/post/repository"
	postService "santara.dev/chirpnet/internal/modules/post/service"

	searchService "santara.dev/chirpnet/internal/modules/search/service"

	userHttp "santara.dev/chirpnet/internal/modules/user/delivery/http"
	userRepo "santara.dev/chirpnet/internal/modules/user/repository"
	userService "santara.dev/chirpnet/internal/modules/user/service"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadFolder)
	if err != nil {
		log.Printf("cloudinary storage unavailable, inline images are stored as-is: %v", err)
		imageStorage = nil
	}

	var searchSvc searchService.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = searchService.NewMeiliSearchService(meiliClient)
	}

	users := userRepo.NewUserRepository(db)
	posts := postRepo.NewPostRepository(db)
	notifications := notifRepo.NewNotificationRepository(db)

	notificationSvc := notifService.NewNotificationService(notifications, redisClient)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, redisClient)

	userSvc := userService.NewUserService(users, notificationSvc, imageStorage)
	userHandler := userHttp.NewUserHandler(userSvc)

	postSvc := postService.NewPostService(posts, users, notificationSvc, imageStorage, searchSvc, redisClient, cfg.RateLimitPost)
	postHandler := postHttp.NewPostHandler(postSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	setupCORS(router, cfg.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Post routes
		protected.GET("/posts/all", postHandler.GetAllPosts)
		protected.GET("/posts/following", postHandler.GetFollowingFeed)
		protected.GET("/posts/user/:username", postHandler.GetUserFeed)
		protected.GET("/posts/likes/:id", postHandler.GetLikedFeed)
		protected.GET("/posts/saved", postHandler.GetSavedFeed)
		protected.GET("/posts/search", postHandler.SearchPosts)
		protected.POST("/posts/create", postHandler.CreatePost)
		protected.POST("/posts/like/:id", postHandler.ToggleLike)
		protected.POST("/posts/comment/:id", postHandler.AddComment)
		protected.POST("/posts/save/:id", postHandler.ToggleSave)
		protected.POST("/posts/unsave", postHandler.UnsaveAll)
		protected.DELETE("/posts/:id", postHandler.DeletePost)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
		protected.DELETE("/notifications", notificationHandler.DeleteNotifications)
		protected.DELETE("/notifications/:id", notificationHandler.DeleteNotification)

		// User routes
		protected.POST("/users/follow/:id", userHandler.ToggleFollow)
		protected.GET("/users/suggested", userHandler.GetSuggestedUsers)
		protected.GET("/users/profile/:username", userHandler.GetProfile)
		protected.POST("/users/update", userHandler.UpdateProfile)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
