package main

import (
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"santara.dev/chirpnet/internal/config"
	"santara.dev/chirpnet/internal/model"
	"santara.dev/chirpnet/internal/server"
	"santara.dev/chirpnet/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set, live notifications and rate limiting disabled")
	}

	srv := server.NewServer(cfg, db, redisClient)

	log.Printf("listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Follow{},
		&model.Post{},
		&model.Comment{},
		&model.PostLike{},
		&model.PostSave{},
		&model.Notification{},
	)
}
