package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"santara.dev/chirpnet/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error

	IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	AddFollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	RemoveFollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	ListFollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListFollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	SampleUsers(ctx context.Context, excludeID uuid.UUID, limit int) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddFollow is idempotent: a concurrent duplicate insert hits the composite
// primary key and is ignored.
func (r *userRepository) AddFollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	follow := model.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow).Error
}

func (r *userRepository) RemoveFollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
}

func (r *userRepository) ListFollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("followee_id = ?", userID).
		Order("created_at asc").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *userRepository) ListFollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at asc").
		Pluck("followee_id", &ids).Error
	return ids, err
}

// SampleUsers draws a random batch excluding the given user. RANDOM() works
// on both Postgres and SQLite.
func (r *userRepository) SampleUsers(ctx context.Context, excludeID uuid.UUID, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", excludeID).
		Order("RANDOM()").
		Limit(limit).
		Find(&users).Error
	return users, err
}
