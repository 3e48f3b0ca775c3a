package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"santara.dev/chirpnet/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	FindByIDWithAssociations(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListAll(ctx context.Context) ([]model.Post, error)
	ListByAuthorIDs(ctx context.Context, authorIDs []uuid.UUID) ([]model.Post, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Post, error)

	AddComment(ctx context.Context, comment *model.Comment) error

	IsLiked(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	AddLike(ctx context.Context, userID, postID uuid.UUID) error
	RemoveLike(ctx context.Context, userID, postID uuid.UUID) error
	ListLikerIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)
	ListLikedPostIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	IsSaved(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	AddSave(ctx context.Context, userID, postID uuid.UUID) error
	RemoveSave(ctx context.Context, userID, postID uuid.UUID) error
	ListSavedPostIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ClearSaves(ctx context.Context, userID uuid.UUID) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindByIDWithAssociations(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	if err := r.withAssociations(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Comments, likes and saves go with the post.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostSave{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Post{}).Error
	})
}

func (r *postRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	err := r.withAssociations(r.db.WithContext(ctx)).
		Order("created_at desc").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthorIDs(ctx context.Context, authorIDs []uuid.UUID) ([]model.Post, error) {
	var posts []model.Post
	if len(authorIDs) == 0 {
		return posts, nil
	}
	err := r.withAssociations(r.db.WithContext(ctx)).
		Where("user_id IN ?", authorIDs).
		Order("created_at desc").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Post, error) {
	var posts []model.Post
	if len(ids) == 0 {
		return posts, nil
	}
	err := r.withAssociations(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("created_at desc").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddLike is idempotent under concurrent toggles: a duplicate insert hits the
// composite primary key and is ignored.
func (r *postRepository) AddLike(ctx context.Context, userID, postID uuid.UUID) error {
	like := model.PostLike{UserID: userID, PostID: postID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
}

func (r *postRepository) RemoveLike(ctx context.Context, userID, postID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.PostLike{}).Error
}

func (r *postRepository) ListLikerIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("post_id = ?", postID).
		Order("created_at asc").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *postRepository) ListLikedPostIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *postRepository) IsSaved(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PostSave{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) AddSave(ctx context.Context, userID, postID uuid.UUID) error {
	save := model.PostSave{UserID: userID, PostID: postID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&save).Error
}

func (r *postRepository) RemoveSave(ctx context.Context, userID, postID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.PostSave{}).Error
}

func (r *postRepository) ListSavedPostIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.PostSave{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *postRepository) ClearSaves(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.PostSave{})
	return res.RowsAffected, res.Error
}

func (r *postRepository) withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Comments.User")
}
