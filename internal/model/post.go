package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post must carry text or an image (or both); the service layer enforces it.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Text      string    `gorm:"type:text" json:"text"`
	Image     string    `gorm:"type:text" json:"image"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

// Comment is append-only and owned by its post; there is no standalone
// comment endpoint.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// PostLike is one like edge. The same row backs both the post's like set and
// the user's liked-posts set.
type PostLike struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"post_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PostLike) TableName() string {
	return "post_likes"
}

// PostSave lives on the user side: saving never mutates the post itself.
type PostSave struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	PostID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"post_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PostSave) TableName() string {
	return "post_saves"
}
