package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeFollow  = "follow"
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FromID    uuid.UUID `gorm:"type:uuid;not null" json:"from_id"`
	ToID      uuid.UUID `gorm:"type:uuid;not null;index" json:"to_id"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Pointer to avoid recursion when the user embeds notifications.
	From *User `gorm:"foreignKey:FromID" json:"from,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
