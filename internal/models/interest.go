package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interest records a non-admin user's intent to attend an event. The
// (user_id, event_id) pair is unique so a repeated toggle maps to exactly
// one row being created or removed.
type Interest struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_interests_user_event" json:"-"`
	EventID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_interests_user_event" json:"-"`
	User         User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Event        Event     `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	InterestedAt time.Time `gorm:"autoCreateTime" json:"interested_at"`
}

func (interest *Interest) BeforeCreate(tx *gorm.DB) (err error) {
	if interest.ID == uuid.Nil {
		interest.ID = uuid.New()
	}
	return
}
