package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Experience is a post-event reflection. A user may post any number of
// experiences for the same event.
type Experience struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	User        User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Event       Event     `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	Description string    `gorm:"not null" json:"description"`
	ImagePath   string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (experience *Experience) BeforeCreate(tx *gorm.DB) (err error) {
	if experience.ID == uuid.Nil {
		experience.ID = uuid.New()
	}
	return
}
