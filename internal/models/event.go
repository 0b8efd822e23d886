package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	Date        time.Time  `gorm:"not null;index" json:"date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Location    string     `gorm:"not null" json:"location"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	CreatedBy   User       `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}
