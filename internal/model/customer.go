package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// customers
type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	DisplayName  string `gorm:"type:varchar(255)"`
	ContactPhone string `gorm:"type:varchar(32)"`

	Note string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
