package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Participant struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DiscordID *string   `gorm:"uniqueIndex" json:"discord_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"-"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
