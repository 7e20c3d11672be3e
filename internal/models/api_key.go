package models

import (
	"time"

	"gorm.io/gorm"
)

type APIKey struct {
	gorm.Model
	ParticipantID string      `json:"participant_id" gorm:"index"`
	Participant   Participant `json:"-"`
	Key           string      `json:"key" gorm:"uniqueIndex"`
	Name          string      `json:"name"`
	ExpiresAt     *time.Time  `json:"expires_at"`
	LastUsedAt    *time.Time  `json:"last_used_at"`
}
