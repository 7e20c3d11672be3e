package models

import "time"

// ParticipantStreak holds the persisted streak state, one row per participant.
// LongestStreak >= CurrentStreak after every update.
type ParticipantStreak struct {
	ID                      uint      `gorm:"primaryKey" json:"-"`
	ParticipantID           string    `gorm:"uniqueIndex;not null" json:"participant_id"`
	CurrentStreak           int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak           int       `gorm:"not null;default:0" json:"longest_streak"`
	LastActivityDate        string    `gorm:"type:varchar(10)" json:"last_activity_date"`
	StreakSavesAvailable    int       `gorm:"not null;default:0" json:"streak_saves_available"`
	LastStreakSaveMonth     *string   `gorm:"type:varchar(10)" json:"last_streak_save_month"`
	LastStreakSaveUsedMonth *string   `gorm:"type:varchar(10)" json:"last_streak_save_used_month,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// StreakSaveUsage is an append-only record of a redeemed streak save.
type StreakSaveUsage struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ParticipantID     string    `gorm:"index;not null" json:"participant_id"`
	UsedDate          string    `gorm:"type:varchar(10);not null" json:"used_date"`
	SavedStreakLength int       `json:"saved_streak_length"`
	CreatedAt         time.Time `json:"created_at"`
}
