package models

import (
	"time"

	"gorm.io/gorm"
)

type EntryKind string

const (
	EntryKindWord  EntryKind = "word"
	EntryKindQuote EntryKind = "quote"
)

func (k EntryKind) Valid() bool {
	return k == EntryKindWord || k == EntryKindQuote
}

// Entry is a participant's daily submission. Entries are never edited after
// creation and are the only input to streak computation.
type Entry struct {
	gorm.Model
	ParticipantID string      `gorm:"index;not null" json:"participant_id"`
	Participant   Participant `gorm:"foreignKey:ParticipantID" json:"-"`
	Kind          EntryKind   `gorm:"type:varchar(8);not null" json:"kind"`
	Content       string      `gorm:"not null" json:"content"`
	Author        string      `json:"author,omitempty"`
	Definition    string      `json:"definition,omitempty"`
}

// BeforeSave keeps created_at as a UTC instant so range filters compare
// consistently across drivers.
func (e *Entry) BeforeSave(tx *gorm.DB) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	} else {
		e.CreatedAt = e.CreatedAt.UTC()
	}
	return nil
}
