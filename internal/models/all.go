package models

// All returns every model for AutoMigrate.
func All() []any {
	return []any{
		&Participant{},
		&Entry{},
		&ParticipantStreak{},
		&ParticipantBadge{},
		&StreakSaveUsage{},
		&APIKey{},
	}
}
