package cache

import (
	"context"

	"github.com/gdg-garage/wordstreak-api/internal/models"
	"gorm.io/gorm"
)

// GormLoader lists participants ordered by name.
func GormLoader(db *gorm.DB) Loader {
	return func(ctx context.Context) ([]ParticipantSummary, error) {
		var participants []models.Participant
		if err := db.WithContext(ctx).Order("name asc").Order("id asc").Find(&participants).Error; err != nil {
			return nil, err
		}
		out := make([]ParticipantSummary, 0, len(participants))
		for _, p := range participants {
			out = append(out, ParticipantSummary{ID: p.ID, Name: p.Name, Avatar: p.Avatar})
		}
		return out, nil
	}
}
