package streaks

import (
	"context"

	"github.com/gdg-garage/wordstreak-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// TiersEarned returns every tier whose threshold streak meets, ascending.
func TiersEarned(streak int) []models.BadgeTier {
	var tiers []models.BadgeTier
	for _, tier := range models.BadgeTiers() {
		if streak >= tier.Threshold() {
			tiers = append(tiers, tier)
		}
	}
	return tiers
}

type Milestone struct {
	Tier          models.BadgeTier
	Threshold     int
	DaysRemaining int
}

// NextMilestone returns the lowest tier streak has not reached yet. ok is
// false once every tier is reached.
func NextMilestone(streak int) (Milestone, bool) {
	for _, tier := range models.BadgeTiers() {
		if streak < tier.Threshold() {
			return Milestone{Tier: tier, Threshold: tier.Threshold(), DaysRemaining: tier.Threshold() - streak}, true
		}
	}
	return Milestone{}, false
}

// HighestTier returns the greatest tier in the list, or BadgeTierUnknown.
func HighestTier(tiers []models.BadgeTier) models.BadgeTier {
	highest := models.BadgeTierUnknown
	for _, t := range tiers {
		if t > highest {
			highest = t
		}
	}
	return highest
}

// AwardBadges records every tier the streak qualifies for that the
// participant does not hold yet and returns the newly recorded tiers. A
// failing insert is logged and does not stop the remaining tiers.
func (e *Engine) AwardBadges(ctx context.Context, participantID string, currentStreak int) []models.BadgeTier {
	today := e.cal.DateKey(e.clock.Now())

	var awarded []models.BadgeTier
	for _, tier := range TiersEarned(currentStreak) {
		badge := models.ParticipantBadge{
			ParticipantID: participantID,
			Tier:          tier,
			EarnedDate:    today,
			StreakLength:  currentStreak,
		}
		res := e.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&badge)
		if res.Error != nil {
			log.WithError(res.Error).WithFields(log.Fields{
				"participant_id": participantID,
				"tier":           tier.String(),
			}).Error("Failed to record badge")
			continue
		}
		if res.RowsAffected > 0 {
			awarded = append(awarded, tier)
		}
	}

	if len(awarded) > 0 {
		log.WithFields(log.Fields{
			"participant_id": participantID,
			"streak":         currentStreak,
			"tiers":          awarded,
		}).Info("Badges awarded")
	}
	return awarded
}
