package streaks

import (
	"context"
	"time"

	"github.com/gdg-garage/wordstreak-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EvaluateStreakSaveAllowance decides the participant's streak save for the
// current month. The first evaluation only records the month. Later months
// grant exactly one save when the previous month had enough participation
// days and zero otherwise; unused saves never carry over.
func (e *Engine) EvaluateStreakSaveAllowance(ctx context.Context, participantID string) error {
	streak, err := e.findStreak(ctx, participantID)
	if err != nil {
		return err
	}
	if streak == nil {
		return nil
	}

	now := e.clock.Now()
	month := e.cal.MonthKey(now)
	db := e.db.WithContext(ctx).Model(&models.ParticipantStreak{})

	if streak.LastStreakSaveMonth == nil {
		err := db.Where("participant_id = ? AND last_streak_save_month IS NULL", participantID).
			Updates(map[string]any{"last_streak_save_month": month, "updated_at": now.UTC()}).Error
		if err != nil {
			return persistenceError("bootstrap streak save month", err)
		}
		return nil
	}

	evaluated := *streak.LastStreakSaveMonth
	if evaluated == month {
		return nil
	}

	previous, err := PreviousMonthKey(month)
	if err != nil {
		return err
	}
	days, err := e.ParticipationDays(ctx, participantID, previous)
	if err != nil {
		return err
	}

	granted := 0
	if days >= e.saveMinDays {
		granted = 1
	}

	// Compare-and-swap on the evaluated month so concurrent updates grant once.
	res := db.Where("participant_id = ? AND last_streak_save_month = ?", participantID, evaluated).
		Updates(map[string]any{
			"streak_saves_available": granted,
			"last_streak_save_month": month,
			"updated_at":             now.UTC(),
		})
	if res.Error != nil {
		return persistenceError("update streak save allowance", res.Error)
	}

	log.WithFields(log.Fields{
		"participant_id":   participantID,
		"month":            month,
		"previous_days":    days,
		"saves_available":  granted,
		"already_resolved": res.RowsAffected == 0,
	}).Debug("Streak save allowance evaluated")
	return nil
}

// UseStreakSave redeems the participant's save. It returns false without
// changing anything when no save is available or one was already used this
// month. Eligibility check and redemption are a single conditional update.
func (e *Engine) UseStreakSave(ctx context.Context, participantID string) (bool, error) {
	participantID, err := NormalizeParticipantID(participantID)
	if err != nil {
		return false, err
	}
	if err := e.requireParticipant(ctx, participantID); err != nil {
		return false, err
	}

	now := e.clock.Now()
	month := e.cal.MonthKey(now)
	today := e.cal.DateKey(now)

	used := false
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ParticipantStreak{}).
			Where("participant_id = ? AND streak_saves_available > 0", participantID).
			Where("(last_streak_save_used_month IS NULL OR last_streak_save_used_month <> ?)", month).
			Updates(map[string]any{
				"streak_saves_available":      0,
				"last_streak_save_month":      month,
				"last_streak_save_used_month": month,
				"updated_at":                  now.UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var streak models.ParticipantStreak
		if err := tx.Where("participant_id = ?", participantID).First(&streak).Error; err != nil {
			return err
		}
		usage := models.StreakSaveUsage{
			ParticipantID:     participantID,
			UsedDate:          today,
			SavedStreakLength: streak.CurrentStreak,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}
		used = true
		return nil
	})
	if err != nil {
		return false, persistenceError("use streak save", err)
	}

	if used {
		log.WithField("participant_id", participantID).Info("Streak save used")
	}
	return used, nil
}

// ParticipationDays counts distinct calendar days in monthKey with at least
// one entry.
func (e *Engine) ParticipationDays(ctx context.Context, participantID, monthKey string) (int, error) {
	timestamps, err := e.entriesAround(ctx, participantID, monthKey)
	if err != nil {
		return 0, err
	}
	return e.cal.DistinctDays(timestamps).InMonth(monthKey), nil
}

// entriesAround loads entry timestamps for a month window widened by a day
// on each side; callers filter by calendar date afterwards.
func (e *Engine) entriesAround(ctx context.Context, participantID, monthKey string) ([]time.Time, error) {
	start, end, err := e.cal.MonthBounds(monthKey)
	if err != nil {
		return nil, err
	}
	var timestamps []time.Time
	err = e.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("participant_id = ? AND created_at >= ? AND created_at < ?", participantID, start.Add(-24*time.Hour), end.Add(24*time.Hour)).
		Pluck("created_at", &timestamps).Error
	if err != nil {
		return nil, persistenceError("load month entries", err)
	}
	return timestamps, nil
}
