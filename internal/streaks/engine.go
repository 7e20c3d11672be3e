// Package streaks computes participant streaks from entry history, persists
// them, awards milestone badges and runs the monthly streak-save allowance.
//
// The engine keeps no state between calls. Every transition is evaluated
// lazily when UpdateParticipantStreak or UseStreakSave runs.
package streaks

import (
	"context"
	"errors"
	"time"

	"github.com/gdg-garage/wordstreak-api/internal/models"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultStreakSaveMinDays = 20

type Engine struct {
	db          *gorm.DB
	clock       clockwork.Clock
	cal         *Calendar
	saveMinDays int
}

type Option func(*Engine)

// WithStreakSaveMinDays sets how many distinct participation days in the
// previous month earn a streak save.
func WithStreakSaveMinDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.saveMinDays = days
		}
	}
}

func NewEngine(db *gorm.DB, clock clockwork.Clock, cal *Calendar, opts ...Option) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	e := &Engine{db: db, clock: clock, cal: cal, saveMinDays: DefaultStreakSaveMinDays}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Calendar() *Calendar {
	return e.cal
}

func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

type UpdateResult struct {
	CurrentStreak int
	LongestStreak int
	NewBadges     []models.BadgeTier
}

// CalculateStreakFromEntries returns the participant's current streak ending
// today in the reference timezone.
func (e *Engine) CalculateStreakFromEntries(ctx context.Context, participantID string) (int, error) {
	participantID, err := NormalizeParticipantID(participantID)
	if err != nil {
		return 0, err
	}
	timestamps, err := e.entryTimestamps(ctx, participantID)
	if err != nil {
		return 0, err
	}
	days := e.cal.DistinctDays(timestamps)
	return CurrentStreak(days, e.cal.DateKey(e.clock.Now())), nil
}

// UpdateParticipantStreak recomputes and upserts the streak row, then awards
// badges and evaluates the streak-save allowance. Calling it again without
// new entries leaves the persisted state unchanged.
func (e *Engine) UpdateParticipantStreak(ctx context.Context, participantID string) (*UpdateResult, error) {
	participantID, err := NormalizeParticipantID(participantID)
	if err != nil {
		return nil, err
	}
	if err := e.requireParticipant(ctx, participantID); err != nil {
		return nil, err
	}

	current, err := e.CalculateStreakFromEntries(ctx, participantID)
	if err != nil {
		return nil, err
	}

	existing, err := e.findStreak(ctx, participantID)
	if err != nil {
		return nil, err
	}
	longest := current
	if existing != nil && existing.LongestStreak > longest {
		longest = existing.LongestStreak
	}

	now := e.clock.Now()
	row := models.ParticipantStreak{
		ParticipantID:    participantID,
		CurrentStreak:    current,
		LongestStreak:    longest,
		LastActivityDate: e.cal.DateKey(now),
		UpdatedAt:        now.UTC(),
	}
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_streak", "longest_streak", "last_activity_date", "updated_at"}),
	}
	if err := e.db.WithContext(ctx).Clauses(upsert).Create(&row).Error; err != nil {
		return nil, persistenceError("upsert streak", err)
	}

	result := &UpdateResult{
		CurrentStreak: current,
		LongestStreak: longest,
		NewBadges:     e.AwardBadges(ctx, participantID, current),
	}

	if err := e.EvaluateStreakSaveAllowance(ctx, participantID); err != nil {
		return result, err
	}

	log.WithFields(log.Fields{
		"participant_id": participantID,
		"current":        current,
		"longest":        longest,
	}).Debug("Streak updated")

	return result, nil
}

type StreakData struct {
	Streak        *models.ParticipantStreak
	Badges        []models.ParticipantBadge
	NextMilestone *Milestone
}

// StreakData returns the persisted streak (nil when never updated) and the
// participant's badges, most recently earned first.
func (e *Engine) StreakData(ctx context.Context, participantID string) (*StreakData, error) {
	participantID, err := NormalizeParticipantID(participantID)
	if err != nil {
		return nil, err
	}

	streak, err := e.findStreak(ctx, participantID)
	if err != nil {
		return nil, err
	}

	var badges []models.ParticipantBadge
	if err := e.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("earned_date desc").Order("id desc").
		Find(&badges).Error; err != nil {
		return nil, persistenceError("load badges", err)
	}

	data := &StreakData{Streak: streak, Badges: badges}
	current := 0
	if streak != nil {
		current = streak.CurrentStreak
	}
	if m, ok := NextMilestone(current); ok {
		data.NextMilestone = &m
	}
	return data, nil
}

func (e *Engine) entryTimestamps(ctx context.Context, participantID string) ([]time.Time, error) {
	var timestamps []time.Time
	if err := e.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("participant_id = ?", participantID).
		Order("created_at desc").
		Pluck("created_at", &timestamps).Error; err != nil {
		return nil, persistenceError("load entries", err)
	}
	return timestamps, nil
}

func (e *Engine) findStreak(ctx context.Context, participantID string) (*models.ParticipantStreak, error) {
	var streak models.ParticipantStreak
	err := e.db.WithContext(ctx).Where("participant_id = ?", participantID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("load streak", err)
	}
	return &streak, nil
}

func (e *Engine) requireParticipant(ctx context.Context, participantID string) error {
	var count int64
	if err := e.db.WithContext(ctx).Model(&models.Participant{}).Where("id = ?", participantID).Count(&count).Error; err != nil {
		return persistenceError("load participant", err)
	}
	if count == 0 {
		return ErrParticipantNotFound
	}
	return nil
}
