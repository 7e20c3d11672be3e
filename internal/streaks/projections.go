package streaks

import (
	"context"
	"sort"
	"time"

	"github.com/gdg-garage/wordstreak-api/internal/models"
	"gorm.io/gorm"
)

// CalendarView is a read-only projection of one participant's month. Streak
// values come from Summarize, the same computation the persisted update uses.
type CalendarView struct {
	ParticipantID     string
	Month             string
	Days              []string
	ParticipationDays int
	CurrentStreak     int
	LongestStreak     int
	Today             string
}

// MonthCalendar lists the days in monthKey with an entry, with streak values
// as of today.
func (e *Engine) MonthCalendar(ctx context.Context, participantID, monthKey string) (*CalendarView, error) {
	participantID, err := NormalizeParticipantID(participantID)
	if err != nil {
		return nil, err
	}
	if _, _, err := e.cal.MonthBounds(monthKey); err != nil {
		return nil, err
	}

	timestamps, err := e.entryTimestamps(ctx, participantID)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	summary := Summarize(e.cal, timestamps, now)

	prefix := monthKey[:7]
	days := []string{}
	for _, day := range summary.Days.Sorted() {
		if day[:7] == prefix {
			days = append(days, day)
		}
	}

	return &CalendarView{
		ParticipantID:     participantID,
		Month:             monthKey,
		Days:              days,
		ParticipationDays: len(days),
		CurrentStreak:     summary.Current,
		LongestStreak:     summary.Longest,
		Today:             e.cal.DateKey(now),
	}, nil
}

type LeaderboardRow struct {
	Rank              int
	ParticipantID     string
	ParticipationDays int
	CurrentStreak     int
	LongestStreak     int
	BadgeCount        int
	HighestBadge      models.BadgeTier
}

type entryStamp struct {
	ParticipantID string
	CreatedAt     time.Time
}

// Leaderboard ranks participants with at least one entry in monthKey by
// participation days, then current streak, then badges held.
func (e *Engine) Leaderboard(ctx context.Context, monthKey string) ([]LeaderboardRow, error) {
	start, end, err := e.cal.MonthBounds(monthKey)
	if err != nil {
		return nil, err
	}

	// Only participants with an entry near the month window can rank; their
	// full history is still needed for the streak columns.
	active := func() *gorm.DB {
		return e.db.Model(&models.Entry{}).
			Select("participant_id").
			Where("created_at >= ? AND created_at < ?", start.Add(-24*time.Hour), end.Add(24*time.Hour))
	}

	var stamps []entryStamp
	if err := e.db.WithContext(ctx).
		Model(&models.Entry{}).
		Select("participant_id, created_at").
		Where("participant_id IN (?)", active()).
		Find(&stamps).Error; err != nil {
		return nil, persistenceError("load entries", err)
	}

	byParticipant := map[string][]time.Time{}
	for _, s := range stamps {
		byParticipant[s.ParticipantID] = append(byParticipant[s.ParticipantID], s.CreatedAt)
	}

	var badges []models.ParticipantBadge
	if err := e.db.WithContext(ctx).
		Select("participant_id, tier").
		Where("participant_id IN (?)", active()).
		Find(&badges).Error; err != nil {
		return nil, persistenceError("load badges", err)
	}
	tiers := map[string][]models.BadgeTier{}
	for _, b := range badges {
		tiers[b.ParticipantID] = append(tiers[b.ParticipantID], b.Tier)
	}

	now := e.clock.Now()
	rows := []LeaderboardRow{}
	for participantID, timestamps := range byParticipant {
		summary := Summarize(e.cal, timestamps, now)
		days := summary.Days.InMonth(monthKey)
		if days == 0 {
			continue
		}
		rows = append(rows, LeaderboardRow{
			ParticipantID:     participantID,
			ParticipationDays: days,
			CurrentStreak:     summary.Current,
			LongestStreak:     summary.Longest,
			BadgeCount:        len(tiers[participantID]),
			HighestBadge:      HighestTier(tiers[participantID]),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ParticipationDays != b.ParticipationDays {
			return a.ParticipationDays > b.ParticipationDays
		}
		if a.CurrentStreak != b.CurrentStreak {
			return a.CurrentStreak > b.CurrentStreak
		}
		if a.BadgeCount != b.BadgeCount {
			return a.BadgeCount > b.BadgeCount
		}
		if a.HighestBadge != b.HighestBadge {
			return a.HighestBadge > b.HighestBadge
		}
		return a.ParticipantID < b.ParticipantID
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}
