package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/wordstreak-api/internal/cache"
	"github.com/gdg-garage/wordstreak-api/internal/models"
	"github.com/gdg-garage/wordstreak-api/internal/notifier"
	"github.com/gdg-garage/wordstreak-api/internal/streaks"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type StreakHandler struct {
	db        *gorm.DB
	engine    *streaks.Engine
	notifier  notifier.Notifier
	directory *cache.Directory
}

func NewStreakHandler(db *gorm.DB, engine *streaks.Engine, n notifier.Notifier, directory *cache.Directory) *StreakHandler {
	if n == nil {
		n = notifier.Nop{}
	}
	return &StreakHandler{db: db, engine: engine, notifier: n, directory: directory}
}

type ParticipantRequest struct {
	Body struct {
		ParticipantID string `json:"participantId,omitempty" doc:"Participant identifier"`
	}
}

type UpdateStreakResponse struct {
	Body struct {
		Success       bool     `json:"success"`
		CurrentStreak int      `json:"current_streak"`
		LongestStreak int      `json:"longest_streak"`
		NewBadges     []string `json:"new_badges"`
	}
}

func (h *StreakHandler) HandleUpdateStreak(ctx context.Context, input *ParticipantRequest) (*UpdateStreakResponse, error) {
	result, err := h.engine.UpdateParticipantStreak(ctx, input.Body.ParticipantID)
	// Badges are persisted before the save allowance is evaluated, so they
	// are announced even when a later step fails.
	h.notifyBadges(ctx, input.Body.ParticipantID, result)
	if err != nil {
		return nil, engineError("Streak update", err)
	}

	res := &UpdateStreakResponse{}
	res.Body.Success = true
	res.Body.CurrentStreak = result.CurrentStreak
	res.Body.LongestStreak = result.LongestStreak
	res.Body.NewBadges = tierNames(result.NewBadges)
	return res, nil
}

type SuccessResponse struct {
	Body struct {
		Success bool `json:"success"`
	}
}

func (h *StreakHandler) HandleUseStreakSave(ctx context.Context, input *ParticipantRequest) (*SuccessResponse, error) {
	used, err := h.engine.UseStreakSave(ctx, input.Body.ParticipantID)
	if err != nil {
		return nil, engineError("Streak save", err)
	}
	if !used {
		return nil, huma.Error400BadRequest("No streak save available")
	}

	if participant, ok := h.participant(ctx, input.Body.ParticipantID); ok {
		var streak models.ParticipantStreak
		if err := h.db.WithContext(ctx).Where("participant_id = ?", participant.ID).First(&streak).Error; err == nil {
			if err := h.notifier.NotifyStreakSave(participant, streak.CurrentStreak); err != nil {
				log.WithError(err).Warn("Failed to send streak save notification")
			}
		}
	}

	res := &SuccessResponse{}
	res.Body.Success = true
	return res, nil
}

type StreakDataRequest struct {
	ParticipantID string `query:"participantId" doc:"Participant identifier"`
}

type StreakBody struct {
	ParticipantID        string    `json:"participant_id"`
	CurrentStreak        int       `json:"current_streak"`
	LongestStreak        int       `json:"longest_streak"`
	LastActivityDate     string    `json:"last_activity_date"`
	StreakSavesAvailable int       `json:"streak_saves_available"`
	LastStreakSaveMonth  *string   `json:"last_streak_save_month"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type BadgeBody struct {
	ID           uint   `json:"id"`
	Tier         string `json:"tier"`
	EarnedDate   string `json:"earned_date"`
	StreakLength int    `json:"streak_length"`
}

type MilestoneBody struct {
	Tier          string `json:"tier"`
	Threshold     int    `json:"threshold"`
	DaysRemaining int    `json:"days_remaining"`
}

type StreakDataResponse struct {
	Body struct {
		Streak        *StreakBody    `json:"streak"`
		Badges        []BadgeBody    `json:"badges"`
		NextMilestone *MilestoneBody `json:"next_milestone,omitempty"`
	}
}

func (h *StreakHandler) HandleStreakData(ctx context.Context, input *StreakDataRequest) (*StreakDataResponse, error) {
	data, err := h.engine.StreakData(ctx, input.ParticipantID)
	if err != nil {
		return nil, engineError("Streak data", err)
	}

	res := &StreakDataResponse{}
	if s := data.Streak; s != nil {
		res.Body.Streak = &StreakBody{
			ParticipantID:        s.ParticipantID,
			CurrentStreak:        s.CurrentStreak,
			LongestStreak:        s.LongestStreak,
			LastActivityDate:     s.LastActivityDate,
			StreakSavesAvailable: s.StreakSavesAvailable,
			LastStreakSaveMonth:  s.LastStreakSaveMonth,
			UpdatedAt:            s.UpdatedAt,
		}
	}
	res.Body.Badges = make([]BadgeBody, 0, len(data.Badges))
	for _, b := range data.Badges {
		res.Body.Badges = append(res.Body.Badges, BadgeBody{
			ID:           b.ID,
			Tier:         b.Tier.String(),
			EarnedDate:   b.EarnedDate,
			StreakLength: b.StreakLength,
		})
	}
	if m := data.NextMilestone; m != nil {
		res.Body.NextMilestone = &MilestoneBody{
			Tier:          m.Tier.String(),
			Threshold:     m.Threshold,
			DaysRemaining: m.DaysRemaining,
		}
	}
	return res, nil
}

type CalendarRequest struct {
	ParticipantID string `query:"participantId" doc:"Participant identifier"`
	Month         string `query:"month" doc:"Month as YYYY-MM, defaults to the current month"`
}

type CalendarResponse struct {
	Body struct {
		ParticipantID     string   `json:"participant_id"`
		Month             string   `json:"month"`
		Days              []string `json:"days"`
		ParticipationDays int      `json:"participation_days"`
		CurrentStreak     int      `json:"current_streak"`
		LongestStreak     int      `json:"longest_streak"`
		Today             string   `json:"today"`
	}
}

func (h *StreakHandler) HandleCalendar(ctx context.Context, input *CalendarRequest) (*CalendarResponse, error) {
	month, err := h.month(input.Month)
	if err != nil {
		return nil, engineError("Calendar", err)
	}
	view, err := h.engine.MonthCalendar(ctx, input.ParticipantID, month)
	if err != nil {
		return nil, engineError("Calendar", err)
	}

	res := &CalendarResponse{}
	res.Body.ParticipantID = view.ParticipantID
	res.Body.Month = view.Month[:7]
	res.Body.Days = view.Days
	res.Body.ParticipationDays = view.ParticipationDays
	res.Body.CurrentStreak = view.CurrentStreak
	res.Body.LongestStreak = view.LongestStreak
	res.Body.Today = view.Today
	return res, nil
}

type LeaderboardRequest struct {
	Month string `query:"month" doc:"Month as YYYY-MM, defaults to the current month"`
}

type LeaderboardEntry struct {
	Rank              int    `json:"rank"`
	ParticipantID     string `json:"participant_id"`
	Name              string `json:"name"`
	ParticipationDays int    `json:"participation_days"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	BadgeCount        int    `json:"badge_count"`
	HighestBadge      string `json:"highest_badge,omitempty"`
}

type LeaderboardResponse struct {
	Body struct {
		Month   string             `json:"month"`
		Entries []LeaderboardEntry `json:"entries"`
	}
}

func (h *StreakHandler) HandleLeaderboard(ctx context.Context, input *LeaderboardRequest) (*LeaderboardResponse, error) {
	month, err := h.month(input.Month)
	if err != nil {
		return nil, engineError("Leaderboard", err)
	}
	rows, err := h.engine.Leaderboard(ctx, month)
	if err != nil {
		return nil, engineError("Leaderboard", err)
	}

	names := map[string]string{}
	if h.directory != nil {
		if names, err = h.directory.Names(ctx); err != nil {
			log.WithError(err).Warn("Failed to load participant names")
			names = map[string]string{}
		}
	}

	res := &LeaderboardResponse{}
	res.Body.Month = month[:7]
	res.Body.Entries = make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entry := LeaderboardEntry{
			Rank:              row.Rank,
			ParticipantID:     row.ParticipantID,
			Name:              names[row.ParticipantID],
			ParticipationDays: row.ParticipationDays,
			CurrentStreak:     row.CurrentStreak,
			LongestStreak:     row.LongestStreak,
			BadgeCount:        row.BadgeCount,
		}
		if row.HighestBadge.Valid() {
			entry.HighestBadge = row.HighestBadge.String()
		}
		res.Body.Entries = append(res.Body.Entries, entry)
	}
	return res, nil
}

// month resolves an optional YYYY-MM query value to a month key.
func (h *StreakHandler) month(value string) (string, error) {
	if value == "" {
		return h.engine.Calendar().MonthKey(h.engine.Now()), nil
	}
	return streaks.ParseMonth(value)
}

func (h *StreakHandler) participant(ctx context.Context, participantID string) (models.Participant, bool) {
	participantID, err := streaks.NormalizeParticipantID(participantID)
	if err != nil {
		return models.Participant{}, false
	}
	var participant models.Participant
	if err := h.db.WithContext(ctx).First(&participant, "id = ?", participantID).Error; err != nil {
		log.WithError(err).WithField("participant_id", participantID).Warn("Failed to load participant for notification")
		return models.Participant{}, false
	}
	return participant, true
}

func (h *StreakHandler) notifyBadges(ctx context.Context, participantID string, result *streaks.UpdateResult) {
	if result == nil || len(result.NewBadges) == 0 {
		return
	}
	participant, ok := h.participant(ctx, participantID)
	if !ok {
		return
	}
	if err := h.notifier.NotifyBadges(participant, result.NewBadges, result.CurrentStreak); err != nil {
		log.WithError(err).Warn("Failed to send badge notification")
	}
}

func tierNames(tiers []models.BadgeTier) []string {
	names := make([]string, 0, len(tiers))
	for _, t := range tiers {
		names = append(names, t.String())
	}
	return names
}
