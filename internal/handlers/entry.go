package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/wordstreak-api/internal/auth"
	"github.com/gdg-garage/wordstreak-api/internal/cache"
	"github.com/gdg-garage/wordstreak-api/internal/models"
	"github.com/gdg-garage/wordstreak-api/internal/notifier"
	"github.com/gdg-garage/wordstreak-api/internal/streaks"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultEntryLimit = 50
	maxEntryLimit     = 200
)

type EntryHandler struct {
	db          *gorm.DB
	engine      *streaks.Engine
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
	directory   *cache.Directory
}

func NewEntryHandler(db *gorm.DB, engine *streaks.Engine, n notifier.Notifier, authHandler *auth.AuthHandler, directory *cache.Directory) *EntryHandler {
	if n == nil {
		n = notifier.Nop{}
	}
	return &EntryHandler{db: db, engine: engine, notifier: n, authHandler: authHandler, directory: directory}
}

type CreateEntryRequest struct {
	auth.AuthInput
	Body struct {
		Kind       string `json:"kind" enum:"word,quote" doc:"Entry kind"`
		Content    string `json:"content" maxLength:"1000" doc:"The word or quote"`
		Author     string `json:"author,omitempty" maxLength:"200" doc:"Quote author"`
		Definition string `json:"definition,omitempty" maxLength:"1000" doc:"Word definition"`
	}
}

type EntryBody struct {
	ID            uint      `json:"id"`
	ParticipantID string    `json:"participant_id"`
	Name          string    `json:"name,omitempty"`
	Kind          string    `json:"kind"`
	Content       string    `json:"content"`
	Author        string    `json:"author,omitempty"`
	Definition    string    `json:"definition,omitempty"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateEntryResponse struct {
	Body struct {
		Entry         EntryBody `json:"entry"`
		CurrentStreak int       `json:"current_streak"`
		LongestStreak int       `json:"longest_streak"`
		NewBadges     []string  `json:"new_badges"`
	}
}

func (h *EntryHandler) HandleCreate(ctx context.Context, input *CreateEntryRequest) (*CreateEntryResponse, error) {
	participantID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	kind := models.EntryKind(strings.ToLower(strings.TrimSpace(input.Body.Kind)))
	if !kind.Valid() {
		return nil, huma.Error400BadRequest("kind must be word or quote")
	}
	content := strings.TrimSpace(input.Body.Content)
	if content == "" {
		return nil, huma.Error400BadRequest("content is required")
	}

	var participant models.Participant
	if err := h.db.WithContext(ctx).First(&participant, "id = ?", participantID).Error; err != nil {
		return nil, huma.Error404NotFound("Participant not found")
	}

	entry := models.Entry{
		ParticipantID: participant.ID,
		Kind:          kind,
		Content:       content,
		Author:        strings.TrimSpace(input.Body.Author),
		Definition:    strings.TrimSpace(input.Body.Definition),
	}
	entry.CreatedAt = h.engine.Now().UTC()
	if err := h.db.WithContext(ctx).Omit("Participant").Create(&entry).Error; err != nil {
		log.WithError(err).Error("Failed to create entry")
		return nil, huma.Error500InternalServerError("Internal server error")
	}

	res := &CreateEntryResponse{}
	res.Body.Entry = h.entryBody(entry, participant.Name)
	res.Body.NewBadges = []string{}

	// The entry is stored; a failed streak refresh is repaired by the next update.
	result, err := h.engine.UpdateParticipantStreak(ctx, participant.ID)
	if err != nil {
		log.WithError(err).WithField("participant_id", participant.ID).Error("Failed to update streak after entry")
	}
	if result != nil {
		res.Body.CurrentStreak = result.CurrentStreak
		res.Body.LongestStreak = result.LongestStreak
		res.Body.NewBadges = tierNames(result.NewBadges)
	}

	if err := h.notifier.NotifyEntry(participant, entry); err != nil {
		log.WithError(err).Warn("Failed to send entry notification")
	}
	if result != nil && len(result.NewBadges) > 0 {
		if err := h.notifier.NotifyBadges(participant, result.NewBadges, result.CurrentStreak); err != nil {
			log.WithError(err).Warn("Failed to send badge notification")
		}
	}

	return res, nil
}

type ListEntriesRequest struct {
	ParticipantID string `query:"participantId" doc:"Only entries of this participant"`
	Kind          string `query:"kind" doc:"Only entries of this kind"`
	Limit         int    `query:"limit" minimum:"0" maximum:"200" doc:"Maximum number of entries, newest first"`
}

type ListEntriesResponse struct {
	Body []EntryBody
}

func (h *EntryHandler) HandleList(ctx context.Context, input *ListEntriesRequest) (*ListEntriesResponse, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultEntryLimit
	}
	if limit > maxEntryLimit {
		limit = maxEntryLimit
	}

	query := h.db.WithContext(ctx).Order("created_at desc").Order("id desc").Limit(limit)
	if input.ParticipantID != "" {
		participantID, err := streaks.NormalizeParticipantID(input.ParticipantID)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		query = query.Where("participant_id = ?", participantID)
	}
	if input.Kind != "" {
		kind := models.EntryKind(input.Kind)
		if !kind.Valid() {
			return nil, huma.Error400BadRequest("kind must be word or quote")
		}
		query = query.Where("kind = ?", kind)
	}

	var entries []models.Entry
	if err := query.Find(&entries).Error; err != nil {
		log.WithError(err).Error("Failed to list entries")
		return nil, huma.Error500InternalServerError("Internal server error")
	}

	names := map[string]string{}
	if h.directory != nil {
		if loaded, err := h.directory.Names(ctx); err != nil {
			log.WithError(err).Warn("Failed to load participant names")
		} else {
			names = loaded
		}
	}

	body := make([]EntryBody, 0, len(entries))
	for _, e := range entries {
		body = append(body, h.entryBody(e, names[e.ParticipantID]))
	}
	return &ListEntriesResponse{Body: body}, nil
}

func (h *EntryHandler) entryBody(e models.Entry, name string) EntryBody {
	return EntryBody{
		ID:            e.ID,
		ParticipantID: e.ParticipantID,
		Name:          name,
		Kind:          string(e.Kind),
		Content:       e.Content,
		Author:        e.Author,
		Definition:    e.Definition,
		Date:          h.engine.Calendar().DateKey(e.CreatedAt),
		CreatedAt:     e.CreatedAt,
	}
}
