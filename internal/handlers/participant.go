package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/wordstreak-api/internal/cache"
	log "github.com/sirupsen/logrus"
)

type ParticipantHandler struct {
	directory *cache.Directory
}

func NewParticipantHandler(directory *cache.Directory) *ParticipantHandler {
	return &ParticipantHandler{directory: directory}
}

type ListParticipantsResponse struct {
	Body []cache.ParticipantSummary
}

func (h *ParticipantHandler) HandleList(ctx context.Context, _ *struct{}) (*ListParticipantsResponse, error) {
	participants, err := h.directory.List(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list participants")
		return nil, huma.Error500InternalServerError("Internal server error")
	}
	return &ListParticipantsResponse{Body: participants}, nil
}
