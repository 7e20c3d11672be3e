// Package cache keeps the participant directory (ids and display names) close
// to the handlers that render leaderboards and entry feeds.
package cache

import (
	"context"
	"time"
)

const DefaultTTL = 5 * time.Minute

// ParticipantSummary is the cached view of a participant.
type ParticipantSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Loader reads the full participant list from the source of truth.
type Loader func(ctx context.Context) ([]ParticipantSummary, error)

// ParticipantCache stores the participant list for a bounded time.
// Get reports false on a miss or an expired entry.
type ParticipantCache interface {
	Get(ctx context.Context) ([]ParticipantSummary, bool)
	Set(ctx context.Context, participants []ParticipantSummary) error
	Invalidate(ctx context.Context) error
}
