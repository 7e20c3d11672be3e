package cache

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Directory answers participant lookups from the cache and reloads through
// the loader on a miss.
type Directory struct {
	cache ParticipantCache
	load  Loader
}

func NewDirectory(cache ParticipantCache, load Loader) *Directory {
	return &Directory{cache: cache, load: load}
}

func (d *Directory) List(ctx context.Context) ([]ParticipantSummary, error) {
	if participants, ok := d.cache.Get(ctx); ok {
		return participants, nil
	}
	participants, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	if participants == nil {
		participants = []ParticipantSummary{}
	}
	if err := d.cache.Set(ctx, participants); err != nil {
		log.WithError(err).Warn("Failed to store participant list in cache")
	}
	return participants, nil
}

// Names maps participant ids to display names.
func (d *Directory) Names(ctx context.Context) (map[string]string, error) {
	participants, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = p.Name
	}
	return names, nil
}

// Name returns the display name for id, or "" when unknown.
func (d *Directory) Name(ctx context.Context, id string) (string, error) {
	names, err := d.Names(ctx)
	if err != nil {
		return "", err
	}
	return names[id], nil
}

// Invalidate drops the cached list so the next lookup reloads it.
func (d *Directory) Invalidate(ctx context.Context) {
	if err := d.cache.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate participant cache")
	}
}
