package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/wordstreak-api/internal/auth"
	"github.com/gdg-garage/wordstreak-api/internal/cache"
	"github.com/gdg-garage/wordstreak-api/internal/config"
	"github.com/gdg-garage/wordstreak-api/internal/models"
	"github.com/gdg-garage/wordstreak-api/internal/streaks"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingNotifier struct {
	mu      sync.Mutex
	entries []models.Entry
	badges  [][]models.BadgeTier
	saves   []int
}

func (n *recordingNotifier) NotifyEntry(_ models.Participant, e models.Entry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, e)
	return nil
}

func (n *recordingNotifier) NotifyBadges(_ models.Participant, tiers []models.BadgeTier, _ int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.badges = append(n.badges, tiers)
	return nil
}

func (n *recordingNotifier) NotifyStreakSave(_ models.Participant, saved int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.saves = append(n.saves, saved)
	return errors.New("discord unavailable")
}

type testServer struct {
	db        *gorm.DB
	clock     *clockwork.FakeClock
	engine    *streaks.Engine
	notifier  *recordingNotifier
	directory *cache.Directory
	handlers  Handlers
}

// newTestServer pins the clock to a local time in the reference timezone.
func newTestServer(t *testing.T, now string) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cal, err := streaks.NewCalendar(streaks.DefaultTimezone)
	if err != nil {
		t.Fatalf("failed to load calendar: %v", err)
	}
	local, err := time.ParseInLocation("2006-01-02 15:04", now, cal.Location())
	if err != nil {
		t.Fatalf("bad time %q: %v", now, err)
	}
	clock := clockwork.NewFakeClockAt(local)
	engine := streaks.NewEngine(db, clock, cal)

	rec := &recordingNotifier{}
	directory := cache.NewDirectory(cache.NewMemoryCache(clock, time.Minute), cache.GormLoader(db))
	authHandler := auth.NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db, directory)

	return &testServer{
		db:        db,
		clock:     clock,
		engine:    engine,
		notifier:  rec,
		directory: directory,
		handlers: Handlers{
			Auth:         authHandler,
			Streaks:      NewStreakHandler(db, engine, rec, directory),
			Entries:      NewEntryHandler(db, engine, rec, authHandler, directory),
			Participants: NewParticipantHandler(directory),
			APIKeys:      NewAPIKeyHandler(db, authHandler),
		},
	}
}

func (s *testServer) participant(t *testing.T, name string) models.Participant {
	t.Helper()
	p := models.Participant{Name: name}
	if err := s.db.Create(&p).Error; err != nil {
		t.Fatalf("failed to create participant: %v", err)
	}
	s.directory.Invalidate(context.Background())
	return p
}

// as returns a context authenticated as the participant.
func as(p models.Participant) context.Context {
	return context.WithValue(context.Background(), auth.ParticipantIDKey, p.ID)
}

// postEntry submits a word entry at the current fake time.
func (s *testServer) postEntry(t *testing.T, p models.Participant, content string) *CreateEntryResponse {
	t.Helper()
	input := &CreateEntryRequest{}
	input.Body.Kind = "word"
	input.Body.Content = content
	resp, err := s.handlers.Entries.HandleCreate(as(p), input)
	if err != nil {
		t.Fatalf("HandleCreate returned error: %v", err)
	}
	return resp
}

func participantRequest(id string) *ParticipantRequest {
	req := &ParticipantRequest{}
	req.Body.ParticipantID = id
	return req
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected huma.StatusError, got %T: %v", err, err)
	}
	return se.GetStatus()
}
