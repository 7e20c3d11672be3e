package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gdg-garage/wordstreak-api/internal/cache"
	"github.com/gdg-garage/wordstreak-api/internal/config"
	"github.com/gdg-garage/wordstreak-api/internal/models"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Participant{}, &models.APIKey{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestHandleMe(t *testing.T) {
	db := newTestDB(t)

	discordID := "123456"
	participant := models.Participant{
		DiscordID: &discordID,
		Name:      "testuser",
		Email:     "test@example.com",
		Avatar:    "avatar_url",
	}
	db.Create(&participant)

	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, db, nil)

	t.Run("Authenticated", func(t *testing.T) {
		token, _ := handler.GenerateToken(participant.ID)
		input := &MeInput{AuthInput: AuthInput{Cookie: "theme=dark; auth_token=" + token}}
		resp, err := handler.HandleMe(context.Background(), input)
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}

		if resp.Body.Name != participant.Name {
			t.Errorf("expected name %s, got %s", participant.Name, resp.Body.Name)
		}
		if resp.Body.Email != participant.Email {
			t.Errorf("expected email %s, got %s", participant.Email, resp.Body.Email)
		}
	})

	t.Run("ContextParticipant", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ParticipantIDKey, participant.ID)
		resp, err := handler.HandleMe(ctx, &MeInput{})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.ID != participant.ID {
			t.Errorf("expected id %s, got %s", participant.ID, resp.Body.ID)
		}
	})

	t.Run("APIKey", func(t *testing.T) {
		db.Create(&models.APIKey{ParticipantID: participant.ID, Key: "secret-key", Name: "cli"})
		resp, err := handler.HandleMe(context.Background(), &MeInput{AuthInput: AuthInput{APIKey: "secret-key"}})
		if err != nil {
			t.Fatalf("HandleMe returned error: %v", err)
		}
		if resp.Body.ID != participant.ID {
			t.Errorf("expected id %s, got %s", participant.ID, resp.Body.ID)
		}

		var key models.APIKey
		db.Where("key = ?", "secret-key").First(&key)
		if key.LastUsedAt == nil {
			t.Error("expected last_used_at to be stamped")
		}
	})

	t.Run("ExpiredAPIKey", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		db.Create(&models.APIKey{ParticipantID: participant.ID, Key: "old-key", ExpiresAt: &past})
		if _, err := handler.HandleMe(context.Background(), &MeInput{AuthInput: AuthInput{APIKey: "old-key"}}); err == nil {
			t.Fatal("expected error for expired key")
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := handler.HandleMe(context.Background(), &MeInput{})
		if err == nil {
			t.Fatal("expected error for unauthenticated request, got nil")
		}
	})

	t.Run("ForeignSecret", func(t *testing.T) {
		other := NewAuthHandler(&config.Config{JWTSecret: "other-secret"}, db, nil)
		token, _ := other.GenerateToken(participant.ID)
		_, err := handler.HandleMe(context.Background(), &MeInput{AuthInput: AuthInput{Cookie: "auth_token=" + token}})
		if err == nil {
			t.Fatal("expected error for token signed with another secret")
		}
	})
}

func TestUpsertParticipant(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	loads := 0
	directory := cache.NewDirectory(
		cache.NewMemoryCache(clockwork.NewFakeClock(), time.Minute),
		func(ctx context.Context) ([]cache.ParticipantSummary, error) {
			loads++
			return cache.GormLoader(db)(ctx)
		},
	)
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db, directory)

	first, err := handler.UpsertParticipant(ctx, DiscordUser{ID: "42", Username: "ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("UpsertParticipant: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated participant id")
	}

	directory.List(ctx)

	second, err := handler.UpsertParticipant(ctx, DiscordUser{ID: "42", Username: "ada lovelace"})
	if err != nil {
		t.Fatalf("UpsertParticipant: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same participant, got %s and %s", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.Participant{}).Count(&count)
	if count != 1 {
		t.Errorf("expected one participant, got %d", count)
	}

	name, _ := directory.Name(ctx, first.ID)
	if name != "ada lovelace" {
		t.Errorf("expected directory to reload renamed participant, got %q", name)
	}
	if loads != 2 {
		t.Errorf("expected 2 directory loads, got %d", loads)
	}
}

func TestHandleCallbackRejectsBadRequests(t *testing.T) {
	handler := NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, nil, nil)

	t.Run("StateMismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?state=abc&code=xyz", nil)
		req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "other"})
		rr := httptest.NewRecorder()
		handler.HandleCallback(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("MissingCode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/discord/callback?state=abc", nil)
		req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "abc"})
		rr := httptest.NewRecorder()
		handler.HandleCallback(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func TestHandleLogin(t *testing.T) {
	handler := NewAuthHandler(&config.Config{DiscordClientID: "client"}, nil, nil)
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/discord/login", nil))

	if rr.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	var state string
	for _, c := range rr.Result().Cookies() {
		if c.Name == stateCookieName {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("expected state cookie")
	}
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "state="+state) {
		t.Errorf("expected state %s in redirect %s", state, loc)
	}
}
