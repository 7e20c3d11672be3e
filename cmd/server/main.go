package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/wordstreak-api/internal/auth"
	"github.com/gdg-garage/wordstreak-api/internal/cache"
	"github.com/gdg-garage/wordstreak-api/internal/config"
	"github.com/gdg-garage/wordstreak-api/internal/database"
	"github.com/gdg-garage/wordstreak-api/internal/handlers"
	"github.com/gdg-garage/wordstreak-api/internal/logging"
	"github.com/gdg-garage/wordstreak-api/internal/notifier"
	"github.com/gdg-garage/wordstreak-api/internal/streaks"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()

	logCloser := logging.Setup(cfg)
	defer logCloser.Close()

	db := database.Connect(cfg)

	cal, err := streaks.NewCalendar(cfg.ReferenceTimezone)
	if err != nil {
		log.Fatalf("Invalid reference timezone: %v", err)
	}
	clock := clockwork.NewRealClock()
	engine := streaks.NewEngine(db, clock, cal, streaks.WithStreakSaveMinDays(cfg.StreakSaveMinDays))

	directory := cache.NewDirectory(participantCache(cfg, clock), cache.GormLoader(db))

	var n notifier.Notifier = notifier.Nop{}
	if cfg.DiscordBotToken != "" && cfg.DiscordNotificationsChannelID != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.WithError(err).Warn("Discord notifier not initialized")
		} else {
			n = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	authHandler := auth.NewAuthHandler(cfg, db, directory)

	r := chi.NewRouter()
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:         authHandler,
		Streaks:      handlers.NewStreakHandler(db, engine, n, directory),
		Entries:      handlers.NewEntryHandler(db, engine, n, authHandler, directory),
		Participants: handlers.NewParticipantHandler(directory),
		APIKeys:      handlers.NewAPIKeyHandler(db, authHandler),
	})

	log.WithFields(log.Fields{
		"port":     cfg.Port,
		"timezone": cal.Location().String(),
	}).Info("Starting server")
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// participantCache prefers Redis when configured and reachable.
func participantCache(cfg *config.Config, clock clockwork.Clock) cache.ParticipantCache {
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err == nil {
			log.WithField("addr", cfg.RedisAddr).Info("Using Redis participant cache")
			return cache.NewRedisCache(client, cfg.ParticipantCacheTTL)
		}
		log.WithError(err).Warn("Redis unavailable, falling back to in-memory participant cache")
	}
	return cache.NewMemoryCache(clock, cfg.ParticipantCacheTTL)
}
