package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/wordstreak-api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth         *auth.AuthHandler
	Streaks      *StreakHandler
	Entries      *EntryHandler
	Participants *ParticipantHandler
	APIKeys      *APIKeyHandler
}

func RegisterRoutes(r *chi.Mux, h Handlers) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.Auth.AuthMiddleware)

	config := huma.DefaultConfig("Wordstreak API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Get("/auth/discord/login", h.Auth.HandleLogin)
	r.Get("/auth/discord/callback", h.Auth.HandleCallback)

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	}

	// An unknown participant id is reported as 404 in addition to the
	// 400 for a missing or malformed one.
	participantErrors := func(o *huma.Operation) {
		o.Errors = []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError}
	}

	huma.Get(api, "/me", h.Auth.HandleMe, secured)

	huma.Post(api, "/update-streak", h.Streaks.HandleUpdateStreak, participantErrors)
	huma.Post(api, "/use-streak-save", h.Streaks.HandleUseStreakSave, participantErrors)
	huma.Get(api, "/streak-data", h.Streaks.HandleStreakData)
	huma.Get(api, "/calendar", h.Streaks.HandleCalendar)
	huma.Get(api, "/leaderboard", h.Streaks.HandleLeaderboard)

	huma.Register(api, huma.Operation{
		OperationID:   "create-entry",
		Method:        http.MethodPost,
		Path:          "/entries",
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}},
	}, h.Entries.HandleCreate)
	huma.Get(api, "/entries", h.Entries.HandleList)
	huma.Get(api, "/participants", h.Participants.HandleList)

	huma.Post(api, "/api-keys", h.APIKeys.HandleCreate, secured)
	huma.Get(api, "/api-keys", h.APIKeys.HandleList, secured)
	huma.Delete(api, "/api-keys/{id}", h.APIKeys.HandleDelete, secured)

	return api
}
