package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/wordstreak-api/internal/cache"
	"github.com/gdg-garage/wordstreak-api/internal/config"
	"github.com/gdg-garage/wordstreak-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	DiscordAuthorizeEndpoint = "https://discord.com/api/oauth2/authorize"
	DiscordTokenEndpoint     = "https://discord.com/api/oauth2/token"
	DiscordUserAPI           = "https://discord.com/api/users/@me"
	DiscordUserGuildsAPI     = "https://discord.com/api/users/@me/guilds"

	CookieName      = "auth_token"
	stateCookieName = "oauth_state"
	TokenDuration   = 24 * time.Hour
)

var errInvalidToken = errors.New("invalid token")

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config
	directory   *cache.Directory
}

// NewAuthHandler wires Discord login. directory may be nil; when set it is
// invalidated whenever a login creates or renames a participant.
func NewAuthHandler(cfg *config.Config, db *gorm.DB, directory *cache.Directory) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "email", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		db:        db,
		cfg:       cfg,
		directory: directory,
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Path:     "/",
	})
	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

type DiscordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.WithError(err).Warn("Discord token exchange failed")
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)

	if h.cfg.DiscordGuildID != "" {
		isMember, err := h.isGuildMember(client)
		if err != nil {
			log.WithError(err).Warn("Failed to read Discord guilds")
			http.Error(w, "Failed to get user guilds", http.StatusInternalServerError)
			return
		}
		if !isMember {
			http.Error(w, "Access denied: You are not a member of the required guild.", http.StatusForbidden)
			return
		}
	}

	resp, err := client.Get(DiscordUserAPI)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var du DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&du); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	participant, err := h.UpsertParticipant(r.Context(), du)
	if err != nil {
		log.WithError(err).Error("Failed to save participant")
		http.Error(w, "Failed to save participant", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(participant.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	h.setSessionCookie(w, jwtToken)

	log.WithField("participant_id", participant.ID).Info("Participant logged in")

	if h.cfg.FrontendURL != "" {
		http.Redirect(w, r, h.cfg.FrontendURL, http.StatusTemporaryRedirect)
		return
	}
	w.Write([]byte(fmt.Sprintf("Welcome %s! You are logged in.", participant.Name)))
}

func (h *AuthHandler) isGuildMember(client *http.Client) (bool, error) {
	resp, err := client.Get(DiscordUserGuildsAPI)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var guilds []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&guilds); err != nil {
		return false, err
	}
	for _, g := range guilds {
		if g.ID == h.cfg.DiscordGuildID {
			return true, nil
		}
	}
	return false, nil
}

// UpsertParticipant creates the participant for a Discord account on first
// login and refreshes profile fields afterwards.
func (h *AuthHandler) UpsertParticipant(ctx context.Context, du DiscordUser) (*models.Participant, error) {
	var participant models.Participant
	if err := h.db.WithContext(ctx).Where("discord_id = ?", du.ID).FirstOrInit(&participant).Error; err != nil {
		return nil, err
	}
	if participant.DiscordID == nil {
		participant.DiscordID = &du.ID
	}
	changed := participant.ID == "" || participant.Name != du.Username || participant.Avatar != du.Avatar
	participant.Name = du.Username
	participant.Email = du.Email
	participant.Avatar = du.Avatar

	if err := h.db.WithContext(ctx).Save(&participant).Error; err != nil {
		return nil, err
	}
	if changed && h.directory != nil {
		h.directory.Invalidate(ctx)
	}
	return &participant, nil
}

func (h *AuthHandler) GenerateToken(participantID string) (string, error) {
	claims := jwt.MapClaims{
		"participant_id": participantID,
		"exp":            time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// ParseToken validates a session token and returns its participant and expiry.
func (h *AuthHandler) ParseToken(tokenString string) (string, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", time.Time{}, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", time.Time{}, errInvalidToken
	}
	participantID, ok := claims["participant_id"].(string)
	if !ok || participantID == "" {
		return "", time.Time{}, errInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, errInvalidToken
	}
	return participantID, exp.Time, nil
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	})
}

// AuthInput carries the credentials huma operations accept.
type AuthInput struct {
	Cookie string `header:"Cookie"`
	APIKey string `header:"X-API-KEY"`
}

// Authorize resolves the calling participant. A participant already placed
// in the context by AuthMiddleware wins; otherwise the API key and then the
// session cookie are checked.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (string, error) {
	if participantID, ok := ParticipantFromContext(ctx); ok {
		return participantID, nil
	}
	if input.APIKey != "" {
		participantID, err := h.participantForAPIKey(ctx, input.APIKey)
		if err != nil {
			return "", huma.Error401Unauthorized(err.Error())
		}
		return participantID, nil
	}

	cookies, err := http.ParseCookie(input.Cookie)
	if err != nil {
		return "", huma.Error401Unauthorized("Unauthorized: No token found")
	}
	for _, c := range cookies {
		if c.Name != CookieName {
			continue
		}
		participantID, _, err := h.ParseToken(c.Value)
		if err != nil {
			return "", huma.Error401Unauthorized("Unauthorized: Invalid token")
		}
		return participantID, nil
	}
	return "", huma.Error401Unauthorized("Unauthorized: No token found")
}

type MeInput struct {
	AuthInput
}

type MeResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Avatar    string  `json:"avatar,omitempty"`
	DiscordID *string `json:"discord_id,omitempty"`
}

type MeOutput struct {
	Body MeResponse
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeInput) (*MeOutput, error) {
	participantID, err := h.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var participant models.Participant
	if err := h.db.WithContext(ctx).First(&participant, "id = ?", participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Participant not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load participant")
	}

	return &MeOutput{
		Body: MeResponse{
			ID:        participant.ID,
			Name:      participant.Name,
			Email:     participant.Email,
			Avatar:    participant.Avatar,
			DiscordID: participant.DiscordID,
		},
	}, nil
}
