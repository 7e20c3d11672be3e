package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gdg-garage/wordstreak-api/internal/models"
)

type contextKey string

const ParticipantIDKey contextKey = "participant_id"

func ParticipantFromContext(ctx context.Context) (string, bool) {
	participantID, ok := ctx.Value(ParticipantIDKey).(string)
	return participantID, ok && participantID != ""
}

func (h *AuthHandler) participantForAPIKey(ctx context.Context, key string) (string, error) {
	if h.db == nil {
		return "", errors.New("Unauthorized: Invalid API Key")
	}
	var keyModel models.APIKey
	if err := h.db.WithContext(ctx).Where("key = ?", key).First(&keyModel).Error; err != nil {
		return "", errors.New("Unauthorized: Invalid API Key")
	}
	now := time.Now()
	if keyModel.ExpiresAt != nil && now.After(*keyModel.ExpiresAt) {
		return "", errors.New("Unauthorized: API Key expired")
	}
	h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", now)
	return keyModel.ParticipantID, nil
}

// AuthMiddleware identifies the caller from the X-API-KEY header or the
// session cookie and stores the participant in the request context. Requests
// without valid credentials pass through unauthenticated; operations that
// need a participant reject them in Authorize. Sessions past half their
// lifetime get a fresh cookie.
func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey := r.Header.Get("X-API-KEY"); apiKey != "" {
			participantID, err := h.participantForAPIKey(r.Context(), apiKey)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ParticipantIDKey, participantID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		cookie, err := r.Cookie(CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		participantID, exp, err := h.ParseToken(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if time.Until(exp) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(participantID); err == nil {
				h.setSessionCookie(w, newToken)
			}
		}

		ctx := context.WithValue(r.Context(), ParticipantIDKey, participantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
