package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/telemart/telemart/internal/domain"
	"github.com/telemart/telemart/internal/telegram"
)

// TelegramUserContextKey is the context key for the authenticated Telegram user
const TelegramUserContextKey contextKey = "telegram_user"

// maxInitDataBody caps how much of a request body the auth middleware will
// buffer while looking for the initData field.
const maxInitDataBody = 1 << 20

// TelegramAuth validates Telegram Mini App init data on every request.
//
// The init data is taken from the initData query parameter or, for JSON
// requests, from the top-level initData body field. The body is restored
// afterwards so downstream handlers can decode it again.
//
// A request without init data is rejected with 401, one with a bad signature
// with 403. Requests whose init data verifies but carries no user record
// proceed as anonymous.
func TelegramAuth(verifier *telegram.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initData := r.URL.Query().Get("initData")
			if initData == "" {
				initData = initDataFromBody(r)
			}

			if initData == "" {
				respondUnauthorized(w, r, "Telegram init data is missing")
				return
			}

			if !verifier.Verify(initData) {
				respondForbidden(w, r, "Telegram init data is invalid")
				return
			}

			if user, ok := telegram.ParseUser(initData); ok {
				ctx := context.WithValue(r.Context(), TelegramUserContextKey, user)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// initDataFromBody extracts the initData field from a JSON request body,
// leaving the body readable for downstream handlers.
func initDataFromBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInitDataBody))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		InitData string `json:"initData"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.InitData
}

// GetTelegramUser retrieves the authenticated Telegram user from the context.
// Returns nil for anonymous requests.
func GetTelegramUser(ctx context.Context) *domain.TelegramUser {
	if user, ok := ctx.Value(TelegramUserContextKey).(*domain.TelegramUser); ok {
		return user
	}
	return nil
}

// RequireTelegramUser ensures the request carries an identified Telegram user,
// not just a valid signature.
func RequireTelegramUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetTelegramUser(r.Context()) == nil {
			respondUnauthorized(w, r, "Telegram user identification required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
