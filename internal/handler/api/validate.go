package api

import (
	"net/http"

	"github.com/telemart/telemart/internal/domain"
	"github.com/telemart/telemart/internal/handler"
	"github.com/telemart/telemart/internal/middleware"
)

type validateResponse struct {
	Valid bool                 `json:"valid"`
	User  *domain.TelegramUser `json:"user,omitempty"`
}

// HandleValidateTelegramData handles POST /api/validate-telegram-data
//
// The route sits behind the Telegram auth middleware, which rejects missing
// or forged init data before this handler runs. Reaching it means the
// signature checked out; the response reports the identified user, if any.
func HandleValidateTelegramData(w http.ResponseWriter, r *http.Request) {
	handler.JSON(w, http.StatusOK, validateResponse{
		Valid: true,
		User:  middleware.GetTelegramUser(r.Context()),
	})
}
