package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/telemart/telemart/internal/bot"
	"github.com/telemart/telemart/internal/telegram"
)

// TelegramHandler receives Bot API updates pushed by Telegram.
type TelegramHandler struct {
	bot      *bot.Service
	botToken string
	logger   *slog.Logger
}

// NewTelegramHandler creates a new Telegram webhook handler.
func NewTelegramHandler(botService *bot.Service, botToken string, logger *slog.Logger) *TelegramHandler {
	return &TelegramHandler{
		bot:      botService,
		botToken: botToken,
		logger:   logger,
	}
}

// HandleWebhook handles POST /api/webhook/telegram/{token}
//
// The bot token in the path is the shared secret proving the request comes
// from Telegram. Updates are always acknowledged with 200 once authenticated;
// a non-2xx response would make Telegram redeliver the same update.
func (h *TelegramHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.botToken)) != 1 {
		http.NotFound(w, r)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("failed to decode telegram update", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	h.bot.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}
