package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/telemart/telemart/internal/telegram"
)

const pollTimeoutSeconds = 10

// Service implements the storefront bot: command handling, Mini App buttons
// and bot profile setup.
type Service struct {
	api       *telegram.BotAPI
	webAppURL string
	logger    *slog.Logger
}

// NewService creates the bot service. A trailing slash on the web app URL is
// stripped so appended paths stay well-formed.
func NewService(api *telegram.BotAPI, webAppURL string, logger *slog.Logger) *Service {
	return &Service{
		api:       api,
		webAppURL: strings.TrimSuffix(webAppURL, "/"),
		logger:    logger,
	}
}

// HandleUpdate processes one incoming update. Errors are logged, not
// returned: a failed reply should not stop update processing.
func (s *Service) HandleUpdate(ctx context.Context, update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	chatID := msg.Chat.ID
	command := msg.Text
	if i := strings.IndexAny(command, " @"); i >= 0 {
		command = command[:i]
	}

	var err error
	switch command {
	case "/start":
		err = s.sendShopButton(ctx, chatID,
			"Welcome to our E-commerce Bot! Click below to browse our products:",
			"🛍️ Open Shop", s.webAppURL)
	case "/shop":
		err = s.sendShopButton(ctx, chatID,
			"Click below to browse our products:",
			"🛍️ Open Shop", s.webAppURL)
	case "/menu":
		err = s.sendShopButton(ctx, chatID,
			"Open our shop menu:",
			"🛒 Shop Menu", s.webAppURL)
	case "/myorders":
		var userID int64
		if msg.From != nil {
			userID = msg.From.ID
		}
		err = s.sendShopButton(ctx, chatID,
			"View your orders:",
			"📦 My Orders", fmt.Sprintf("%s/orders?userId=%d", s.webAppURL, userID))
	case "/promo":
		err = s.sendShopButton(ctx, chatID,
			"Check out our special promotion!",
			"🎁 View Promotion", s.webAppURL+"/promotion-page")
	case "/help":
		_, err = s.api.SendMessage(ctx, telegram.SendMessageParams{
			ChatID: chatID,
			Text: "Available commands:\n" +
				"/start - Start the bot & Shop\n" +
				"/shop - Browse our products\n" +
				"/menu - Open shop menu\n" +
				"/myorders - View your orders\n" +
				"/promo - View special promotions\n" +
				"/help - Show this help message",
		})
	default:
		if strings.HasPrefix(msg.Text, "/") {
			return
		}
		_, err = s.api.SendMessage(ctx, telegram.SendMessageParams{
			ChatID: chatID,
			Text:   "I can help you shop! Try /shop to browse our products or /help to see all commands.",
		})
	}

	if err != nil {
		s.logger.Error("failed to handle bot update",
			"chat_id", chatID,
			"text", msg.Text,
			"error", err,
		)
	}
}

func (s *Service) sendShopButton(ctx context.Context, chatID int64, text, buttonText, url string) error {
	if s.webAppURL == "" {
		_, err := s.api.SendMessage(ctx, telegram.SendMessageParams{
			ChatID: chatID,
			Text:   "The shop is currently unavailable.",
		})
		return err
	}

	_, err := s.api.SendMessage(ctx, telegram.SendMessageParams{
		ChatID: chatID,
		Text:   text,
		ReplyMarkup: &telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{
				{{Text: buttonText, WebApp: &telegram.WebAppInfo{URL: url}}},
			},
		},
	})
	return err
}

// SetupFeatures installs the bot's command list and the chat menu button.
// Telegram only accepts HTTPS Mini App URLs, so setup is skipped otherwise.
func (s *Service) SetupFeatures(ctx context.Context) error {
	if !strings.HasPrefix(s.webAppURL, "https://") {
		return fmt.Errorf("mini app URL must be HTTPS, got %q", s.webAppURL)
	}

	commands := []telegram.BotCommand{
		{Command: "start", Description: "Start the bot & Shop"},
		{Command: "shop", Description: "Browse our products"},
		{Command: "menu", Description: "Open shop menu (inline)"},
		{Command: "myorders", Description: "View your orders"},
		{Command: "promo", Description: "View special promotions"},
		{Command: "help", Description: "Show help message"},
	}
	if err := s.api.SetMyCommands(ctx, commands); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}

	err := s.api.SetChatMenuButton(ctx, telegram.MenuButton{
		Type:   "web_app",
		Text:   "Shop",
		WebApp: &telegram.WebAppInfo{URL: s.webAppURL},
	})
	if err != nil {
		return fmt.Errorf("failed to set chat menu button: %w", err)
	}

	s.logger.Info("bot commands and menu button configured", "web_app_url", s.webAppURL)
	return nil
}

// Run long-polls for updates until the context is canceled. Any previously
// registered webhook is removed first since Telegram refuses polling while a
// webhook is set.
func (s *Service) Run(ctx context.Context) error {
	if err := s.api.DeleteWebhook(ctx); err != nil {
		s.logger.Warn("failed to delete webhook before polling", "error", err)
	}

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := s.api.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("polling error", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			s.HandleUpdate(ctx, update)
		}
	}
}
