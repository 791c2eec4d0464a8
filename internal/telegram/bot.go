package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// BotAPI is a minimal Telegram Bot API client covering the methods the
// storefront bot needs.
type BotAPI struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// BotOption customizes a BotAPI client.
type BotOption func(*BotAPI)

// WithBaseURL overrides the Bot API endpoint. Used in tests.
func WithBaseURL(baseURL string) BotOption {
	return func(b *BotAPI) {
		b.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) BotOption {
	return func(b *BotAPI) {
		b.httpClient = client
	}
}

// NewBotAPI creates a Bot API client for the given bot token.
func NewBotAPI(token string, opts ...BotOption) *BotAPI {
	b := &BotAPI{
		token:      token,
		baseURL:    defaultAPIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// call invokes a Bot API method with a JSON payload and decodes the result
// into out when out is non-nil.
func (b *BotAPI) call(ctx context.Context, method string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", b.baseURL, b.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("%s rejected: %s", method, apiResp.Description)
	}

	if out != nil {
		if err := json.Unmarshal(apiResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// SendMessageParams are the parameters for the sendMessage method.
type SendMessageParams struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage sends a text message, optionally with an inline keyboard.
func (b *BotAPI) SendMessage(ctx context.Context, params SendMessageParams) (*Message, error) {
	var msg Message
	if err := b.call(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SetMyCommands installs the bot's command list.
func (b *BotAPI) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	payload := struct {
		Commands []BotCommand `json:"commands"`
	}{Commands: commands}
	return b.call(ctx, "setMyCommands", payload, nil)
}

// SetChatMenuButton installs the chat menu button.
func (b *BotAPI) SetChatMenuButton(ctx context.Context, button MenuButton) error {
	payload := struct {
		MenuButton MenuButton `json:"menu_button"`
	}{MenuButton: button}
	return b.call(ctx, "setChatMenuButton", payload, nil)
}

// SetWebhook registers the URL Telegram should deliver updates to.
func (b *BotAPI) SetWebhook(ctx context.Context, url string) error {
	payload := struct {
		URL string `json:"url"`
	}{URL: url}
	return b.call(ctx, "setWebhook", payload, nil)
}

// DeleteWebhook removes a previously registered webhook.
func (b *BotAPI) DeleteWebhook(ctx context.Context) error {
	return b.call(ctx, "deleteWebhook", struct{}{}, nil)
}

// GetUpdates long-polls for updates with offset semantics: pass the highest
// seen update ID plus one to acknowledge processed updates.
func (b *BotAPI) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	payload := struct {
		Offset  int64 `json:"offset,omitempty"`
		Timeout int   `json:"timeout,omitempty"`
	}{Offset: offset, Timeout: timeoutSeconds}

	var updates []Update
	if err := b.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
