// Package telegram implements the Mini App side of the Telegram platform:
// validation of signed init data and a small Bot API client.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/telemart/telemart/internal/domain"
)

// Verifier validates the init data payload a Telegram client attaches to
// every Mini App request. The signature scheme is the one documented for
// Mini Apps: secret = HMAC_SHA256(key="WebAppData", message=botToken),
// hash = hex(HMAC_SHA256(key=secret, message=dataCheckString)).
//
// Verifier sits on an authentication gate and therefore fails closed: any
// malformed input is reported as invalid, never as an error or panic.
type Verifier struct {
	secret []byte
}

// NewVerifier derives the verification secret from the bot token once at
// construction. The token itself is not retained.
func NewVerifier(botToken string) *Verifier {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	return &Verifier{secret: mac.Sum(nil)}
}

// Verify reports whether initData carries a valid signature for this bot.
// An empty payload or a payload without a hash field is invalid.
func (v *Verifier) Verify(initData string) bool {
	pairs, ok := parseInitData(initData)
	if !ok {
		return false
	}

	hash, ok := pairs["hash"]
	if !ok || hash == "" {
		return false
	}
	delete(pairs, "hash")

	// Data-check string: remaining pairs sorted by key, rendered as
	// key=value and joined with newlines, no trailing newline.
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(pairs[k])
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(b.String()))
	calculated := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(calculated), []byte(hash))
}

// ParseUser extracts the Telegram user from init data. It does not check the
// signature; callers must Verify first. Returns false when the user field is
// missing or not valid JSON - that is an anonymous caller, not an error.
func ParseUser(initData string) (*domain.TelegramUser, bool) {
	pairs, ok := parseInitData(initData)
	if !ok {
		return nil, false
	}

	raw, ok := pairs["user"]
	if !ok || raw == "" {
		return nil, false
	}

	var user domain.TelegramUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}

	return &user, true
}

// parseInitData splits a query-string-like payload into URL-decoded
// key/value pairs. Duplicate keys follow standard query-string semantics:
// the last occurrence wins. Returns false on undecodable input.
func parseInitData(initData string) (map[string]string, bool) {
	if initData == "" {
		return nil, false
	}

	pairs := make(map[string]string)
	for _, field := range strings.Split(initData, "&") {
		if field == "" {
			continue
		}
		key, value, _ := strings.Cut(field, "=")

		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			return nil, false
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			return nil, false
		}
		pairs[decodedKey] = decodedValue
	}

	if len(pairs) == 0 {
		return nil, false
	}

	return pairs, true
}
