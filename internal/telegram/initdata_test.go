package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "123456789:AAF0o0Wq1XzkqQP9eR3bTlVnY8mC4dGhJkL"

// signInitData builds an initData payload with a correctly computed hash,
// preserving the given field order in the encoded output.
func signInitData(botToken string, pairs map[string]string, order []string) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+pairs[k])
	}

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))
	secret := secretMac.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(lines, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	if order == nil {
		order = keys
	}
	encoded := make([]string, 0, len(order)+1)
	for _, k := range order {
		encoded = append(encoded, url.QueryEscape(k)+"="+url.QueryEscape(pairs[k]))
	}
	encoded = append(encoded, "hash="+hash)

	return strings.Join(encoded, "&")
}

func validPairs() map[string]string {
	return map[string]string{
		"user":      `{"id":42,"first_name":"Ada","username":"ada_l"}`,
		"auth_date": "1717171717",
		"query_id":  "AAHdF6IQAAAAAN0XohDhrOrc",
	}
}

func TestVerifier_Verify_Valid(t *testing.T) {
	v := NewVerifier(testBotToken)

	initData := signInitData(testBotToken, validPairs(), nil)
	assert.True(t, v.Verify(initData))
}

func TestVerifier_Verify_InputOrderIndependent(t *testing.T) {
	v := NewVerifier(testBotToken)
	pairs := validPairs()

	orders := [][]string{
		{"user", "auth_date", "query_id"},
		{"query_id", "user", "auth_date"},
		{"auth_date", "query_id", "user"},
	}
	for _, order := range orders {
		assert.True(t, v.Verify(signInitData(testBotToken, pairs, order)),
			"order %v should verify", order)
	}
}

func TestVerifier_Verify_TamperedHash(t *testing.T) {
	v := NewVerifier(testBotToken)
	initData := signInitData(testBotToken, validPairs(), nil)

	// Flip the final hash character.
	last := initData[len(initData)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	tampered := initData[:len(initData)-1] + string(flipped)

	assert.False(t, v.Verify(tampered))
}

func TestVerifier_Verify_TamperedField(t *testing.T) {
	v := NewVerifier(testBotToken)
	initData := signInitData(testBotToken, validPairs(), nil)

	tampered := strings.Replace(initData, "auth_date=1717171717", "auth_date=1717171718", 1)
	require.NotEqual(t, initData, tampered)

	assert.False(t, v.Verify(tampered))
}

func TestVerifier_Verify_WrongBotToken(t *testing.T) {
	v := NewVerifier("987654321:other-token")
	initData := signInitData(testBotToken, validPairs(), nil)

	assert.False(t, v.Verify(initData))
}

func TestVerifier_Verify_FailsClosed(t *testing.T) {
	v := NewVerifier(testBotToken)

	tests := []struct {
		name     string
		initData string
	}{
		{"empty input", ""},
		{"missing hash", "user=%7B%22id%22%3A42%7D&auth_date=1717171717"},
		{"empty hash", "auth_date=1717171717&hash="},
		{"undecodable percent escape", "auth_date=%ZZ&hash=deadbeef"},
		{"bare garbage", "&&&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, v.Verify(tt.initData))
		})
	}
}

func TestParseUser(t *testing.T) {
	initData := signInitData(testBotToken, validPairs(), nil)

	user, ok := ParseUser(initData)
	require.True(t, ok)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "ada_l", user.Username)
}

func TestParseUser_Anonymous(t *testing.T) {
	// Valid signature but no user field: an anonymous caller.
	pairs := map[string]string{"auth_date": "1717171717"}
	initData := signInitData(testBotToken, pairs, nil)

	v := NewVerifier(testBotToken)
	require.True(t, v.Verify(initData))

	user, ok := ParseUser(initData)
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestParseUser_MalformedJSON(t *testing.T) {
	pairs := map[string]string{
		"user":      `{"id":not-json`,
		"auth_date": "1717171717",
	}
	initData := signInitData(testBotToken, pairs, nil)

	user, ok := ParseUser(initData)
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestParseUser_EmptyInput(t *testing.T) {
	user, ok := ParseUser("")
	assert.False(t, ok)
	assert.Nil(t, user)
}
