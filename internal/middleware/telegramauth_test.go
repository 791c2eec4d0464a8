package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemart/telemart/internal/telegram"
)

const testBotToken = "123456789:AAF0o0Wq1XzkqQP9eR3bTlVnY8mC4dGhJkL"

func signInitData(t *testing.T, pairs map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	encoded := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		lines = append(lines, k+"="+pairs[k])
		encoded = append(encoded, url.QueryEscape(k)+"="+url.QueryEscape(pairs[k]))
	}

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(testBotToken))
	mac := hmac.New(sha256.New, secretMac.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))

	encoded = append(encoded, "hash="+hex.EncodeToString(mac.Sum(nil)))
	return strings.Join(encoded, "&")
}

func userInitData(t *testing.T) string {
	return signInitData(t, map[string]string{
		"user":      `{"id":42,"first_name":"Ada","username":"ada_l"}`,
		"auth_date": "1717171717",
	})
}

func authedHandler(t *testing.T, sawUser *bool, wantUserID int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetTelegramUser(r.Context())
		if user != nil {
			*sawUser = true
			assert.Equal(t, wantUserID, user.ID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestTelegramAuth_QueryParam(t *testing.T) {
	verifier := telegram.NewVerifier(testBotToken)
	sawUser := false
	h := TelegramAuth(verifier)(authedHandler(t, &sawUser, 42))

	req := httptest.NewRequest(http.MethodGet, "/api/cart?initData="+url.QueryEscape(userInitData(t)), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawUser, "handler should have seen the authenticated user")
}

func TestTelegramAuth_JSONBody(t *testing.T) {
	verifier := telegram.NewVerifier(testBotToken)
	sawUser := false

	var gotBody struct {
		InitData string `json:"initData"`
		Note     string `json:"note"`
	}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetTelegramUser(r.Context()) != nil {
			sawUser = true
		}
		// The body must still be fully readable downstream.
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})
	h := TelegramAuth(verifier)(inner)

	body, err := json.Marshal(map[string]string{
		"initData": userInitData(t),
		"note":     "keep me",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawUser)
	assert.Equal(t, "keep me", gotBody.Note)
}

func TestTelegramAuth_MissingInitData(t *testing.T) {
	verifier := telegram.NewVerifier(testBotToken)
	h := TelegramAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTelegramAuth_InvalidSignature(t *testing.T) {
	verifier := telegram.NewVerifier(testBotToken)
	h := TelegramAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	initData := "auth_date=1717171717&hash=" + strings.Repeat("ab", 32)
	req := httptest.NewRequest(http.MethodGet, "/api/cart?initData="+url.QueryEscape(initData), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "forbidden", resp.Error.Code)
}

func TestTelegramAuth_AnonymousPasses(t *testing.T) {
	verifier := telegram.NewVerifier(testBotToken)
	initData := signInitData(t, map[string]string{"auth_date": "1717171717"})

	h := TelegramAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, GetTelegramUser(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products?initData="+url.QueryEscape(initData), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTelegramUser_Anonymous(t *testing.T) {
	verifier := telegram.NewVerifier(testBotToken)
	initData := signInitData(t, map[string]string{"auth_date": "1717171717"})

	h := TelegramAuth(verifier)(RequireTelegramUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/cart?initData="+url.QueryEscape(initData), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestID_Generated(t *testing.T) {
	var fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetRequestID(r.Context())
		io.WriteString(w, "ok")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, fromCtx)
	assert.Equal(t, fromCtx, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_Propagated(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "upstream-id", GetRequestID(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", rec.Header().Get(RequestIDHeader))
}
