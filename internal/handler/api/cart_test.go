package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telemart/telemart/internal/domain"
)

func newCartHandler(t *testing.T) *CartHandler {
	product := testProduct(t)
	return NewCartHandler(testCartManager(), &productStoreStub{
		products: map[uuid.UUID]domain.Product{product.ID: product},
	})
}

func addItem(t *testing.T, h *CartHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body))
	req = withUser(req, testUser)
	rec := httptest.NewRecorder()
	h.HandleAddItem(rec, req)
	return rec
}

func TestCartHandler_AddItem(t *testing.T) {
	h := newCartHandler(t)
	product := testProduct(t)

	rec := addItem(t, h, `{
		"productId": "`+product.ID.String()+`",
		"quantity": 2,
		"addons": {"Spicy level": "Hot"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var state domain.CartState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.TotalItems)
	assert.Equal(t, int64(2598), state.TotalAmountCents)
	assert.Equal(t, "Hot", state.Items[0].Addons["Spicy level"])
}

func TestCartHandler_AddItem_MissingRequiredAddon(t *testing.T) {
	h := newCartHandler(t)
	product := testProduct(t)

	rec := addItem(t, h, `{"productId": "`+product.ID.String()+`", "quantity": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_AddItem_UnknownAddonGroup(t *testing.T) {
	h := newCartHandler(t)
	product := testProduct(t)

	rec := addItem(t, h, `{
		"productId": "`+product.ID.String()+`",
		"quantity": 1,
		"addons": {"Spicy level": "Hot", "Gift wrap": "Yes"}
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_AddItem_InvalidOption(t *testing.T) {
	h := newCartHandler(t)
	product := testProduct(t)

	rec := addItem(t, h, `{
		"productId": "`+product.ID.String()+`",
		"quantity": 1,
		"addons": {"Spicy level": "Nuclear"}
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_AddItem_UnknownProduct(t *testing.T) {
	h := newCartHandler(t)

	rec := addItem(t, h, `{"productId": "`+uuid.New().String()+`", "quantity": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartHandler_Unauthenticated(t *testing.T) {
	h := newCartHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartHandler_UpdateAndRemove(t *testing.T) {
	h := newCartHandler(t)
	product := testProduct(t)

	rec := addItem(t, h, `{
		"productId": "`+product.ID.String()+`",
		"quantity": 1,
		"addons": {"Spicy level": "Mild"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var state domain.CartState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	itemID := state.Items[0].ID

	req := httptest.NewRequest(http.MethodPut, "/api/cart/items/"+itemID, strings.NewReader(`{"quantity": 5}`))
	req.SetPathValue("itemId", itemID)
	req = withUser(req, testUser)
	rec = httptest.NewRecorder()
	h.HandleUpdateItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	assert.Equal(t, 5, state.TotalItems)

	req = httptest.NewRequest(http.MethodDelete, "/api/cart/items/"+itemID, nil)
	req.SetPathValue("itemId", itemID)
	req = withUser(req, testUser)
	rec = httptest.NewRecorder()
	h.HandleRemoveItem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	assert.Empty(t, state.Items)
	assert.Zero(t, state.TotalItems)
	assert.Zero(t, state.TotalAmountCents)
}

func TestCartHandler_CartsArePerUser(t *testing.T) {
	h := newCartHandler(t)
	product := testProduct(t)

	rec := addItem(t, h, `{
		"productId": "`+product.ID.String()+`",
		"quantity": 1,
		"addons": {"Spicy level": "Mild"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	other := &domain.TelegramUser{ID: 99, FirstName: "Grace"}
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req = withUser(req, other)
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var state domain.CartState
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	assert.Empty(t, state.Items)
}

func TestCartHandler_Clear(t *testing.T) {
	h := newCartHandler(t)
	product := testProduct(t)

	rec := addItem(t, h, `{
		"productId": "`+product.ID.String()+`",
		"quantity": 3,
		"addons": {"Spicy level": "Medium"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/cart", nil)
	req = withUser(req, testUser)
	rec = httptest.NewRecorder()
	h.HandleClear(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"totalItems":0,"totalAmount":0}`, rec.Body.String())
}
