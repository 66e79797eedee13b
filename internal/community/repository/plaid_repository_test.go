package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-stock-circle/internal/community/config"
	"golang-stock-circle/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlaidServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client", body["client_id"])
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/link/token/create":
			user := body["user"].(map[string]interface{})
			assert.Equal(t, "7", user["client_user_id"])
			fmt.Fprint(w, `{"link_token":"link-sandbox-123","expiration":"2026-10-17T12:00:00Z","request_id":"r1"}`)
		case "/item/public_token/exchange":
			if body["public_token"] == "bad" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error_type":"INVALID_INPUT","error_code":"INVALID_PUBLIC_TOKEN","error_message":"bad token"}`)
				return
			}
			fmt.Fprint(w, `{"access_token":"access-sandbox-1","item_id":"item-1","request_id":"r2"}`)
		case "/investments/holdings/get":
			fmt.Fprint(w, `{
				"holdings":[
					{"security_id":"s1","quantity":10,"cost_basis":150.5,"institution_price":189.25,"institution_value":1892.5},
					{"security_id":"s2","quantity":3.5,"cost_basis":null,"institution_price":null,"institution_value":null}
				],
				"securities":[
					{"security_id":"s1","name":"Apple Inc.","ticker_symbol":"AAPL"},
					{"security_id":"s2","name":"Money Market","ticker_symbol":null}
				]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPlaidRepository(t *testing.T) {
	server := newPlaidServer(t)
	repo := NewPlaidRepository(config.Plaid{
		BaseURL:             server.URL,
		ClientID:            "client",
		Secret:              "secret",
		ClientName:          "Stock Circle",
		Products:            []string{"investments"},
		CountryCodes:        []string{"US"},
		MaxRequestPerMinute: 6000,
	}, logger.NewNop())
	ctx := context.Background()

	token, err := repo.CreateLinkToken(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "link-sandbox-123", token.LinkToken)

	exchanged, err := repo.ExchangePublicToken(ctx, "public-sandbox")
	require.NoError(t, err)
	assert.Equal(t, "access-sandbox-1", exchanged.AccessToken)
	assert.Equal(t, "item-1", exchanged.ItemID)

	_, err = repo.ExchangePublicToken(ctx, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_PUBLIC_TOKEN")

	holdings, err := repo.GetHoldings(ctx, "access-sandbox-1")
	require.NoError(t, err)
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, "10", holdings[0].Quantity.String())
	assert.True(t, holdings[0].CostBasis.Valid)
	assert.Equal(t, "", holdings[1].Symbol)
	assert.False(t, holdings[1].CurrentPrice.Valid)
}

func TestPlaidRepository_ZeroRateFallsBackToDefault(t *testing.T) {
	server := newPlaidServer(t)
	var repo PlaidRepository
	require.NotPanics(t, func() {
		repo = NewPlaidRepository(config.Plaid{BaseURL: server.URL}, logger.NewNop())
	})

	token, err := repo.CreateLinkToken(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "link-sandbox-123", token.LinkToken)
}
