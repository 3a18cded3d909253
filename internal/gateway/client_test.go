package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/config"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() auth.Identity {
	return auth.Identity{UserID: "user-1", Role: enums.RoleCustomer, Token: "token-abc"}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.GatewayConfig{BaseURL: srv.URL, RequestTimeout: 2 * time.Second}, nil)
}

func TestFetchCartDecodesEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/cart", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"items":[{"id":1,"shoe_id":7,"unit_price":"100.00","quantity":2}],"total_items":2,"total_price":"200.00"}}`)
	})

	snap, err := client.FetchCart(context.Background(), testIdentity())
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, int64(7), snap.Items[0].ShoeID)
	assert.True(t, snap.TotalPrice.Equal(decimal.RequireFromString("200.00")))
}

func TestFetchCartEmptyItemsNeverNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"items":null,"total_items":0,"total_price":"0"}}`)
	})

	snap, err := client.FetchCart(context.Background(), testIdentity())
	require.NoError(t, err)
	assert.NotNil(t, snap.Items)
	assert.Empty(t, snap.Items)
}

func TestAddCartItemSendsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(7), body["shoe_id"])
		assert.Equal(t, float64(3), body["quantity"])
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.AddCartItem(context.Background(), testIdentity(), 7, 3)
	require.NoError(t, err)
}

func TestUpdateOrderStatusBuildsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders/42/status", r.URL.Path)
		assert.Equal(t, "SHIPPED", r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, `{"data":{"id":42,"status":"SHIPPED","total_amount":"10.00"}}`)
	})

	order, err := client.UpdateOrderStatus(context.Background(), testIdentity(), 42, enums.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, order.Status)
}

func TestUpdateTrackingEscapesValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/42/tracking", r.URL.Path)
		assert.Equal(t, "TRK 001", r.URL.Query().Get("trackingNumber"))
		_, _ = io.WriteString(w, `{"data":{"id":42,"status":"PROCESSING","total_amount":"10.00","tracking_number":"TRK 001"}}`)
	})

	order, err := client.UpdateTracking(context.Background(), testIdentity(), 42, "TRK 001")
	require.NoError(t, err)
	require.NotNil(t, order.TrackingNumber)
	assert.Equal(t, "TRK 001", *order.TrackingNumber)
}

func TestErrorEnvelopeCodeKeptVerbatim(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = io.WriteString(w, `{"error":{"code":"PAYMENT_ERROR","message":"card declined","details":{"reason":"insufficient funds"}}}`)
	})

	_, err := client.CreateOrder(context.Background(), testIdentity(), CreateOrderRequest{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodePayment))
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "card declined", typed.Message())
	assert.NotNil(t, typed.Details())
}

func TestUnknownCodeFallsBackToStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   errors.Code
	}{
		{http.StatusBadRequest, errors.CodeValidation},
		{http.StatusUnauthorized, errors.CodeAuthRequired},
		{http.StatusForbidden, errors.CodeForbidden},
		{http.StatusNotFound, errors.CodeNotFound},
		{http.StatusConflict, errors.CodeIllegalTransition},
		{http.StatusUnprocessableEntity, errors.CodeIllegalTransition},
		{http.StatusInternalServerError, errors.CodeTransport},
		{http.StatusBadGateway, errors.CodeTransport},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = io.WriteString(w, `{"error":{"code":"SOMETHING_NEW","message":"nope"}}`)
		})

		err := client.ClearCart(context.Background(), testIdentity())
		require.Error(t, err, "status %d", tc.status)
		assert.True(t, errors.IsCode(err, tc.want), "status %d mapped to %s", tc.status, errors.As(err).Code())
	}
}

func TestNetworkFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(config.GatewayConfig{BaseURL: srv.URL, RequestTimeout: time.Second}, nil)
	_, err := client.FetchCart(context.Background(), testIdentity())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeTransport))
	assert.True(t, errors.Retryable(err))
}

func TestListOrdersNeverNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null}`)
	})

	orders, err := client.ListOrders(context.Background(), testIdentity())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestFetchStatisticsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/statistics", r.URL.Path)
		assert.Equal(t, "week", r.URL.Query().Get("timeframe"))
		_, _ = io.WriteString(w, `{"data":{"timeframe":"week","total_revenue":"350.00","total_orders":3,"orders_by_date":{"2026-08-25":2,"2026-08-26":1}}}`)
	})

	stats, err := client.FetchStatistics(context.Background(), testIdentity(), enums.TimeframeWeek)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 2, stats.OrdersByDate["2026-08-25"])
}
