package devgateway

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amarquez/solestore-storefront/internal/gateway"
	"github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/config"
	"github.com/amarquez/solestore-storefront/pkg/db"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
	"github.com/amarquez/solestore-storefront/pkg/types"
)

// endToEnd stands up the dev gateway behind httptest and returns a
// wire client pointed at it, exercising the full contract both sides
// speak.
func endToEnd(t *testing.T) (*gateway.Client, *Service, config.JWTConfig) {
	t.Helper()

	dsn := fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name())
	client, err := db.New(context.Background(), config.DBConfig{Path: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	logg := logger.New(logger.Options{ServiceName: "devgateway-test", Output: io.Discard})
	svc := NewService(client, logg)
	require.NoError(t, svc.Migrate())

	jwtCfg := config.JWTConfig{Secret: "e2e-secret", Issuer: "solestore-test", ExpirationMinutes: 5}
	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, Port: "0"},
		JWT: jwtCfg,
	}

	srv := httptest.NewServer(NewRouter(cfg, svc, logg))
	t.Cleanup(srv.Close)

	wire := gateway.NewClient(config.GatewayConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second}, logg)
	return wire, svc, jwtCfg
}

func wireIdentity(t *testing.T, cfg config.JWTConfig, userID string, role enums.Role) auth.Identity {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{UserID: userID, Role: role})
	require.NoError(t, err)
	return auth.Identity{UserID: userID, Role: role, Token: token}
}

func TestEndToEndShoppingFlow(t *testing.T) {
	wire, svc, jwtCfg := endToEnd(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	identity := wireIdentity(t, jwtCfg, "cust-1", enums.RoleCustomer)

	require.NoError(t, wire.AddCartItem(context.Background(), identity, shoe.ID, 2))

	snap, err := wire.FetchCart(context.Background(), identity)
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.TotalItems)
	assert.True(t, snap.TotalPrice.Equal(decimal.RequireFromString("200.00")))

	order, err := wire.CreateOrder(context.Background(), identity, gateway.CreateOrderRequest{
		ShippingAddress: types.Address{
			FirstName: "Ada", LastName: "Lovelace",
			Line1: "12 Analytical Way", City: "London",
			State: "LDN", PostalCode: "EC1A", Country: "UK",
		},
		PaymentMethod: enums.PaymentMethodPaypal,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("200.00")))

	snap, err = wire.FetchCart(context.Background(), identity)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)

	list, err := wire.ListOrders(context.Background(), identity)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, order.ID, list[0].ID)
}

func TestEndToEndFulfillmentFlow(t *testing.T) {
	wire, svc, jwtCfg := endToEnd(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	customer := wireIdentity(t, jwtCfg, "cust-1", enums.RoleCustomer)
	admin := wireIdentity(t, jwtCfg, "adm-1", enums.RoleAdmin)

	require.NoError(t, wire.AddCartItem(context.Background(), customer, shoe.ID, 1))
	order, err := wire.CreateOrder(context.Background(), customer, gateway.CreateOrderRequest{
		ShippingAddress: types.Address{
			FirstName: "Ada", LastName: "Lovelace",
			Line1: "12 Analytical Way", City: "London",
			State: "LDN", PostalCode: "EC1A", Country: "UK",
		},
		PaymentMethod: enums.PaymentMethodPaypal,
	})
	require.NoError(t, err)

	updated, err := wire.UpdateOrderStatus(context.Background(), admin, order.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)

	updated, err = wire.UpdateTracking(context.Background(), admin, order.ID, "TRK-42")
	require.NoError(t, err)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, "TRK-42", *updated.TrackingNumber)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)

	// Skipping SHIPPED is rejected with the taxonomy code intact.
	_, err = wire.UpdateOrderStatus(context.Background(), admin, order.ID, enums.OrderStatusDelivered)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIllegalTransition))

	updated, err = wire.UpdateOrderStatus(context.Background(), admin, order.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	require.NotNil(t, updated.ShippedAt)

	updated, err = wire.UpdateOrderStatus(context.Background(), admin, order.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, updated.DeliveredAt)

	stats, err := wire.FetchStatistics(context.Background(), admin, enums.TimeframeAll)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)
}

func TestEndToEndAuthErrors(t *testing.T) {
	wire, _, jwtCfg := endToEnd(t)

	_, err := wire.FetchCart(context.Background(), auth.Identity{UserID: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeAuthRequired))

	customer := wireIdentity(t, jwtCfg, "cust-1", enums.RoleCustomer)
	_, err = wire.FetchStatistics(context.Background(), customer, enums.TimeframeAll)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}
