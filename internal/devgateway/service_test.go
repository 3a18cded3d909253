package devgateway

import (
	"context"
	"fmt"
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
	"github.com/amarquez/solestore-storefront/pkg/types"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	client, err := db.New(context.Background(), config.DBConfig{Path: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	svc := NewService(client, nil)
	require.NoError(t, svc.Migrate())
	return svc
}

func seedShoe(t *testing.T, svc *Service, price string, discount, stock int) Shoe {
	t.Helper()
	shoe := Shoe{
		Name:            "Test Runner",
		Brand:           "Testbrand",
		Price:           decimal.RequireFromString(price),
		DiscountPercent: discount,
		Stock:           stock,
	}
	require.NoError(t, svc.db.DB().Create(&shoe).Error)
	return shoe
}

func custIdentity() auth.Identity {
	return auth.Identity{UserID: "cust-1", Role: enums.RoleCustomer}
}

func adminIdentity() auth.Identity {
	return auth.Identity{UserID: "adm-1", Role: enums.RoleAdmin}
}

func shippingAddress() types.Address {
	return types.Address{
		FirstName: "Ada", LastName: "Lovelace",
		Line1: "12 Analytical Way", City: "London",
		State: "LDN", PostalCode: "EC1A", Country: "UK",
	}
}

func placeOrder(t *testing.T, svc *Service) gateway.Order {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), custIdentity(), gateway.CreateOrderRequest{
		ShippingAddress: shippingAddress(),
		PaymentMethod:   enums.PaymentMethodPaypal,
	})
	require.NoError(t, err)
	return order
}

func TestAddItemClampsToStock(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 3)

	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 10))

	snap, err := svc.Cart(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 3, snap.Items[0].Quantity)
}

func TestAddItemMergesDuplicateLines(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)

	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 2))
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 3))

	snap, err := svc.Cart(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 5, snap.Items[0].Quantity)
	assert.True(t, snap.TotalPrice.Equal(decimal.RequireFromString("500.00")))
}

func TestRemoveItemDeletesExistingLine(t *testing.T) {
	svc := newTestService(t)
	keep := seedShoe(t, svc, "100.00", 0, 5)
	drop := seedShoe(t, svc, "150.00", 0, 5)

	require.NoError(t, svc.AddItem(context.Background(), "cust-1", keep.ID, 1))
	before, err := svc.Cart(context.Background(), "cust-1")
	require.NoError(t, err)

	require.NoError(t, svc.AddItem(context.Background(), "cust-1", drop.ID, 2))
	snap, err := svc.Cart(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)

	var lineID int64
	for _, line := range snap.Items {
		if line.ShoeID == drop.ID {
			lineID = line.ID
		}
	}
	require.NotZero(t, lineID)

	require.NoError(t, svc.RemoveItem(context.Background(), "cust-1", lineID))
	after, err := svc.Cart(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddItemSnapshotsDiscountedPrice(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "200.00", 10, 5)

	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 1))

	snap, err := svc.Cart(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.True(t, snap.Items[0].UnitPrice.Equal(decimal.RequireFromString("180.00")))
}

func TestAddItemUnknownShoe(t *testing.T) {
	svc := newTestService(t)

	err := svc.AddItem(context.Background(), "cust-1", 404, 1)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestCreateOrderFreezesPricesAndClearsCart(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 2))

	// A price hike after the item is carted must not affect checkout.
	require.NoError(t, svc.db.DB().Model(&Shoe{}).Where("id = ?", shoe.ID).
		Update("price", decimal.RequireFromString("150.00")).Error)

	order := placeOrder(t, svc)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("200.00")))
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("100.00")))

	snap, err := svc.Cart(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Empty(t, snap.Items)

	var reloaded Shoe
	require.NoError(t, svc.db.DB().First(&reloaded, shoe.ID).Error)
	assert.Equal(t, 8, reloaded.Stock)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateOrder(context.Background(), custIdentity(), gateway.CreateOrderRequest{
		ShippingAddress: shippingAddress(),
		PaymentMethod:   enums.PaymentMethodPaypal,
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeEmptyCart))
}

func TestCreateOrderDeclinedCardLeavesEverything(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 2))

	_, err := svc.CreateOrder(context.Background(), custIdentity(), gateway.CreateOrderRequest{
		ShippingAddress: shippingAddress(),
		PaymentMethod:   enums.PaymentMethodCreditCard,
		PaymentDetails:  map[string]string{"card_number": "4000 0000 0000 0002"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodePayment))

	snap, err := svc.Cart(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)

	var reloaded Shoe
	require.NoError(t, svc.db.DB().First(&reloaded, shoe.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)
}

func TestUpdateStatusStampsTimestamps(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 1))
	order := placeOrder(t, svc)

	order, err := svc.UpdateStatus(context.Background(), adminIdentity(), order.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Nil(t, order.ShippedAt)

	order, err = svc.UpdateStatus(context.Background(), adminIdentity(), order.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	require.NotNil(t, order.ShippedAt)

	order, err = svc.UpdateStatus(context.Background(), adminIdentity(), order.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	require.NotNil(t, order.DeliveredAt)
	assert.True(t, !order.DeliveredAt.Before(*order.ShippedAt))
}

func TestUpdateStatusRejectsIllegalEdge(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 1))
	order := placeOrder(t, svc)

	_, err := svc.UpdateStatus(context.Background(), adminIdentity(), order.ID, enums.OrderStatusDelivered)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIllegalTransition))
}

func TestCancelRestoresStock(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 4))
	order := placeOrder(t, svc)

	var afterOrder Shoe
	require.NoError(t, svc.db.DB().First(&afterOrder, shoe.ID).Error)
	require.Equal(t, 6, afterOrder.Stock)

	_, err := svc.UpdateStatus(context.Background(), adminIdentity(), order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)

	var restored Shoe
	require.NoError(t, svc.db.DB().First(&restored, shoe.ID).Error)
	assert.Equal(t, 10, restored.Stock)
}

func TestUpdateTrackingKeepsStatus(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 1))
	order := placeOrder(t, svc)

	updated, err := svc.UpdateTracking(context.Background(), adminIdentity(), order.ID, "TRK-9")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, updated.Status)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, "TRK-9", *updated.TrackingNumber)
}

func TestUpdateTrackingRejectedOnClosedOrder(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 1))
	order := placeOrder(t, svc)

	_, err := svc.UpdateStatus(context.Background(), adminIdentity(), order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)

	_, err = svc.UpdateTracking(context.Background(), adminIdentity(), order.ID, "TRK-9")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIllegalTransition))
}

func TestGetOrderOwnershipHidesOthers(t *testing.T) {
	svc := newTestService(t)
	shoe := seedShoe(t, svc, "100.00", 0, 10)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 1))
	order := placeOrder(t, svc)

	_, err := svc.GetOrder(context.Background(), auth.Identity{UserID: "cust-2", Role: enums.RoleCustomer}, order.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	got, err := svc.GetOrder(context.Background(), adminIdentity(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "cust-1", got.OwnerID)
}

func TestStatisticsRecomputedPerQuery(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }

	shoe := seedShoe(t, svc, "100.00", 0, 50)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 2))
	first := placeOrder(t, svc)

	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 1))
	second := placeOrder(t, svc)

	_, err := svc.UpdateStatus(context.Background(), adminIdentity(), second.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)

	stats, err := svc.Statistics(context.Background(), adminIdentity(), enums.TimeframeAll)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	// Cancelled orders do not contribute revenue.
	assert.True(t, stats.TotalRevenue.Equal(first.TotalAmount))
	assert.Equal(t, 2, stats.OrdersByDate["2026-08-25"])

	_, err = svc.UpdateStatus(context.Background(), adminIdentity(), first.ID, enums.OrderStatusProcessing)
	require.NoError(t, err)

	stats, err = svc.Statistics(context.Background(), adminIdentity(), enums.TimeframeAll)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingOrders)
	assert.Equal(t, 1, stats.ProcessingOrders)
}

func TestStatisticsTimeframeFiltersOldOrders(t *testing.T) {
	svc := newTestService(t)

	svc.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
	shoe := seedShoe(t, svc, "100.00", 0, 50)
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 1))
	placeOrder(t, svc)

	svc.now = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.AddItem(context.Background(), "cust-1", shoe.ID, 1))
	placeOrder(t, svc)

	stats, err := svc.Statistics(context.Background(), adminIdentity(), enums.TimeframeWeek)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalOrders)

	stats, err = svc.Statistics(context.Background(), adminIdentity(), enums.TimeframeAll)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
}

func TestAdminGuards(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ListAllOrders(context.Background(), custIdentity())
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	_, err = svc.Statistics(context.Background(), custIdentity(), enums.TimeframeAll)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))

	_, err = svc.UpdateStatus(context.Background(), custIdentity(), 1, enums.OrderStatusProcessing)
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}
