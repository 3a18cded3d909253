package gateway

import (
	"context"
	"time"

	"github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/amarquez/solestore-storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// CartLine is a single selection inside the cart. UnitPrice is the
// catalog price snapshotted at add time; it is never re-fetched live.
type CartLine struct {
	ID        int64           `json:"id"`
	ShoeID    int64           `json:"shoe_id"`
	ShoeName  string          `json:"shoe_name,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Size      *string         `json:"size,omitempty"`
	Color     *string         `json:"color,omitempty"`
}

// CartSnapshot is the immutable value published to views. Zero lines
// is the canonical empty cart.
type CartSnapshot struct {
	Items      []CartLine      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderLine is a frozen copy of a cart line taken at conversion time.
type OrderLine struct {
	ShoeID   int64           `json:"shoe_id"`
	ShoeName string          `json:"shoe_name,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Size     *string         `json:"size,omitempty"`
	Color    *string         `json:"color,omitempty"`
}

// Order is a placed order as reported by the gateway.
type Order struct {
	ID              int64               `json:"id"`
	OwnerID         string              `json:"owner_id"`
	Items           []OrderLine         `json:"items"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Status          enums.OrderStatus   `json:"status"`
	ShippingAddress types.Address       `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	TrackingNumber  *string             `json:"tracking_number,omitempty"`
	OrderDate       time.Time           `json:"order_date"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
}

// Statistics is the reconciled read-side aggregate contract. It is
// recomputed from the order collection on every query.
type Statistics struct {
	Timeframe        enums.Timeframe `json:"timeframe"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	TotalOrders      int             `json:"total_orders"`
	PendingOrders    int             `json:"pending_orders"`
	ProcessingOrders int             `json:"processing_orders"`
	ShippedOrders    int             `json:"shipped_orders"`
	DeliveredOrders  int             `json:"delivered_orders"`
	CancelledOrders  int             `json:"cancelled_orders"`
	OrdersByDate     map[string]int  `json:"orders_by_date"`
}

// CreateOrderRequest carries the checkout payload. PaymentDetails is
// opaque to the core and consumed by the external payment step.
type CreateOrderRequest struct {
	ShippingAddress types.Address       `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentDetails  map[string]string   `json:"payment_details,omitempty"`
	OrderNotes      *string             `json:"order_notes,omitempty"`
	ShippingMethod  *string             `json:"shipping_method,omitempty"`
}

// Gateway is the remote catalog/inventory contract. Every call is
// scoped to the supplied identity; results are authoritative and the
// caller must not second-guess them.
type Gateway interface {
	FetchCart(ctx context.Context, identity auth.Identity) (CartSnapshot, error)
	AddCartItem(ctx context.Context, identity auth.Identity, shoeID int64, quantity int) error
	UpdateCartItem(ctx context.Context, identity auth.Identity, lineID int64, quantity int) error
	RemoveCartItem(ctx context.Context, identity auth.Identity, lineID int64) error
	ClearCart(ctx context.Context, identity auth.Identity) error

	CreateOrder(ctx context.Context, identity auth.Identity, req CreateOrderRequest) (Order, error)
	ListOrders(ctx context.Context, identity auth.Identity) ([]Order, error)
	ListAllOrders(ctx context.Context, identity auth.Identity) ([]Order, error)
	GetOrder(ctx context.Context, identity auth.Identity, orderID int64) (Order, error)
	UpdateOrderStatus(ctx context.Context, identity auth.Identity, orderID int64, status enums.OrderStatus) (Order, error)
	UpdateTracking(ctx context.Context, identity auth.Identity, orderID int64, trackingNumber string) (Order, error)
	FetchStatistics(ctx context.Context, identity auth.Identity, timeframe enums.Timeframe) (Statistics, error)
}

// EmptySnapshot returns the canonical empty cart.
func EmptySnapshot() CartSnapshot {
	return CartSnapshot{
		Items:      []CartLine{},
		TotalItems: 0,
		TotalPrice: decimal.Zero,
	}
}
