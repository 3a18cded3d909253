package controllers

import (
	"time"

	"github.com/amarquez/solestore-storefront/internal/gateway"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/amarquez/solestore-storefront/pkg/money"
	"github.com/amarquez/solestore-storefront/pkg/types"
)

// CartLineView is one cart row shaped for rendering. Amounts are fixed
// to two decimal places.
type CartLineView struct {
	ID        int64   `json:"id"`
	ShoeID    int64   `json:"shoe_id"`
	ShoeName  string  `json:"shoe_name,omitempty"`
	UnitPrice string  `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	LineTotal string  `json:"line_total"`
	Size      *string `json:"size,omitempty"`
	Color     *string `json:"color,omitempty"`
}

type CartView struct {
	Items      []CartLineView `json:"items"`
	TotalItems int            `json:"total_items"`
	TotalPrice string         `json:"total_price"`
	IsEmpty    bool           `json:"is_empty"`
}

func NewCartView(snap gateway.CartSnapshot) CartView {
	items := make([]CartLineView, 0, len(snap.Items))
	for _, line := range snap.Items {
		items = append(items, CartLineView{
			ID:        line.ID,
			ShoeID:    line.ShoeID,
			ShoeName:  line.ShoeName,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Quantity:  line.Quantity,
			LineTotal: money.RoundCents(money.LineTotal(line.UnitPrice, line.Quantity)).StringFixed(2),
			Size:      line.Size,
			Color:     line.Color,
		})
	}
	return CartView{
		Items:      items,
		TotalItems: snap.TotalItems,
		TotalPrice: snap.TotalPrice.StringFixed(2),
		IsEmpty:    snap.TotalItems == 0,
	}
}

// orderProgress maps each status onto a linear fulfillment step for
// progress rendering. Cancelled orders report no progress.
var orderProgress = map[enums.OrderStatus]int{
	enums.OrderStatusPending:    1,
	enums.OrderStatusProcessing: 2,
	enums.OrderStatusShipped:    3,
	enums.OrderStatusDelivered:  4,
}

type OrderLineView struct {
	ShoeID   int64   `json:"shoe_id"`
	ShoeName string  `json:"shoe_name,omitempty"`
	Price    string  `json:"price"`
	Quantity int     `json:"quantity"`
	Size     *string `json:"size,omitempty"`
	Color    *string `json:"color,omitempty"`
}

type OrderView struct {
	ID              int64           `json:"id"`
	Items           []OrderLineView `json:"items"`
	TotalAmount     string          `json:"total_amount"`
	ItemCount       int             `json:"item_count"`
	Status          string          `json:"status"`
	ProgressStep    int             `json:"progress_step"`
	ProgressTotal   int             `json:"progress_total"`
	CanCancel       bool            `json:"can_cancel"`
	ShippingAddress types.Address   `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	TrackingNumber  *string         `json:"tracking_number,omitempty"`
	OrderDate       time.Time       `json:"order_date"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
}

func NewOrderView(order gateway.Order) OrderView {
	items := make([]OrderLineView, 0, len(order.Items))
	count := 0
	for _, line := range order.Items {
		count += line.Quantity
		items = append(items, OrderLineView{
			ShoeID:   line.ShoeID,
			ShoeName: line.ShoeName,
			Price:    line.Price.StringFixed(2),
			Quantity: line.Quantity,
			Size:     line.Size,
			Color:    line.Color,
		})
	}
	return OrderView{
		ID:              order.ID,
		Items:           items,
		TotalAmount:     order.TotalAmount.StringFixed(2),
		ItemCount:       count,
		Status:          order.Status.String(),
		ProgressStep:    orderProgress[order.Status],
		ProgressTotal:   len(orderProgress),
		CanCancel:       order.Status.CanTransitionTo(enums.OrderStatusCancelled),
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod.String(),
		TrackingNumber:  order.TrackingNumber,
		OrderDate:       order.OrderDate,
		ShippedAt:       order.ShippedAt,
		DeliveredAt:     order.DeliveredAt,
	}
}

func NewOrderViews(orders []gateway.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, NewOrderView(order))
	}
	return views
}
