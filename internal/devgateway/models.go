package devgateway

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amarquez/solestore-storefront/pkg/types"
)

// Shoe is a catalog entry. Stock is the clamp ceiling for cart
// quantities and is deducted at checkout.
type Shoe struct {
	ID              int64           `gorm:"primaryKey"`
	Name            string          `gorm:"not null"`
	Brand           string          `gorm:"not null"`
	Price           decimal.Decimal `gorm:"type:numeric;not null"`
	DiscountPercent int             `gorm:"not null;default:0"`
	Stock           int             `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EffectivePrice applies the discount and rounds to cents. This is the
// value frozen onto cart lines.
func (s Shoe) EffectivePrice() decimal.Decimal {
	if s.DiscountPercent <= 0 {
		return s.Price.Round(2)
	}
	factor := decimal.NewFromInt(int64(100 - s.DiscountPercent)).Div(decimal.NewFromInt(100))
	return s.Price.Mul(factor).Round(2)
}

// CartRow is one line of a user's server-side cart.
type CartRow struct {
	ID        int64           `gorm:"primaryKey"`
	UserID    string          `gorm:"index;not null"`
	ShoeID    int64           `gorm:"index;not null"`
	ShoeName  string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity  int             `gorm:"not null"`
	Size      *string
	Color     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderRow is a placed order with its frozen lines.
type OrderRow struct {
	ID              int64           `gorm:"primaryKey"`
	OwnerID         string          `gorm:"index;not null"`
	Status          string          `gorm:"index;not null"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric;not null"`
	ShippingAddress types.Address   `gorm:"serializer:json"`
	PaymentMethod   string          `gorm:"not null"`
	TrackingNumber  *string
	OrderNotes      *string
	ShippingMethod  *string
	OrderDate       time.Time `gorm:"index;not null"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	Lines           []OrderLineRow `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderLineRow snapshots a cart line at conversion time. Price never
// changes after the order is placed.
type OrderLineRow struct {
	ID       int64           `gorm:"primaryKey"`
	OrderID  int64           `gorm:"index;not null"`
	ShoeID   int64           `gorm:"not null"`
	ShoeName string          `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:numeric;not null"`
	Quantity int             `gorm:"not null"`
	Size     *string
	Color    *string
}
