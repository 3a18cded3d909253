package devgateway

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/amarquez/solestore-storefront/internal/gateway"
	"github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/db"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
	"github.com/amarquez/solestore-storefront/pkg/money"
)

// declinedCardSuffix triggers a simulated payment decline so checkout
// failure paths can be exercised locally.
const declinedCardSuffix = "0002"

// Service implements the gateway semantics on an embedded sqlite
// database. It is the authoritative side of the contract the
// storefront core consumes.
type Service struct {
	db   *db.Client
	logg *logger.Logger
	now  func() time.Time
}

func NewService(client *db.Client, logg *logger.Logger) *Service {
	return &Service{db: client, logg: logg, now: time.Now}
}

// Migrate creates the schema.
func (s *Service) Migrate() error {
	return s.db.DB().AutoMigrate(&Shoe{}, &CartRow{}, &OrderRow{}, &OrderLineRow{})
}

// Ping reports whether the datasource is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Service) Cart(ctx context.Context, userID string) (gateway.CartSnapshot, error) {
	var rows []CartRow
	if err := s.db.DB().WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return gateway.CartSnapshot{}, errors.Wrap(errors.CodeInternal, err, "loading cart")
	}
	return snapshotFromRows(rows), nil
}

// AddItem puts quantity units of a shoe into the cart. A line for the
// same shoe is merged rather than duplicated, and the resulting
// quantity is clamped to available stock.
func (s *Service) AddItem(ctx context.Context, userID string, shoeID int64, quantity int) error {
	if quantity < 1 {
		return errors.New(errors.CodeValidation, "quantity must be at least 1")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var shoe Shoe
		if err := tx.First(&shoe, shoeID).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "shoe not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "loading shoe")
		}
		if shoe.Stock < 1 {
			return errors.New(errors.CodeValidation, "shoe is out of stock").
				WithDetails(map[string]any{"shoe_id": shoeID})
		}

		var existing CartRow
		err := tx.Where("user_id = ? AND shoe_id = ?", userID, shoeID).First(&existing).Error
		switch {
		case err == nil:
			merged := clamp(existing.Quantity+quantity, shoe.Stock)
			existing.Quantity = merged
			return tx.Save(&existing).Error
		case stderrors.Is(err, gorm.ErrRecordNotFound):
			row := CartRow{
				UserID:    userID,
				ShoeID:    shoe.ID,
				ShoeName:  shoe.Name,
				UnitPrice: shoe.EffectivePrice(),
				Quantity:  clamp(quantity, shoe.Stock),
			}
			return tx.Create(&row).Error
		default:
			return errors.Wrap(errors.CodeInternal, err, "loading cart line")
		}
	})
}

// UpdateItem sets the quantity of an existing line, clamped to stock.
func (s *Service) UpdateItem(ctx context.Context, userID string, lineID int64, quantity int) error {
	if quantity < 1 {
		return errors.New(errors.CodeValidation, "quantity must be at least 1")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var row CartRow
		if err := tx.Where("id = ? AND user_id = ?", lineID, userID).First(&row).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "cart line not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "loading cart line")
		}

		var shoe Shoe
		if err := tx.First(&shoe, row.ShoeID).Error; err != nil {
			return errors.Wrap(errors.CodeInternal, err, "loading shoe")
		}

		row.Quantity = clamp(quantity, shoe.Stock)
		return tx.Save(&row).Error
	})
}

func (s *Service) RemoveItem(ctx context.Context, userID string, lineID int64) error {
	result := s.db.DB().WithContext(ctx).Where("id = ? AND user_id = ?", lineID, userID).Delete(&CartRow{})
	if result.Error != nil {
		return errors.Wrap(errors.CodeInternal, result.Error, "deleting cart line")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.CodeNotFound, "cart line not found")
	}
	return nil
}

func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if err := s.db.DB().WithContext(ctx).Where("user_id = ?", userID).Delete(&CartRow{}).Error; err != nil {
		return errors.Wrap(errors.CodeInternal, err, "clearing cart")
	}
	return nil
}

// CreateOrder converts the cart into an order in one transaction:
// stock is re-checked and deducted, lines are frozen at their cart
// prices, and the cart is emptied. Nothing moves if any step fails.
func (s *Service) CreateOrder(ctx context.Context, identity auth.Identity, req gateway.CreateOrderRequest) (gateway.Order, error) {
	if declined(req) {
		return gateway.Order{}, errors.New(errors.CodePayment, "card declined").
			WithDetails(map[string]string{"reason": "card declined by issuer"})
	}

	var created OrderRow
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var rows []CartRow
		if err := tx.Where("user_id = ?", identity.UserID).Order("id").Find(&rows).Error; err != nil {
			return errors.Wrap(errors.CodeInternal, err, "loading cart")
		}
		if len(rows) == 0 {
			return errors.New(errors.CodeEmptyCart, "cart is empty")
		}

		total := decimal.Zero
		lines := make([]OrderLineRow, 0, len(rows))
		for _, row := range rows {
			var shoe Shoe
			if err := tx.First(&shoe, row.ShoeID).Error; err != nil {
				return errors.Wrap(errors.CodeInternal, err, "loading shoe")
			}
			if shoe.Stock < row.Quantity {
				return errors.New(errors.CodeValidation, "insufficient stock").
					WithDetails(map[string]any{"shoe_id": shoe.ID, "available": shoe.Stock, "requested": row.Quantity})
			}
			shoe.Stock -= row.Quantity
			if err := tx.Save(&shoe).Error; err != nil {
				return errors.Wrap(errors.CodeInternal, err, "deducting stock")
			}

			total = total.Add(money.LineTotal(row.UnitPrice, row.Quantity))
			lines = append(lines, OrderLineRow{
				ShoeID:   row.ShoeID,
				ShoeName: row.ShoeName,
				Price:    row.UnitPrice,
				Quantity: row.Quantity,
				Size:     row.Size,
				Color:    row.Color,
			})
		}

		created = OrderRow{
			OwnerID:         identity.UserID,
			Status:          enums.OrderStatusPending.String(),
			TotalAmount:     money.RoundCents(total),
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod.String(),
			OrderNotes:      req.OrderNotes,
			ShippingMethod:  req.ShippingMethod,
			OrderDate:       s.now(),
			Lines:           lines,
		}
		if err := tx.Create(&created).Error; err != nil {
			return errors.Wrap(errors.CodeInternal, err, "creating order")
		}

		if err := tx.Where("user_id = ?", identity.UserID).Delete(&CartRow{}).Error; err != nil {
			return errors.Wrap(errors.CodeInternal, err, "clearing cart")
		}
		return nil
	})
	if err != nil {
		return gateway.Order{}, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, created.ID), "order created")
	}
	return orderFromRow(created), nil
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]gateway.Order, error) {
	return s.listOrders(ctx, s.db.DB().WithContext(ctx).Where("owner_id = ?", userID))
}

func (s *Service) ListAllOrders(ctx context.Context, identity auth.Identity) ([]gateway.Order, error) {
	if !identity.IsAdmin() {
		return nil, errors.New(errors.CodeForbidden, "administrator role required")
	}
	return s.listOrders(ctx, s.db.DB().WithContext(ctx))
}

func (s *Service) listOrders(ctx context.Context, query *gorm.DB) ([]gateway.Order, error) {
	var rows []OrderRow
	if err := query.Preload("Lines").Order("order_date DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing orders")
	}
	orders := make([]gateway.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, orderFromRow(row))
	}
	return orders, nil
}

// GetOrder enforces ownership: a customer asking for another user's
// order gets NOT_FOUND, never FORBIDDEN, to avoid leaking existence.
func (s *Service) GetOrder(ctx context.Context, identity auth.Identity, orderID int64) (gateway.Order, error) {
	row, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return gateway.Order{}, err
	}
	if !identity.IsAdmin() && row.OwnerID != identity.UserID {
		return gateway.Order{}, errors.New(errors.CodeNotFound, "order not found")
	}
	return orderFromRow(row), nil
}

// UpdateStatus drives the state machine. Entering SHIPPED or DELIVERED
// stamps the matching timestamp; cancelling restores stock.
func (s *Service) UpdateStatus(ctx context.Context, identity auth.Identity, orderID int64, target enums.OrderStatus) (gateway.Order, error) {
	if !identity.IsAdmin() {
		return gateway.Order{}, errors.New(errors.CodeForbidden, "administrator role required")
	}

	var updated OrderRow
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var row OrderRow
		if err := tx.Preload("Lines").First(&row, orderID).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New(errors.CodeNotFound, "order not found")
			}
			return errors.Wrap(errors.CodeInternal, err, "loading order")
		}

		current := enums.OrderStatus(row.Status)
		if !current.CanTransitionTo(target) {
			return errors.New(errors.CodeIllegalTransition, "status transition disallowed").
				WithDetails(map[string]string{"from": current.String(), "to": target.String()})
		}

		now := s.now()
		row.Status = target.String()
		switch target {
		case enums.OrderStatusShipped:
			row.ShippedAt = &now
		case enums.OrderStatusDelivered:
			row.DeliveredAt = &now
		case enums.OrderStatusCancelled:
			for _, line := range row.Lines {
				if err := tx.Model(&Shoe{}).Where("id = ?", line.ShoeID).
					Update("stock", gorm.Expr("stock + ?", line.Quantity)).Error; err != nil {
					return errors.Wrap(errors.CodeInternal, err, "restoring stock")
				}
			}
		}

		if err := tx.Save(&row).Error; err != nil {
			return errors.Wrap(errors.CodeInternal, err, "saving order")
		}
		updated = row
		return nil
	})
	if err != nil {
		return gateway.Order{}, err
	}
	return orderFromRow(updated), nil
}

// UpdateTracking stamps the tracking number without touching status.
// Closed orders cannot be restamped.
func (s *Service) UpdateTracking(ctx context.Context, identity auth.Identity, orderID int64, trackingNumber string) (gateway.Order, error) {
	if !identity.IsAdmin() {
		return gateway.Order{}, errors.New(errors.CodeForbidden, "administrator role required")
	}
	if strings.TrimSpace(trackingNumber) == "" {
		return gateway.Order{}, errors.New(errors.CodeValidation, "tracking number must not be empty")
	}

	row, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return gateway.Order{}, err
	}
	if enums.OrderStatus(row.Status).IsTerminal() {
		return gateway.Order{}, errors.New(errors.CodeIllegalTransition, "tracking cannot change on a closed order").
			WithDetails(map[string]string{"status": row.Status})
	}

	row.TrackingNumber = &trackingNumber
	if err := s.db.DB().WithContext(ctx).Save(&row).Error; err != nil {
		return gateway.Order{}, errors.Wrap(errors.CodeInternal, err, "saving order")
	}
	return orderFromRow(row), nil
}

// Statistics recomputes the aggregate view from the order collection.
// Cancelled orders are counted but excluded from revenue.
func (s *Service) Statistics(ctx context.Context, identity auth.Identity, timeframe enums.Timeframe) (gateway.Statistics, error) {
	if !identity.IsAdmin() {
		return gateway.Statistics{}, errors.New(errors.CodeForbidden, "administrator role required")
	}

	query := s.db.DB().WithContext(ctx)
	if start := timeframe.Start(s.now()); !start.IsZero() {
		query = query.Where("order_date >= ?", start)
	}

	var rows []OrderRow
	if err := query.Find(&rows).Error; err != nil {
		return gateway.Statistics{}, errors.Wrap(errors.CodeInternal, err, "loading orders")
	}

	stats := gateway.Statistics{
		Timeframe:    timeframe,
		TotalRevenue: decimal.Zero,
		OrdersByDate: map[string]int{},
	}
	for _, row := range rows {
		stats.TotalOrders++
		stats.OrdersByDate[row.OrderDate.Format("2006-01-02")]++

		switch enums.OrderStatus(row.Status) {
		case enums.OrderStatusPending:
			stats.PendingOrders++
		case enums.OrderStatusProcessing:
			stats.ProcessingOrders++
		case enums.OrderStatusShipped:
			stats.ShippedOrders++
		case enums.OrderStatusDelivered:
			stats.DeliveredOrders++
		case enums.OrderStatusCancelled:
			stats.CancelledOrders++
			continue
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(row.TotalAmount)
	}
	stats.TotalRevenue = money.RoundCents(stats.TotalRevenue)
	return stats, nil
}

func (s *Service) loadOrder(ctx context.Context, orderID int64) (OrderRow, error) {
	var row OrderRow
	if err := s.db.DB().WithContext(ctx).Preload("Lines").First(&row, orderID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return OrderRow{}, errors.New(errors.CodeNotFound, "order not found")
		}
		return OrderRow{}, errors.Wrap(errors.CodeInternal, err, "loading order")
	}
	return row, nil
}

func declined(req gateway.CreateOrderRequest) bool {
	if req.PaymentMethod != enums.PaymentMethodCreditCard {
		return false
	}
	card := strings.ReplaceAll(req.PaymentDetails["card_number"], " ", "")
	return strings.HasSuffix(card, declinedCardSuffix)
}

func clamp(quantity, stock int) int {
	if quantity > stock {
		return stock
	}
	return quantity
}

func snapshotFromRows(rows []CartRow) gateway.CartSnapshot {
	snap := gateway.EmptySnapshot()
	total := decimal.Zero
	for _, row := range rows {
		snap.Items = append(snap.Items, gateway.CartLine{
			ID:        row.ID,
			ShoeID:    row.ShoeID,
			ShoeName:  row.ShoeName,
			UnitPrice: row.UnitPrice,
			Quantity:  row.Quantity,
			Size:      row.Size,
			Color:     row.Color,
		})
		snap.TotalItems += row.Quantity
		total = total.Add(money.LineTotal(row.UnitPrice, row.Quantity))
	}
	snap.TotalPrice = money.RoundCents(total)
	return snap
}

func orderFromRow(row OrderRow) gateway.Order {
	items := make([]gateway.OrderLine, 0, len(row.Lines))
	for _, line := range row.Lines {
		items = append(items, gateway.OrderLine{
			ShoeID:   line.ShoeID,
			ShoeName: line.ShoeName,
			Price:    line.Price,
			Quantity: line.Quantity,
			Size:     line.Size,
			Color:    line.Color,
		})
	}
	return gateway.Order{
		ID:              row.ID,
		OwnerID:         row.OwnerID,
		Items:           items,
		TotalAmount:     row.TotalAmount,
		Status:          enums.OrderStatus(row.Status),
		ShippingAddress: row.ShippingAddress,
		PaymentMethod:   enums.PaymentMethod(row.PaymentMethod),
		TrackingNumber:  row.TrackingNumber,
		OrderDate:       row.OrderDate,
		ShippedAt:       row.ShippedAt,
		DeliveredAt:     row.DeliveredAt,
	}
}
