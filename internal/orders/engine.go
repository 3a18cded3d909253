package orders

import (
	"context"

	"github.com/amarquez/solestore-storefront/internal/gateway"
	"github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
	"github.com/go-playground/validator/v10"
)

// cartRefresher is the slice of the cart store the engine needs when
// converting a cart into an order.
type cartRefresher interface {
	Snapshot() gateway.CartSnapshot
	Refresh(ctx context.Context) (gateway.CartSnapshot, error)
}

// Engine drives the order lifecycle: checkout, the status state
// machine, tracking, and the read side. Status legality is checked
// locally before any gateway call so illegal requests never leave the
// process.
type Engine struct {
	gw       gateway.Gateway
	logg     *logger.Logger
	validate *validator.Validate
}

func NewEngine(gw gateway.Gateway, logg *logger.Logger) *Engine {
	return &Engine{
		gw:       gw,
		logg:     logg,
		validate: validator.New(),
	}
}

// CreateFromCart converts the current cart into an order. An empty
// cart is rejected locally. On success the cart is refreshed; if that
// refresh fails the order still stands and the stale cart is kept
// until the next reconciliation.
func (e *Engine) CreateFromCart(ctx context.Context, identity auth.Identity, store cartRefresher, req gateway.CreateOrderRequest) (gateway.Order, error) {
	if identity.IsZero() {
		return gateway.Order{}, errors.New(errors.CodeAuthRequired, "checkout requires a signed-in user")
	}
	if store.Snapshot().TotalItems == 0 {
		return gateway.Order{}, errors.New(errors.CodeEmptyCart, "cannot place an order from an empty cart")
	}
	if !req.PaymentMethod.IsValid() {
		return gateway.Order{}, errors.New(errors.CodeValidation, "unknown payment method").
			WithDetails(map[string]string{"payment_method": string(req.PaymentMethod)})
	}
	if err := e.validate.Struct(req.ShippingAddress); err != nil {
		return gateway.Order{}, errors.Wrap(errors.CodeValidation, err, "incomplete shipping address")
	}

	ctx = e.logg.WithUserID(ctx, identity.UserID)
	order, err := e.gw.CreateOrder(ctx, identity, req)
	if err != nil {
		// A declined payment leaves the cart exactly as it was.
		return gateway.Order{}, err
	}

	if _, err := store.Refresh(ctx); err != nil {
		e.logg.Warn(e.logg.WithOrderID(ctx, order.ID), "post-checkout cart refresh failed")
	}

	e.logg.Info(e.logg.WithOrderID(ctx, order.ID), "order placed")
	return order, nil
}

// Transition moves an order to target. Only admins may drive the state
// machine, and only edges the transition table allows are attempted.
// When entering SHIPPED a tracking number may ride along; it is stamped
// after the status change, so a failed stamp still leaves the order
// shipped and SetTracking can finish the job.
func (e *Engine) Transition(ctx context.Context, identity auth.Identity, orderID int64, target enums.OrderStatus, tracking *string) (gateway.Order, error) {
	if err := requireAdmin(identity); err != nil {
		return gateway.Order{}, err
	}
	if !target.IsValid() {
		return gateway.Order{}, errors.New(errors.CodeValidation, "unknown order status").
			WithDetails(map[string]string{"status": string(target)})
	}

	ctx = e.logg.WithOrderID(e.logg.WithUserID(ctx, identity.UserID), orderID)

	current, err := e.gw.GetOrder(ctx, identity, orderID)
	if err != nil {
		return gateway.Order{}, err
	}
	if !current.Status.CanTransitionTo(target) {
		return gateway.Order{}, errors.New(errors.CodeIllegalTransition, "status transition disallowed").
			WithDetails(map[string]string{
				"from": current.Status.String(),
				"to":   target.String(),
			})
	}

	updated, err := e.gw.UpdateOrderStatus(ctx, identity, orderID, target)
	if err != nil {
		return gateway.Order{}, err
	}

	if target == enums.OrderStatusShipped && tracking != nil && *tracking != "" {
		updated, err = e.gw.UpdateTracking(ctx, identity, orderID, *tracking)
		if err != nil {
			return gateway.Order{}, err
		}
	}

	e.logg.Info(e.logg.WithField(ctx, "status", updated.Status.String()), "order status updated")
	return updated, nil
}

// MarkShipped is the PROCESSING to SHIPPED convenience step.
func (e *Engine) MarkShipped(ctx context.Context, identity auth.Identity, orderID int64, tracking *string) (gateway.Order, error) {
	return e.Transition(ctx, identity, orderID, enums.OrderStatusShipped, tracking)
}

// MarkDelivered is the SHIPPED to DELIVERED convenience step.
func (e *Engine) MarkDelivered(ctx context.Context, identity auth.Identity, orderID int64) (gateway.Order, error) {
	return e.Transition(ctx, identity, orderID, enums.OrderStatusDelivered, nil)
}

// SetTracking stamps or replaces the tracking number. It never moves
// the status, and terminal orders cannot be restamped.
func (e *Engine) SetTracking(ctx context.Context, identity auth.Identity, orderID int64, trackingNumber string) (gateway.Order, error) {
	if err := requireAdmin(identity); err != nil {
		return gateway.Order{}, err
	}
	if trackingNumber == "" {
		return gateway.Order{}, errors.New(errors.CodeValidation, "tracking number must not be empty")
	}

	ctx = e.logg.WithOrderID(e.logg.WithUserID(ctx, identity.UserID), orderID)

	current, err := e.gw.GetOrder(ctx, identity, orderID)
	if err != nil {
		return gateway.Order{}, err
	}
	if current.Status.IsTerminal() {
		return gateway.Order{}, errors.New(errors.CodeIllegalTransition, "tracking cannot change on a closed order").
			WithDetails(map[string]string{"status": current.Status.String()})
	}

	updated, err := e.gw.UpdateTracking(ctx, identity, orderID, trackingNumber)
	if err != nil {
		return gateway.Order{}, err
	}

	e.logg.Info(ctx, "tracking number updated")
	return updated, nil
}

// ListForOwner returns the caller's own orders.
func (e *Engine) ListForOwner(ctx context.Context, identity auth.Identity) ([]gateway.Order, error) {
	if identity.IsZero() {
		return nil, errors.New(errors.CodeAuthRequired, "listing orders requires a signed-in user")
	}
	return e.gw.ListOrders(ctx, identity)
}

// ListAll returns every order in the system. Admin only.
func (e *Engine) ListAll(ctx context.Context, identity auth.Identity) ([]gateway.Order, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	return e.gw.ListAllOrders(ctx, identity)
}

// Get returns a single order. The gateway enforces ownership, so a
// customer asking for someone else's order comes back NOT_FOUND.
func (e *Engine) Get(ctx context.Context, identity auth.Identity, orderID int64) (gateway.Order, error) {
	if identity.IsZero() {
		return gateway.Order{}, errors.New(errors.CodeAuthRequired, "fetching an order requires a signed-in user")
	}
	return e.gw.GetOrder(ctx, identity, orderID)
}

// Statistics returns the aggregated read-side view. Admin only.
func (e *Engine) Statistics(ctx context.Context, identity auth.Identity, timeframe enums.Timeframe) (gateway.Statistics, error) {
	if err := requireAdmin(identity); err != nil {
		return gateway.Statistics{}, err
	}
	if !timeframe.IsValid() {
		return gateway.Statistics{}, errors.New(errors.CodeValidation, "unknown timeframe").
			WithDetails(map[string]string{"timeframe": string(timeframe)})
	}
	return e.gw.FetchStatistics(ctx, identity, timeframe)
}

func requireAdmin(identity auth.Identity) error {
	if identity.IsZero() {
		return errors.New(errors.CodeAuthRequired, "authentication required")
	}
	if !identity.IsAdmin() {
		return errors.New(errors.CodeForbidden, "administrator role required")
	}
	return nil
}
