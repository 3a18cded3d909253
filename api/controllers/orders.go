package controllers

import (
	"net/http"

	"github.com/amarquez/solestore-storefront/api/middleware"
	"github.com/amarquez/solestore-storefront/api/responses"
	"github.com/amarquez/solestore-storefront/api/validators"
	"github.com/amarquez/solestore-storefront/internal/cart"
	"github.com/amarquez/solestore-storefront/internal/gateway"
	"github.com/amarquez/solestore-storefront/internal/orders"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	pkgerrors "github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
	"github.com/amarquez/solestore-storefront/pkg/types"
)

type createOrderRequest struct {
	ShippingAddress types.Address     `json:"shipping_address" validate:"required"`
	PaymentMethod   string            `json:"payment_method" validate:"required"`
	PaymentDetails  map[string]string `json:"payment_details,omitempty"`
	OrderNotes      *string           `json:"order_notes,omitempty"`
	ShippingMethod  *string           `json:"shipping_method,omitempty"`
}

func OrdersCreate(engine *orders.Engine, registry *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment method"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := engine.CreateFromCart(r.Context(), identity, registry.For(identity), gateway.CreateOrderRequest{
			ShippingAddress: body.ShippingAddress,
			PaymentMethod:   method,
			PaymentDetails:  body.PaymentDetails,
			OrderNotes:      body.OrderNotes,
			ShippingMethod:  body.ShippingMethod,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, NewOrderView(order))
	}
}

func OrdersList(engine *orders.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		list, err := engine.ListForOwner(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderViews(list))
	}
}

func OrdersListAll(engine *orders.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		list, err := engine.ListAll(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderViews(list))
	}
}

func OrdersGet(engine *orders.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.Int64Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := engine.Get(r.Context(), identity, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderView(order))
	}
}

// OrdersUpdateStatus drives the state machine through the generic
// status endpoint. A trackingNumber may ride along when the target is
// SHIPPED.
func OrdersUpdateStatus(engine *orders.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.Int64Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw, err := validators.QueryString(r, "status")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status"))
			return
		}

		var tracking *string
		if v := r.URL.Query().Get("trackingNumber"); v != "" {
			tracking = &v
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := engine.Transition(r.Context(), identity, orderID, target, tracking)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderView(order))
	}
}

func OrdersTracking(engine *orders.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.Int64Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trackingNumber, err := validators.QueryString(r, "trackingNumber")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := engine.SetTracking(r.Context(), identity, orderID, trackingNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderView(order))
	}
}

func OrdersShipped(engine *orders.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.Int64Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var tracking *string
		if v := r.URL.Query().Get("trackingNumber"); v != "" {
			tracking = &v
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := engine.MarkShipped(r.Context(), identity, orderID, tracking)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderView(order))
	}
}

func OrdersDelivered(engine *orders.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.Int64Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := engine.MarkDelivered(r.Context(), identity, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderView(order))
	}
}

func OrdersStatistics(engine *orders.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeframe, err := enums.ParseTimeframe(r.URL.Query().Get("timeframe"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown timeframe"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		stats, err := engine.Statistics(r.Context(), identity, timeframe)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
