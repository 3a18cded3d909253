package devgateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/amarquez/solestore-storefront/api/middleware"
	"github.com/amarquez/solestore-storefront/api/responses"
	"github.com/amarquez/solestore-storefront/api/validators"
	"github.com/amarquez/solestore-storefront/internal/gateway"
	pkgauth "github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/config"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	pkgerrors "github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
	"github.com/amarquez/solestore-storefront/pkg/types"
)

type addItemRequest struct {
	ShoeID   int64 `json:"shoe_id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,min=1"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type mintTokenRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

type createOrderRequest struct {
	ShippingAddress types.Address     `json:"shipping_address" validate:"required"`
	PaymentMethod   string            `json:"payment_method" validate:"required"`
	PaymentDetails  map[string]string `json:"payment_details,omitempty"`
	OrderNotes      *string           `json:"order_notes,omitempty"`
	ShippingMethod  *string           `json:"shipping_method,omitempty"`
}

// NewRouter exposes the service over the wire contract the storefront
// client speaks.
func NewRouter(cfg *config.Config, svc *Service, logg *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeTransport, err, "database unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"db": "ok"})
	})

	// Dev convenience: mint tokens for manual testing.
	r.Post("/auth/token", mintToken(cfg, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", getCart(svc, logg))
			r.Post("/", addItem(svc, logg))
			r.Delete("/", clearCart(svc, logg))
			r.Put("/{lineID}", updateItem(svc, logg))
			r.Delete("/{lineID}", removeItem(svc, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", createOrder(svc, logg))
			r.Get("/", listOrders(svc, logg))
			r.Get("/all", listAllOrders(svc, logg))
			r.Get("/statistics", statistics(svc, logg))
			r.Get("/{orderID}", getOrder(svc, logg))
			r.Put("/{orderID}/status", updateStatus(svc, logg))
			r.Put("/{orderID}/tracking", updateTracking(svc, logg))
		})
	})

	return r
}

func mintToken(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body mintTokenRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown role"))
			return
		}
		token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{UserID: body.UserID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"token": token})
	}
}

func getCart(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		snap, err := svc.Cart(r.Context(), identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

func addItem(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		identity := middleware.IdentityFromContext(r.Context())
		if err := svc.AddItem(r.Context(), identity.UserID, body.ShoeID, body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, nil)
	}
}

func updateItem(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := validators.Int64Param(r, "lineID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		identity := middleware.IdentityFromContext(r.Context())
		if err := svc.UpdateItem(r.Context(), identity.UserID, lineID, body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func removeItem(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := validators.Int64Param(r, "lineID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		identity := middleware.IdentityFromContext(r.Context())
		if err := svc.RemoveItem(r.Context(), identity.UserID, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func clearCart(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		if err := svc.ClearCart(r.Context(), identity.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func createOrder(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown payment method"))
			return
		}
		identity := middleware.IdentityFromContext(r.Context())
		order, err := svc.CreateOrder(r.Context(), identity, gateway.CreateOrderRequest{
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
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func listOrders(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		orders, err := svc.ListOrders(r.Context(), identity.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func listAllOrders(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		orders, err := svc.ListAllOrders(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func getOrder(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.Int64Param(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		identity := middleware.IdentityFromContext(r.Context())
		order, err := svc.GetOrder(r.Context(), identity, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func updateStatus(svc *Service, logg *logger.Logger) http.HandlerFunc {
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
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status"))
			return
		}
		identity := middleware.IdentityFromContext(r.Context())
		order, err := svc.UpdateStatus(r.Context(), identity, orderID, target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func updateTracking(svc *Service, logg *logger.Logger) http.HandlerFunc {
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
		order, err := svc.UpdateTracking(r.Context(), identity, orderID, trackingNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func statistics(svc *Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeframe, err := enums.ParseTimeframe(r.URL.Query().Get("timeframe"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown timeframe"))
			return
		}
		identity := middleware.IdentityFromContext(r.Context())
		stats, err := svc.Statistics(r.Context(), identity, timeframe)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
