package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amarquez/solestore-storefront/api/controllers"
	"github.com/amarquez/solestore-storefront/api/middleware"
	"github.com/amarquez/solestore-storefront/internal/cart"
	"github.com/amarquez/solestore-storefront/internal/orders"
	"github.com/amarquez/solestore-storefront/pkg/config"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/amarquez/solestore-storefront/pkg/logger"
	"github.com/amarquez/solestore-storefront/pkg/metrics"
)

// NewRouter wires the storefront facade. All shopping routes require a
// valid bearer token; fulfillment administration additionally requires
// the admin role.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTP,
	registry *cart.Registry,
	engine *orders.Engine,
	pingers ...controllers.NamedPinger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(logg, pingers...))
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/session/logout", controllers.SessionLogout(registry, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(registry, logg))
			r.Post("/", controllers.CartAdd(registry, logg))
			r.Delete("/", controllers.CartClear(registry, logg))
			r.Put("/{lineID}", controllers.CartUpdate(registry, logg))
			r.Delete("/{lineID}", controllers.CartRemove(registry, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrdersCreate(engine, registry, logg))
			r.Get("/", controllers.OrdersList(engine, logg))
			r.Get("/{orderID}", controllers.OrdersGet(engine, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

				r.Get("/all", controllers.OrdersListAll(engine, logg))
				r.Get("/statistics", controllers.OrdersStatistics(engine, logg))
				r.Put("/{orderID}/status", controllers.OrdersUpdateStatus(engine, logg))
				r.Put("/{orderID}/tracking", controllers.OrdersTracking(engine, logg))
				r.Put("/{orderID}/shipped", controllers.OrdersShipped(engine, logg))
				r.Put("/{orderID}/delivered", controllers.OrdersDelivered(engine, logg))
			})
		})
	})

	return r
}
