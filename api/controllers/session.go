package controllers

import (
	"net/http"

	"github.com/amarquez/solestore-storefront/api/middleware"
	"github.com/amarquez/solestore-storefront/api/responses"
	"github.com/amarquez/solestore-storefront/internal/cart"
	"github.com/amarquez/solestore-storefront/pkg/logger"
)

// SessionLogout drops the caller's cached cart so the next sign-in
// starts from the gateway's state, never a stale local copy.
func SessionLogout(registry *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		registry.Drop(identity.UserID)

		if logg != nil {
			logg.Info(r.Context(), "session ended")
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
