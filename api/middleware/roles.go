package middleware

import (
	"net/http"

	"github.com/amarquez/solestore-storefront/api/responses"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	pkgerrors "github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
)

func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IdentityFromContext(r.Context()).Role != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
