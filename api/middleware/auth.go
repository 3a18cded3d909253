package middleware

import (
	"net/http"
	"strings"

	"github.com/amarquez/solestore-storefront/api/responses"
	pkgauth "github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/config"
	pkgerrors "github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// caller identity. The raw token stays on the identity so downstream
// gateway calls can forward it.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeAuthRequired, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeAuthRequired, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeAuthRequired, err, "invalid token"))
				return
			}

			identity := claims.Identity(token)
			ctx := WithIdentity(r.Context(), identity)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    identity.UserID,
					"actor_role": identity.Role.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
