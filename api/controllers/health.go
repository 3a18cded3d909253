package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/amarquez/solestore-storefront/api/responses"
	"github.com/amarquez/solestore-storefront/pkg/config"
	pkgerrors "github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
)

// NamedPinger pairs a dependency name with its health probe.
type NamedPinger struct {
	Name string
	Ping func(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}

func HealthReady(logg *logger.Logger, pingers ...NamedPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var combined error
		status := map[string]string{}
		for _, p := range pingers {
			if p.Ping == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				combined = multierr.Append(combined, err)
				status[p.Name] = "down"
				continue
			}
			status[p.Name] = "ok"
		}

		if combined != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeTransport, combined, "dependency unavailable").WithDetails(status))
			return
		}
		responses.WriteSuccess(w, status)
	}
}
