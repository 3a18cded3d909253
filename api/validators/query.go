package validators

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/amarquez/solestore-storefront/pkg/errors"
)

// Int64Param parses a chi URL parameter as a positive int64 id.
func Int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).
			WithDetails(map[string]string{name: "must be a positive integer"})
	}
	return value, nil
}

// QueryString returns a required query parameter.
func QueryString(r *http.Request, name string) (string, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "missing "+name).
			WithDetails(map[string]string{name: "is required"})
	}
	return value, nil
}
