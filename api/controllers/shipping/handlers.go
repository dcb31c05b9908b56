package shipping

import (
	"net/http"

	"github.com/angelmondragon/shipcalc-backend/api/controllers/shipping/dto"
	"github.com/angelmondragon/shipcalc-backend/api/responses"
	"github.com/angelmondragon/shipcalc-backend/api/validators"
	shippingsvc "github.com/angelmondragon/shipcalc-backend/internal/shipping"
	pkgerrors "github.com/angelmondragon/shipcalc-backend/pkg/errors"
	"github.com/angelmondragon/shipcalc-backend/pkg/logger"
)

// Calculate splits the posted cart into packages and prices it with the default carrier.
func Calculate(svc shippingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, ok := decodeCart(w, r, svc, logg)
		if !ok {
			return
		}

		result, err := svc.Calculate(r.Context(), items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// CartOptions returns the calculation plus the whole-cart carrier menu.
func CartOptions(svc shippingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, ok := decodeCart(w, r, svc, logg)
		if !ok {
			return
		}

		result, err := svc.CartOptions(r.Context(), items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PackageOptions returns one carrier menu per package with a default selection.
func PackageOptions(svc shippingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, ok := decodeCart(w, r, svc, logg)
		if !ok {
			return
		}

		result, err := svc.PackageOptions(r.Context(), items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func decodeCart(w http.ResponseWriter, r *http.Request, svc shippingsvc.Service, logg *logger.Logger) ([]shippingsvc.CartLineItem, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
		return nil, false
	}

	var payload dto.CartRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return toCartLines(payload), true
}
