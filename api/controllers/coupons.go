package controllers

import (
	"net/http"

	"github.com/mateoreyes/drivehub-backend/api/responses"
	"github.com/mateoreyes/drivehub-backend/api/validators"
	"github.com/mateoreyes/drivehub-backend/internal/coupons"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
	"github.com/mateoreyes/drivehub-backend/pkg/logger"
)

type validateCouponRequest struct {
	Code          string `json:"code" validate:"required"`
	SubtotalCents int    `json:"subtotal_cents" validate:"required,min=1"`
}

// CouponsValidate checks a code against the current subtotal.
func CouponsValidate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}

		var body validateCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Validate(r.Context(), body.Code, body.SubtotalCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
