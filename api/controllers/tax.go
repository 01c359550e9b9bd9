package controllers

import (
	"net/http"

	"github.com/mateoreyes/drivehub-backend/api/responses"
	"github.com/mateoreyes/drivehub-backend/api/validators"
	"github.com/mateoreyes/drivehub-backend/internal/tax"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
	"github.com/mateoreyes/drivehub-backend/pkg/logger"
)

type calculateTaxRequest struct {
	State        string `json:"state" validate:"required"`
	TaxableCents int    `json:"taxable_cents" validate:"min=0"`
}

type calculateTaxResponse struct {
	State    string `json:"state"`
	TaxCents int    `json:"tax_cents"`
}

// TaxCalculate quotes tax for a destination state.
func TaxCalculate(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tax service unavailable"))
			return
		}

		var body calculateTaxRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cents, err := svc.CalculateCents(r.Context(), body.State, body.TaxableCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, calculateTaxResponse{State: body.State, TaxCents: cents})
	}
}
