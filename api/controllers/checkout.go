package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mateoreyes/drivehub-backend/api/middleware"
	"github.com/mateoreyes/drivehub-backend/api/responses"
	"github.com/mateoreyes/drivehub-backend/api/validators"
	"github.com/mateoreyes/drivehub-backend/internal/checkout"
	"github.com/mateoreyes/drivehub-backend/pkg/enums"
	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
	"github.com/mateoreyes/drivehub-backend/pkg/logger"
	"github.com/mateoreyes/drivehub-backend/pkg/types"
)

type startCheckoutRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

type updateItemQtyRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}

type setAddressesRequest struct {
	Billing  types.Address  `json:"billing" validate:"required"`
	Shipping *types.Address `json:"shipping,omitempty"`
}

type setShippingMethodRequest struct {
	Code string `json:"code" validate:"required"`
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type setPaymentMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

// CheckoutStart opens a fresh checkout session.
func CheckoutStart(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body startCheckoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Guests check out with just an email; authenticated carts keep the owner.
		var userID *uuid.UUID
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			if parsed, err := uuid.Parse(raw); err == nil {
				userID = &parsed
			}
		}

		session, err := svc.Start(r.Context(), userID, body.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// CheckoutGet returns the current session state.
func CheckoutGet(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.Get(r.Context(), id)
		})
	}
}

// CheckoutAddItem puts a listing into the cart at its current price.
func CheckoutAddItem(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.AddItem(r.Context(), id, productID, body.Qty)
		})
	}
}

// CheckoutUpdateItemQty changes a cart line's quantity.
func CheckoutUpdateItemQty(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku is required"))
			return
		}

		var body updateItemQtyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.UpdateItemQty(r.Context(), id, sku, body.Qty)
		})
	}
}

// CheckoutRemoveItem drops a cart line.
func CheckoutRemoveItem(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku is required"))
			return
		}

		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.RemoveItem(r.Context(), id, sku)
		})
	}
}

// CheckoutSetAddresses stores billing (and optionally shipping) details.
func CheckoutSetAddresses(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body setAddressesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.SetAddresses(r.Context(), id, body.Billing, body.Shipping)
		})
	}
}

// CheckoutSetShippingMethod selects a delivery option.
func CheckoutSetShippingMethod(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body setShippingMethodRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.SetShippingMethod(r.Context(), id, body.Code)
		})
	}
}

// CheckoutApplyCoupon validates and pins a discount to the session.
func CheckoutApplyCoupon(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body applyCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.ApplyCoupon(r.Context(), id, body.Code)
		})
	}
}

// CheckoutRemoveCoupon clears any applied discount.
func CheckoutRemoveCoupon(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.RemoveCoupon(r.Context(), id)
		})
	}
}

// CheckoutSetPaymentMethod records how the order will be paid.
func CheckoutSetPaymentMethod(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body setPaymentMethodRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.SetPaymentMethod(r.Context(), id, method)
		})
	}
}

// CheckoutAdvance moves the session to its next step if the current one is complete.
func CheckoutAdvance(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.Advance(r.Context(), id)
		})
	}
}

// CheckoutBack moves the session to its previous step.
func CheckoutBack(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.Back(r.Context(), id)
		})
	}
}

// CheckoutQuote derives the current totals without mutating the session.
func CheckoutQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		withSession(svc, logg, w, r, func(id string) (any, error) {
			return svc.QuoteFor(r.Context(), id)
		})
	}
}

// CheckoutSubmit places the order and discards the session.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id is required"))
			return
		}

		order, err := svc.Submit(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func withSession(svc checkout.Service, logg *logger.Logger, w http.ResponseWriter, r *http.Request, fn func(id string) (any, error)) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
		return
	}

	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id is required"))
		return
	}

	result, err := fn(sessionID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}
