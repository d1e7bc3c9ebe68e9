package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	cartdomain "github.com/nijercart/storefront/internal/cart/domain"
	catalogrepo "github.com/nijercart/storefront/internal/catalog/repository"
	"github.com/nijercart/storefront/internal/checkout"
	"github.com/nijercart/storefront/internal/orders/domain"
	"github.com/nijercart/storefront/internal/orders/repository"
	"github.com/nijercart/storefront/internal/pricing"
)

// CheckoutSubmitter is the slice of the checkout service the handler needs.
type CheckoutSubmitter interface {
	Submit(ctx context.Context, req *checkout.SubmitRequest) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkouts CheckoutSubmitter
	timeout   time.Duration
}

func NewCheckoutHandler(checkouts CheckoutSubmitter, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		timeout:   timeout,
	}
}

// Submit places an order from the cart, or from a single book when the
// body carries buy_now. Replays with the same idempotency key return the
// order created the first time.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req checkout.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.UserID = userID

	order, err := h.checkouts.Submit(ctx, &req)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var validationErr *checkout.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   http.StatusText(http.StatusUnprocessableEntity),
			Code:    "validation_failed",
			Details: "one or more fields are invalid",
			Fields:  validationErr.Fields,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart is empty, nothing to check out")
	case errors.Is(err, cartdomain.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", "book is out of stock")
	case errors.Is(err, catalogrepo.ErrBookNotFound):
		respondError(w, http.StatusNotFound, "book_not_found", "book does not exist or is not for sale")
	case errors.Is(err, repository.ErrPromoLimitExceeded):
		respondError(w, http.StatusConflict, "promo_limit_reached", "promo code usage limit reached")
	case isPromoError(err):
		handlePromoError(w, err)
	default:
		respondError(w, http.StatusInternalServerError, "checkout_failed", "failed to place order")
	}
}

func isPromoError(err error) bool {
	for _, sentinel := range []error{
		pricing.ErrPromoNotFound,
		pricing.ErrPromoInactive,
		pricing.ErrPromoNotYetActive,
		pricing.ErrPromoExpired,
		pricing.ErrPromoUsageLimitReached,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
