package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nijercart/storefront/internal/pricing"
)

// PromoApplier is the slice of the checkout service the handler needs.
type PromoApplier interface {
	ApplyPromo(ctx context.Context, code string) (*pricing.PromoCode, error)
}

type PromoHandler struct {
	promos  PromoApplier
	carts   CartOperations
	timeout time.Duration
}

func NewPromoHandler(promos PromoApplier, carts CartOperations, timeout time.Duration) *PromoHandler {
	return &PromoHandler{
		promos:  promos,
		carts:   carts,
		timeout: timeout,
	}
}

type ApplyPromoRequestDTO struct {
	Code string `json:"code"`
}

// ApplyPromoResponse previews the discounted totals for the current cart
// without consuming the code. used_count only moves when an order commits.
type ApplyPromoResponse struct {
	Code           string  `json:"code"`
	DiscountType   string  `json:"discount_type"`
	DiscountValue  float64 `json:"discount_value"`
	Subtotal       float64 `json:"subtotal"`
	DeliveryCharge float64 `json:"delivery_charge"`
	Discount       float64 `json:"discount"`
	Total          float64 `json:"total"`
}

func (h *PromoHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req ApplyPromoRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid_code", "code must be provided")
		return
	}

	promo, err := h.promos.ApplyPromo(ctx, req.Code)
	if err != nil {
		handlePromoError(w, err)
		return
	}

	cart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "failed to load cart")
		return
	}

	items := make([]pricing.Item, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, pricing.Item{
			UnitPrice: decimal.NewFromFloat(l.UnitPrice),
			Quantity:  l.Quantity,
		})
	}
	quote := pricing.NewQuote(items, promo)

	respondJSON(w, http.StatusOK, ApplyPromoResponse{
		Code:           promo.Code,
		DiscountType:   string(promo.DiscountType),
		DiscountValue:  promo.DiscountValue.InexactFloat64(),
		Subtotal:       quote.Subtotal.InexactFloat64(),
		DeliveryCharge: quote.DeliveryCharge.InexactFloat64(),
		Discount:       quote.Discount.InexactFloat64(),
		Total:          quote.Total.InexactFloat64(),
	})
}

func handlePromoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrPromoNotFound):
		respondError(w, http.StatusNotFound, "promo_not_found", "promo code not found")
	case errors.Is(err, pricing.ErrPromoInactive):
		respondError(w, http.StatusUnprocessableEntity, "promo_inactive", "promo code is not active")
	case errors.Is(err, pricing.ErrPromoNotYetActive):
		respondError(w, http.StatusUnprocessableEntity, "promo_not_yet_active", "promo code is not valid yet")
	case errors.Is(err, pricing.ErrPromoExpired):
		respondError(w, http.StatusUnprocessableEntity, "promo_expired", "promo code has expired")
	case errors.Is(err, pricing.ErrPromoUsageLimitReached):
		respondError(w, http.StatusUnprocessableEntity, "promo_limit_reached", "promo code usage limit reached")
	default:
		respondError(w, http.StatusInternalServerError, "promo_unavailable", "failed to apply promo code")
	}
}
