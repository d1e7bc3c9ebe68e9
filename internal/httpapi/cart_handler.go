package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nijercart/storefront/internal/cart/domain"
	"github.com/nijercart/storefront/internal/cart/service"
	catalogrepo "github.com/nijercart/storefront/internal/catalog/repository"
	"github.com/nijercart/storefront/internal/pricing"
)

// CartOperations is the slice of the cart service the handler needs.
type CartOperations interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, bookID string, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID, bookID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, bookID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	carts   CartOperations
	timeout time.Duration
}

func NewCartHandler(carts CartOperations, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartLineDTO struct {
	BookID        string    `json:"book_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	UnitPrice     float64   `json:"unit_price"`
	ImageURL      string    `json:"image_url,omitempty"`
	Quantity      int       `json:"quantity"`
	StockQuantity int       `json:"stock_quantity"`
	AddedAt       time.Time `json:"added_at"`
}

// CartResponse pairs the cart lines with the same quote breakdown the
// checkout page uses, so the two never disagree on totals.
type CartResponse struct {
	UserID         string        `json:"user_id"`
	Lines          []CartLineDTO `json:"lines"`
	TotalItems     int           `json:"total_items"`
	Subtotal       float64       `json:"subtotal"`
	DeliveryCharge float64       `json:"delivery_charge"`
	Total          float64       `json:"total"`
}

func cartResponse(cart *domain.Cart) CartResponse {
	lines := make([]CartLineDTO, 0, len(cart.Lines))
	items := make([]pricing.Item, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, CartLineDTO{
			BookID:        l.BookID,
			Title:         l.Title,
			Author:        l.Author,
			UnitPrice:     l.UnitPrice,
			ImageURL:      l.ImageURL,
			Quantity:      l.Quantity,
			StockQuantity: l.StockQuantity,
			AddedAt:       l.AddedAt,
		})
		items = append(items, pricing.Item{
			UnitPrice: decimal.NewFromFloat(l.UnitPrice),
			Quantity:  l.Quantity,
		})
	}

	quote := pricing.NewQuote(items, nil)
	return CartResponse{
		UserID:         cart.UserID,
		Lines:          lines,
		TotalItems:     cart.TotalItems(),
		Subtotal:       quote.Subtotal.InexactFloat64(),
		DeliveryCharge: quote.DeliveryCharge.InexactFloat64(),
		Total:          quote.Total.InexactFloat64(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	cart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.BookID == "" {
		respondError(w, http.StatusBadRequest, "invalid_book_id", "book_id must be provided")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	cart, err := h.carts.AddItem(ctx, userID, req.BookID, req.Quantity)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(cart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	bookID := chi.URLParam(r, "book_id")
	if bookID == "" {
		respondError(w, http.StatusBadRequest, "invalid_book_id", "book_id must be provided")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	cart, err := h.carts.UpdateQuantity(ctx, userID, bookID, req.Quantity)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	bookID := chi.URLParam(r, "book_id")
	if bookID == "" {
		respondError(w, http.StatusBadRequest, "invalid_book_id", "book_id must be provided")
		return
	}

	cart, err := h.carts.RemoveItem(ctx, userID, bookID)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.carts.ClearCart(ctx, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", "book is out of stock")
	case errors.Is(err, catalogrepo.ErrBookNotFound):
		respondError(w, http.StatusNotFound, "book_not_found", "book does not exist or is not for sale")
	case errors.Is(err, service.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", "book is not in the cart")
	default:
		respondError(w, http.StatusInternalServerError, "cart_unavailable", "failed to update cart")
	}
}
