package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nijercart/storefront/internal/catalog"
	catalogrepo "github.com/nijercart/storefront/internal/catalog/repository"
	"github.com/nijercart/storefront/internal/wishlist"
)

// WishlistOperations is the slice of the wishlist service the handler needs.
type WishlistOperations interface {
	Fetch(ctx context.Context, userID string) ([]wishlist.Entry, error)
	Add(ctx context.Context, userID string, book catalog.Book) (*wishlist.Entry, error)
	Remove(ctx context.Context, userID, bookID string) error
}

type WishlistHandler struct {
	wishlists WishlistOperations
	books     BookLister
	timeout   time.Duration
}

func NewWishlistHandler(wishlists WishlistOperations, books BookLister, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		books:     books,
		timeout:   timeout,
	}
}

type AddWishlistRequestDTO struct {
	BookID string `json:"book_id"`
}

type WishlistResponse struct {
	Entries []wishlist.Entry `json:"entries"`
	Total   int              `json:"total"`
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	entries, err := h.wishlists.Fetch(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "wishlist_unavailable", "failed to load wishlist")
		return
	}

	respondJSON(w, http.StatusOK, WishlistResponse{Entries: entries, Total: len(entries)})
}

func (h *WishlistHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddWishlistRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.BookID == "" {
		respondError(w, http.StatusBadRequest, "invalid_book_id", "book_id must be provided")
		return
	}

	book, err := h.books.GetBook(ctx, req.BookID)
	if err != nil {
		if errors.Is(err, catalogrepo.ErrBookNotFound) {
			respondError(w, http.StatusNotFound, "book_not_found", "book does not exist")
			return
		}
		respondError(w, http.StatusInternalServerError, "catalog_unavailable", "failed to load book")
		return
	}

	entry, err := h.wishlists.Add(ctx, userID, *book)
	if err != nil {
		if errors.Is(err, wishlist.ErrDuplicateEntry) {
			respondError(w, http.StatusConflict, "duplicate_entry", "book is already in the wishlist")
			return
		}
		respondError(w, http.StatusInternalServerError, "wishlist_unavailable", "failed to add book")
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

func (h *WishlistHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
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

	if err := h.wishlists.Remove(ctx, userID, bookID); err != nil {
		respondError(w, http.StatusInternalServerError, "wishlist_unavailable", "failed to remove book")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
