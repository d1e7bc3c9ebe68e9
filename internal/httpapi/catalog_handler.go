package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nijercart/storefront/internal/catalog"
	"github.com/nijercart/storefront/internal/catalog/repository"
)

// BookLister is the slice of the catalog repository the handler needs.
type BookLister interface {
	ListBooks(ctx context.Context) ([]catalog.Book, error)
	GetBook(ctx context.Context, id string) (*catalog.Book, error)
}

type CatalogHandler struct {
	books   BookLister
	timeout time.Duration
}

func NewCatalogHandler(books BookLister, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		books:   books,
		timeout: timeout,
	}
}

type BookListResponse struct {
	Books []catalog.Book `json:"books"`
	Total int            `json:"total"`
}

// ListBooks returns the active catalog filtered and sorted by the query
// parameters. Filtering happens in memory over the repository listing,
// so every filter combination behaves identically.
func (h *CatalogHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	books, err := h.books.ListBooks(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "catalog_unavailable", "failed to load books")
		return
	}

	q := r.URL.Query()
	filters := catalog.Filters{
		Query:     q.Get("q"),
		Condition: q.Get("condition"),
		Category:  q.Get("category"),
		Sort:      catalog.SortKey(q.Get("sort")),
	}
	if filters.Condition == "" {
		filters.Condition = catalog.AllConditions
	}
	if filters.Category == "" {
		filters.Category = catalog.AllCategories
	}

	filtered := catalog.Apply(books, filters)
	respondJSON(w, http.StatusOK, BookListResponse{
		Books: filtered,
		Total: len(filtered),
	})
}

func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	bookID := chi.URLParam(r, "book_id")
	if bookID == "" {
		respondError(w, http.StatusBadRequest, "invalid_book_id", "book_id must be provided")
		return
	}

	book, err := h.books.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			respondError(w, http.StatusNotFound, "book_not_found", "book does not exist")
			return
		}
		respondError(w, http.StatusInternalServerError, "catalog_unavailable", "failed to load book")
		return
	}

	respondJSON(w, http.StatusOK, book)
}
