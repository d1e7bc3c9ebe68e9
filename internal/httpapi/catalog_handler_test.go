package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nijercart/storefront/internal/catalog"
	"github.com/nijercart/storefront/internal/catalog/repository"
)

type BookListerMock struct {
	books []catalog.Book
	err   error
}

func (m BookListerMock) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.books, nil
}

func (m BookListerMock) GetBook(ctx context.Context, id string) (*catalog.Book, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.books {
		if m.books[i].ID == id {
			return &m.books[i], nil
		}
	}
	return nil, repository.ErrBookNotFound
}

func sampleBooks() []catalog.Book {
	return []catalog.Book{
		{ID: "b1", Title: "The Alchemist", Author: "Paulo Coelho", Category: "Fiction", Condition: catalog.ConditionNew, Price: 450, Rating: 4.5},
		{ID: "b2", Title: "Clean Code", Author: "Robert Martin", Category: "Technology", Condition: catalog.ConditionUsed, Price: 800, Rating: 4.8},
		{ID: "b3", Title: "Gitanjali", Author: "Rabindranath Tagore", Category: "Poetry", Condition: catalog.ConditionNew, Price: 250, Rating: 4.9},
	}
}

func TestListBooks_FiltersAndSorts(t *testing.T) {
	handler := NewCatalogHandler(BookListerMock{books: sampleBooks()}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/?condition=new&sort=price_asc", nil)

	handler.ListBooks(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response BookListResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Total != 2 {
		t.Fatalf("Expected 2 books, got %d", response.Total)
	}
	if response.Books[0].ID != "b3" || response.Books[1].ID != "b1" {
		t.Errorf("Expected price ascending order [b3 b1], got [%s %s]", response.Books[0].ID, response.Books[1].ID)
	}
}

func TestListBooks_NoParamsReturnsAll(t *testing.T) {
	handler := NewCatalogHandler(BookListerMock{books: sampleBooks()}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	handler.ListBooks(recorder, request)

	var response BookListResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Total != 3 {
		t.Errorf("Expected all 3 books, got %d", response.Total)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	handler := NewCatalogHandler(BookListerMock{books: sampleBooks()}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/missing", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("book_id", "missing")
	request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))

	handler.GetBook(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "book_not_found" {
		t.Errorf("Expected error code 'book_not_found', got '%s'", response.Code)
	}
}

func TestGetBook_Success(t *testing.T) {
	handler := NewCatalogHandler(BookListerMock{books: sampleBooks()}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/b2", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("book_id", "b2")
	request = request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))

	handler.GetBook(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response catalog.Book
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Title != "Clean Code" {
		t.Errorf("Expected title 'Clean Code', got '%s'", response.Title)
	}
}
