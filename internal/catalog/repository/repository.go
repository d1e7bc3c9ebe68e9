package repository

import (
	"context"
	"errors"

	"github.com/nijercart/storefront/internal/catalog"
)

var ErrBookNotFound = errors.New("book not found")

// BookRepository defines the interface for catalog reads. Writes happen
// through the hosted admin back office, so the storefront only consumes.
type BookRepository interface {
	ListBooks(ctx context.Context) ([]catalog.Book, error)
	GetBook(ctx context.Context, id string) (*catalog.Book, error)
	Close() error
}
