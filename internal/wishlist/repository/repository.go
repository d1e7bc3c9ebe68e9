package repository

import (
	"context"
	"errors"

	"github.com/nijercart/storefront/internal/wishlist"
)

var ErrEntryNotFound = errors.New("wishlist entry not found")

// WishlistRepository defines the interface for wishlist persistence.
type WishlistRepository interface {
	Fetch(ctx context.Context, userID string) ([]wishlist.Entry, error)
	Insert(ctx context.Context, entry *wishlist.Entry) error
	Delete(ctx context.Context, userID, bookID string) error
}
