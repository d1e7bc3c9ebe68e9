package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/nijercart/storefront/internal/cart/cache"
	"github.com/nijercart/storefront/internal/cart/domain"
	"github.com/nijercart/storefront/internal/cart/repository"
	"github.com/nijercart/storefront/internal/catalog"
)

var ErrLineNotFound = errors.New("book is not in the cart")

// BookGetter supplies fresh book records so quantity clamping always sees
// the current stock ceiling.
type BookGetter interface {
	GetBook(ctx context.Context, id string) (*catalog.Book, error)
}

// CartService is an explicit, injected cart container: every caller shares
// the same persisted state but no package-level globals are involved, so
// tests construct isolated instances per case.
type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	books BookGetter
	log   *logrus.Logger
	sfg   singleflight.Group // prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, books BookGetter, log *logrus.Logger) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
		books: books,
		log:   log,
	}
}

// GetCart returns the user's cart, reading through the cache. A user with
// no stored cart gets an empty one rather than an error.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WithError(err).Warn("cart cache get failed")
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return &domain.Cart{
				UserID:    userID,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				s.log.WithError(errSet).Warn("cart cache set failed")
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	// Clone per caller: the loaded instance is still being read by the
	// cache-refill goroutine and by every caller coalesced into this
	// singleflight result, so nobody may mutate it in place.
	return v.(*domain.Cart).Clone(), nil
}

// AddItem looks up the book for a fresh stock ceiling, merges it into the
// cart and persists the result. ErrOutOfStock propagates to the caller so
// the storefront can surface it; the stored cart is left unchanged then.
func (s *CartService) AddItem(ctx context.Context, userID, bookID string, quantity int) (*domain.Cart, error) {
	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up book %s: %w", bookID, err)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if errAdd := cart.AddBook(*book, quantity); errAdd != nil {
		return nil, errAdd
	}

	return cart, s.persist(ctx, userID, cart)
}

// UpdateQuantity sets a line's quantity, clamped to [1, stock].
func (s *CartService) UpdateQuantity(ctx context.Context, userID, bookID string, quantity int) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.SetQuantity(bookID, quantity) {
		return nil, ErrLineNotFound
	}

	return cart, s.persist(ctx, userID, cart)
}

// RemoveItem drops a line; removing an absent book still persists cleanly.
func (s *CartService) RemoveItem(ctx context.Context, userID, bookID string) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.RemoveBook(bookID)

	return cart, s.persist(ctx, userID, cart)
}

// ClearCart deletes the stored cart and its cache entry.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.log.WithError(err).Error("cart delete failed")
		return err
	}

	s.invalidate(userID)
	return nil
}

func (s *CartService) persist(ctx context.Context, userID string, cart *domain.Cart) error {
	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		s.log.WithError(err).Error("cart upsert failed")
		return err
	}
	s.invalidate(userID)
	return nil
}

func (s *CartService) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.WithError(err).Warn("cart cache invalidate failed")
	}
}
