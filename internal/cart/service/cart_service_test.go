package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijercart/storefront/internal/cart/cache"
	"github.com/nijercart/storefront/internal/cart/domain"
	"github.com/nijercart/storefront/internal/cart/repository"
	"github.com/nijercart/storefront/internal/catalog"
)

type mockRepository struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockRepository) GetCart(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart = c
	return nil
}

func (m *mockRepository) DeleteCart(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	m.cart = nil
	return nil
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

// Set snapshots through JSON the way the redis cache does, reading every
// line field outside the lock.
func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	var snap domain.Cart
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	m.m.Lock()
	defer m.m.Unlock()
	m.cart = &snap
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

type mockBooks struct {
	books map[string]*catalog.Book
}

func (m *mockBooks) GetBook(_ context.Context, id string) (*catalog.Book, error) {
	if b, ok := m.books[id]; ok {
		return b, nil
	}
	return nil, errors.New("book not found")
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newSut(repo *mockRepository, c *mockCache, books map[string]*catalog.Book) *CartService {
	return NewCartService(repo, c, &mockBooks{books: books}, quietLogger())
}

func TestGetCart_FromRepoOnCacheMiss(t *testing.T) {
	cart := &domain.Cart{
		UserID: "u1",
		Lines: []domain.Line{
			{BookID: "b1", Quantity: 2, StockQuantity: 5, UnitPrice: 500},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	repo := &mockRepository{cart: cart}
	c := &mockCache{}

	sut := newSut(repo, c, nil)
	got, err := sut.GetCart(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity("b1"))
}

func TestGetCart_EmptyCartWhenNotFound(t *testing.T) {
	sut := newSut(&mockRepository{}, &mockCache{}, nil)

	got, err := sut.GetCart(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Empty(t, got.Lines)
}

func TestGetCart_RepoErrorPropagates(t *testing.T) {
	boom := errors.New("mongo down")
	sut := newSut(&mockRepository{err: boom}, &mockCache{}, nil)

	_, err := sut.GetCart(context.Background(), "u1")

	assert.ErrorIs(t, err, boom)
}

func TestGetCart_CallersGetIsolatedCopies(t *testing.T) {
	repo := &mockRepository{cart: &domain.Cart{
		UserID: "u1",
		Lines:  []domain.Line{{BookID: "b1", Quantity: 2, StockQuantity: 5}},
	}}

	sut := newSut(repo, &mockCache{}, nil)
	first, err := sut.GetCart(context.Background(), "u1")
	require.NoError(t, err)

	first.Lines[0].Quantity = 99

	second, err := sut.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Quantity("b1"))
	assert.Equal(t, 2, repo.cart.Quantity("b1"))
}

func TestAddItem_ConcurrentWithCacheRefill(t *testing.T) {
	repo := &mockRepository{cart: &domain.Cart{
		UserID: "u1",
		Lines:  []domain.Line{{BookID: "b1", Quantity: 1, StockQuantity: 10, UnitPrice: 100}},
	}}
	books := map[string]*catalog.Book{
		"b1": {ID: "b1", Price: 100, StockQuantity: 10},
	}

	sut := newSut(repo, &mockCache{}, books)

	// Mutations race the async cache refill, which reads every line field
	// while it serializes. Run with -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sut.AddItem(context.Background(), "u1", "b1", 1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	got, err := sut.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Quantity("b1"), 1)
	assert.LessOrEqual(t, got.Quantity("b1"), 10)
}

func TestAddItem_ClampsToFreshStock(t *testing.T) {
	repo := &mockRepository{}
	c := &mockCache{}
	books := map[string]*catalog.Book{
		"b1": {ID: "b1", Title: "Himu", Price: 150, StockQuantity: 5},
	}

	sut := newSut(repo, c, books)
	cart, err := sut.AddItem(context.Background(), "u1", "b1", 99)

	require.NoError(t, err)
	assert.Equal(t, 5, cart.Quantity("b1"))
	require.NotNil(t, repo.cart)
	assert.Equal(t, 5, repo.cart.Quantity("b1"))
}

func TestAddItem_OutOfStockLeavesStoredCartAlone(t *testing.T) {
	repo := &mockRepository{}
	c := &mockCache{}
	books := map[string]*catalog.Book{
		"b1": {ID: "b1", Price: 150, StockQuantity: 0},
	}

	sut := newSut(repo, c, books)
	_, err := sut.AddItem(context.Background(), "u1", "b1", 1)

	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Nil(t, repo.cart)
}

func TestAddItem_UnknownBook(t *testing.T) {
	sut := newSut(&mockRepository{}, &mockCache{}, nil)

	_, err := sut.AddItem(context.Background(), "u1", "ghost", 1)

	assert.Error(t, err)
}

func TestUpdateQuantity_InvalidatesCache(t *testing.T) {
	cart := &domain.Cart{
		UserID: "u1",
		Lines:  []domain.Line{{BookID: "b1", Quantity: 2, StockQuantity: 5}},
	}
	repo := &mockRepository{cart: cart}
	c := &mockCache{cart: cart}

	sut := newSut(repo, c, nil)
	got, err := sut.UpdateQuantity(context.Background(), "u1", "b1", 4)

	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity("b1"))
	assert.Nil(t, c.getCart())
}

func TestUpdateQuantity_LineNotFound(t *testing.T) {
	repo := &mockRepository{cart: &domain.Cart{UserID: "u1"}}

	sut := newSut(repo, &mockCache{}, nil)
	_, err := sut.UpdateQuantity(context.Background(), "u1", "b1", 4)

	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveItem_AbsentBookStillSucceeds(t *testing.T) {
	repo := &mockRepository{cart: &domain.Cart{
		UserID: "u1",
		Lines:  []domain.Line{{BookID: "b1", Quantity: 1, StockQuantity: 5}},
	}}

	sut := newSut(repo, &mockCache{}, nil)
	got, err := sut.RemoveItem(context.Background(), "u1", "not-there")

	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
}

func TestClearCart(t *testing.T) {
	cart := &domain.Cart{UserID: "u1", Lines: []domain.Line{{BookID: "b1", Quantity: 1}}}
	repo := &mockRepository{cart: cart}
	c := &mockCache{cart: cart}

	sut := newSut(repo, c, nil)
	require.NoError(t, sut.ClearCart(context.Background(), "u1"))

	assert.Nil(t, repo.cart)
	assert.Nil(t, c.getCart())
}

func TestClearCart_AlreadyEmptyIsFine(t *testing.T) {
	sut := newSut(&mockRepository{}, &mockCache{}, nil)

	assert.NoError(t, sut.ClearCart(context.Background(), "u1"))
}
