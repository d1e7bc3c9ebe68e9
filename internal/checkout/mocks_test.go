package checkout

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	cartdomain "github.com/nijercart/storefront/internal/cart/domain"
	"github.com/nijercart/storefront/internal/catalog"
	ordersdomain "github.com/nijercart/storefront/internal/orders/domain"
	r "github.com/nijercart/storefront/internal/orders/repository"
	"github.com/nijercart/storefront/internal/pricing"
)

// MockOrderRepository implements r.OrderRepository for testing
type MockOrderRepository struct {
	ExistingOrder  *ordersdomain.Order // returned for idempotency lookups
	GetErr         error
	CreateErr      error
	CreateErrOnce  error // returned for the first CreateOrder call only
	CreatedOrder   *ordersdomain.Order // captures the order passed to CreateOrder
	CreatedPromoID string
	CreateCalls    int
	OrderNumbers   []string // order number seen on each CreateOrder call
}

func (m *MockOrderRepository) CreateOrder(_ context.Context, order *ordersdomain.Order, promoID string) error {
	m.CreateCalls++
	m.OrderNumbers = append(m.OrderNumbers, order.OrderNumber)
	if m.CreateErrOnce != nil && m.CreateCalls == 1 {
		return m.CreateErrOnce
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.CreatedOrder = order
	m.CreatedPromoID = promoID
	return nil
}

func (m *MockOrderRepository) GetOrderByID(_ context.Context, _ uuid.UUID) (*ordersdomain.Order, error) {
	if m.CreatedOrder != nil {
		return m.CreatedOrder, nil
	}
	return nil, r.ErrOrderNotFound
}

func (m *MockOrderRepository) GetOrderByIdempotencyKey(_ context.Context, _ string) (*ordersdomain.Order, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if m.ExistingOrder != nil {
		return m.ExistingOrder, nil
	}
	return nil, r.ErrOrderNotFound
}

func (m *MockOrderRepository) ListOrdersByUserID(context.Context, string) ([]*ordersdomain.Order, error) {
	return nil, nil
}

func (m *MockOrderRepository) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	return nil, nil
}

func (m *MockOrderRepository) MarkEventAsProcessed(context.Context, int64) error {
	return nil
}

func (m *MockOrderRepository) RunMigrations(*r.Credentials) error {
	return nil
}

func (m *MockOrderRepository) Close() error {
	return nil
}

// MockCartProvider implements CartProvider for testing
type MockCartProvider struct {
	Cart *cartdomain.Cart
	Err  error
}

func (m *MockCartProvider) GetCart(context.Context, string) (*cartdomain.Cart, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Cart == nil {
		return &cartdomain.Cart{}, nil
	}
	return m.Cart, nil
}

// MockBookGetter implements BookGetter for testing
type MockBookGetter struct {
	Books map[string]*catalog.Book
	Err   error
}

func (m *MockBookGetter) GetBook(_ context.Context, id string) (*catalog.Book, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if b, ok := m.Books[id]; ok {
		return b, nil
	}
	return nil, errors.New("book not found")
}

// MockPromoLookup implements PromoLookup for testing
type MockPromoLookup struct {
	Promos map[string]*pricing.PromoCode
}

func (m *MockPromoLookup) GetByCode(_ context.Context, code string) (*pricing.PromoCode, error) {
	if p, ok := m.Promos[strings.ToUpper(code)]; ok {
		return p, nil
	}
	return nil, pricing.ErrPromoNotFound
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
