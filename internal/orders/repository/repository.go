package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nijercart/storefront/internal/orders/domain"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrDuplicateOrder      = errors.New("order for this idempotency key already exists")
	ErrOrderNumberConflict = errors.New("order number already in use")
	ErrPromoLimitExceeded  = errors.New("promo code usage limit exceeded")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is a pending event row written in the same transaction as
// the order it describes.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// OrderRepository persists orders. CreateOrder runs the order row, its
// item rows, the optional promo-usage increment and the outbox event as
// one transaction, so a failure leaves no orphaned order behind.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order, promoID string) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	RunMigrations(*Credentials) error
	Close() error
}
