package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	cartdomain "github.com/nijercart/storefront/internal/cart/domain"
	"github.com/nijercart/storefront/internal/catalog"
	ordersdomain "github.com/nijercart/storefront/internal/orders/domain"
	r "github.com/nijercart/storefront/internal/orders/repository"
	"github.com/nijercart/storefront/internal/pricing"
)

const currency = "BDT"

// CartProvider supplies the current cart for a multi-item checkout.
type CartProvider interface {
	GetCart(ctx context.Context, userID string) (*cartdomain.Cart, error)
}

// BookGetter resolves the buy-now slot against the live catalog.
type BookGetter interface {
	GetBook(ctx context.Context, id string) (*catalog.Book, error)
}

// PromoLookup resolves promo codes for apply-time validation.
type PromoLookup interface {
	GetByCode(ctx context.Context, code string) (*pricing.PromoCode, error)
}

type CheckoutService struct {
	orders r.OrderRepository
	carts  CartProvider
	books  BookGetter
	promos PromoLookup
	log    *logrus.Logger
}

func NewCheckoutService(orders r.OrderRepository, carts CartProvider, books BookGetter, promos PromoLookup, log *logrus.Logger) *CheckoutService {
	return &CheckoutService{
		orders: orders,
		carts:  carts,
		books:  books,
		promos: promos,
		log:    log,
	}
}

// ApplyPromo validates a code at apply time. Expired or exhausted codes
// are rejected here with a specific reason, never silently ignored when
// totals are computed.
func (s *CheckoutService) ApplyPromo(ctx context.Context, code string) (*pricing.PromoCode, error) {
	promo, err := s.promos.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if err := promo.Validate(time.Now()); err != nil {
		return nil, err
	}
	return promo, nil
}

// Submit runs the whole flow: validate, price, persist. The order row, its
// items, the promo-usage increment and the outbox event commit as one
// transaction. A request replayed with the same idempotency key returns
// the already-created order instead of a duplicate.
func (s *CheckoutService) Submit(ctx context.Context, req *SubmitRequest) (*ordersdomain.Order, error) {
	status := StatusEditing

	if !CanTransitionTo(status, StatusValidating) {
		return nil, IllegalTransitionError
	}
	status = StatusValidating

	if v := req.Validate(); !v.Valid() {
		return nil, &ValidationError{Fields: v.Errors}
	}

	existing, err := s.orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil && !errors.Is(err, r.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		s.log.WithFields(logrus.Fields{
			"idempotency_key": req.IdempotencyKey,
			"order_id":        existing.ID,
		}).Info("duplicate submission, returning existing order")
		return existing, nil
	}

	items, err := s.collectItems(ctx, req)
	if err != nil {
		return nil, err
	}

	var promo *pricing.PromoCode
	promoID := ""
	if req.PromoCode != "" {
		promo, err = s.ApplyPromo(ctx, req.PromoCode)
		if err != nil {
			return nil, err
		}
		promoID = promo.ID
	}

	quoteItems := make([]pricing.Item, len(items))
	for i, item := range items {
		quoteItems[i] = pricing.Item{
			UnitPrice: decimal.NewFromFloat(item.UnitPrice),
			Quantity:  item.Quantity,
		}
	}
	quote := pricing.NewQuote(quoteItems, promo)

	if !CanTransitionTo(status, StatusSubmitting) {
		return nil, IllegalTransitionError
	}
	status = StatusSubmitting

	order := &ordersdomain.Order{
		ID:             uuid.New(),
		OrderNumber:    newOrderNumber(),
		UserID:         req.UserID,
		Subtotal:       quote.Subtotal.InexactFloat64(),
		DeliveryCharge: quote.DeliveryCharge.InexactFloat64(),
		Discount:       quote.Discount.InexactFloat64(),
		TotalAmount:    quote.Total.InexactFloat64(),
		Currency:       currency,
		Status:         ordersdomain.OrderStatusPending,
		PaymentMethod:  req.PaymentMethod,
		TransactionRef: strings.TrimSpace(req.TransactionRef),
		PromoCode:      promoCode(promo),
		Shipping: ordersdomain.ShippingAddress{
			Name:    strings.TrimSpace(req.Shipping.Name),
			Phone:   strings.TrimSpace(req.Shipping.Phone),
			Address: strings.TrimSpace(req.Shipping.Address),
			City:    strings.TrimSpace(req.Shipping.City),
		},
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
		Items:          items,
	}

	for attempt := 0; ; attempt++ {
		err := s.orders.CreateOrder(ctx, order, promoID)
		if err == nil {
			break
		}
		if errors.Is(err, r.ErrDuplicateOrder) {
			// Lost the race with a concurrent replay of the same key.
			return s.orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
		}
		if errors.Is(err, r.ErrOrderNumberConflict) && attempt < 2 {
			// The random suffix clashed with an existing order. No order
			// was written, so generate a fresh number and try again.
			order.OrderNumber = newOrderNumber()
			continue
		}
		s.log.WithError(err).Error("order creation failed")
		return nil, err
	}

	if !CanTransitionTo(status, StatusSucceeded) {
		return nil, IllegalTransitionError
	}

	s.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"total":        order.TotalAmount,
	}).Info("order placed")

	return order, nil
}

// collectItems snapshots either the buy-now slot or the full cart into
// order items.
func (s *CheckoutService) collectItems(ctx context.Context, req *SubmitRequest) ([]ordersdomain.OrderItem, error) {
	if req.BuyNow != nil {
		book, err := s.books.GetBook(ctx, req.BuyNow.BookID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up book %s: %w", req.BuyNow.BookID, err)
		}

		staging := &cartdomain.Cart{UserID: req.UserID}
		if err := staging.AddBook(*book, req.BuyNow.Quantity); err != nil {
			return nil, err
		}
		return linesToItems(staging.Lines), nil
	}

	cart, err := s.carts.GetCart(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	return linesToItems(cart.Lines), nil
}

func linesToItems(lines []cartdomain.Line) []ordersdomain.OrderItem {
	items := make([]ordersdomain.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = ordersdomain.OrderItem{
			BookID:    line.BookID,
			Title:     line.Title,
			Author:    line.Author,
			ImageURL:  line.ImageURL,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		}
	}
	return items
}

func promoCode(promo *pricing.PromoCode) string {
	if promo == nil {
		return ""
	}
	return promo.Code
}

// newOrderNumber builds a human-readable order number. The random suffix
// comes from a UUID, so concurrent submissions cannot collide the way
// bare timestamps can.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("NC-%s-%s", time.Now().Format("20060102"), suffix)
}
