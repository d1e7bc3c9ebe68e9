package repository

import (
	"context"

	"github.com/nijercart/storefront/internal/pricing"
)

// PromoRepository looks up promo codes. Mutation of used_count happens
// inside the order-creation transaction, not here.
type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (*pricing.PromoCode, error)
}
