package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported promo discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed amount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

// Apply-time rejection reasons. Each maps to a user-readable message, not
// a generic failure.
var (
	ErrPromoNotFound          = errors.New("promo code not found")
	ErrPromoInactive          = errors.New("promo code is not active")
	ErrPromoNotYetActive      = errors.New("promo code is not valid yet")
	ErrPromoExpired           = errors.New("promo code has expired")
	ErrPromoUsageLimitReached = errors.New("promo code usage limit reached")
)

// PromoCode is a discount rule. Codes are matched case-insensitively.
type PromoCode struct {
	ID            string
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	Status        string
	ValidFrom     time.Time
	ValidUntil    *time.Time // nil means no end date
	UsageLimit    *int       // nil means unlimited
	UsedCount     int
}

// Validate checks applicability at the given instant. Expired or exhausted
// codes are rejected here, at apply time, never silently ignored later.
func (p *PromoCode) Validate(now time.Time) error {
	if p.Status != "active" {
		return ErrPromoInactive
	}
	if now.Before(p.ValidFrom) {
		return ErrPromoNotYetActive
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return ErrPromoExpired
	}
	if p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit {
		return ErrPromoUsageLimitReached
	}
	return nil
}

// Discount computes the discount for a subtotal. The result is never
// negative and never exceeds the subtotal.
func (p *PromoCode) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.Sign() <= 0 {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch p.DiscountType {
	case DiscountPercentage:
		amount = subtotal.Mul(p.DiscountValue).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		amount = p.DiscountValue
	default:
		return decimal.Zero
	}

	if amount.Sign() < 0 {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}
