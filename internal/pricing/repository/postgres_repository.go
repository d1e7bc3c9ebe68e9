package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/nijercart/storefront/internal/pricing"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByCode matches codes case-insensitively.
func (r *Repository) GetByCode(ctx context.Context, code string) (*pricing.PromoCode, error) {
	query := `
		SELECT id, code, discount_type, discount_value, status,
		       valid_from, valid_until, usage_limit, used_count
		FROM promo_codes
		WHERE lower(code) = lower($1)
	`

	var p pricing.PromoCode
	var value float64
	var validUntil sql.NullTime
	var usageLimit sql.NullInt64

	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&p.ID,
		&p.Code,
		&p.DiscountType,
		&value,
		&p.Status,
		&p.ValidFrom,
		&validUntil,
		&usageLimit,
		&p.UsedCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pricing.ErrPromoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query promo code: %w", err)
	}

	p.DiscountValue = decimal.NewFromFloat(value)
	if validUntil.Valid {
		t := validUntil.Time
		p.ValidUntil = &t
	}
	if usageLimit.Valid {
		n := int(usageLimit.Int64)
		p.UsageLimit = &n
	}

	return &p, nil
}
