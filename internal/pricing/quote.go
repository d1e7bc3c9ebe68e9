package pricing

import "github.com/shopspring/decimal"

// Delivery is free above this subtotal, otherwise the flat fee applies.
// Amounts are in the store currency (BDT).
var (
	FreeDeliveryThreshold = decimal.NewFromInt(1000)
	DeliveryFee           = decimal.NewFromInt(60)
)

// Item is one priced line for quoting purposes.
type Item struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is the deterministic total breakdown. The cart summary and the
// checkout page both build one of these, so they agree bit-for-bit.
type Quote struct {
	Subtotal       decimal.Decimal
	DeliveryCharge decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
}

// Subtotal sums unit price times quantity across items.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// DeliveryCharge is zero strictly above the free-delivery threshold and the
// flat fee at or below it.
func DeliveryCharge(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return DeliveryFee
}

// NewQuote computes subtotal + delivery - discount. The promo is trusted
// here; applicability was checked when the code was applied.
func NewQuote(items []Item, promo *PromoCode) Quote {
	subtotal := Subtotal(items)
	delivery := DeliveryCharge(subtotal)

	discount := decimal.Zero
	if promo != nil {
		discount = promo.Discount(subtotal)
	}

	return Quote{
		Subtotal:       subtotal,
		DeliveryCharge: delivery,
		Discount:       discount,
		Total:          subtotal.Add(delivery).Sub(discount),
	}
}
