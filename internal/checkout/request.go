package checkout

import (
	"sort"
	"strings"

	"github.com/nijercart/storefront/internal/validator"
)

// Payment happens out of band: the customer pays through one of these
// channels and enters the resulting transaction reference by hand.
const (
	PaymentBkash          = "bkash"
	PaymentNagad          = "nagad"
	PaymentRocket         = "rocket"
	PaymentCashOnDelivery = "cash_on_delivery"
)

var PaymentMethods = []string{PaymentBkash, PaymentNagad, PaymentRocket, PaymentCashOnDelivery}

type ShippingInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// BuyNowInput stages a single book for immediate purchase, bypassing the
// multi-item cart.
type BuyNowInput struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

type SubmitRequest struct {
	UserID         string        `json:"-"`
	IdempotencyKey string        `json:"idempotency_key"`
	Shipping       ShippingInput `json:"shipping"`
	PaymentMethod  string        `json:"payment_method"`
	TransactionRef string        `json:"transaction_ref"`
	PromoCode      string        `json:"promo_code"`
	Notes          string        `json:"notes"`
	BuyNow         *BuyNowInput  `json:"buy_now,omitempty"`
}

// Validate applies the submission rules. All failures are local and
// recoverable by re-editing.
func (r *SubmitRequest) Validate() *validator.Validator {
	v := validator.New()

	v.Check(strings.TrimSpace(r.Shipping.Name) != "", "name", "must be provided")
	v.Check(strings.TrimSpace(r.Shipping.Phone) != "", "phone", "must be provided")
	if strings.TrimSpace(r.Shipping.Phone) != "" {
		v.Check(validator.Matches(strings.TrimSpace(r.Shipping.Phone), validator.PhoneRX),
			"phone", "must be a valid mobile number")
	}
	v.Check(strings.TrimSpace(r.Shipping.Address) != "", "address", "must be provided")
	v.Check(strings.TrimSpace(r.Shipping.City) != "", "city", "must be provided")
	v.Check(validator.In(r.PaymentMethod, PaymentMethods...), "payment_method", "must be one of "+strings.Join(paymentMethodsSorted(), ", "))
	v.Check(strings.TrimSpace(r.TransactionRef) != "", "transaction_ref", "must be provided")
	v.Check(strings.TrimSpace(r.IdempotencyKey) != "", "idempotency_key", "must be provided")

	if r.BuyNow != nil {
		v.Check(strings.TrimSpace(r.BuyNow.BookID) != "", "buy_now.book_id", "must be provided")
		v.Check(r.BuyNow.Quantity >= 1, "buy_now.quantity", "must be at least 1")
	}

	return v
}

func paymentMethodsSorted() []string {
	methods := make([]string, len(PaymentMethods))
	copy(methods, PaymentMethods)
	sort.Strings(methods)
	return methods
}
