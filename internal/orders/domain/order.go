package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderItem is a snapshot taken at purchase time. Later catalog edits do
// not retroactively alter historical orders.
type OrderItem struct {
	BookID    string  `json:"book_id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	ImageURL  string  `json:"image_url"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// ShippingAddress is the address snapshot stored with the order.
type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type Order struct {
	ID             uuid.UUID       `json:"id"`
	OrderNumber    string          `json:"order_number"`
	UserID         string          `json:"user_id"`
	Subtotal       float64         `json:"subtotal"`
	DeliveryCharge float64         `json:"delivery_charge"`
	Discount       float64         `json:"discount"`
	TotalAmount    float64         `json:"total_amount"`
	Currency       string          `json:"currency"`
	Status         OrderStatus     `json:"status"`
	PaymentMethod  string          `json:"payment_method"`
	TransactionRef string          `json:"transaction_ref"`
	PromoCode      string          `json:"promo_code,omitempty"`
	Shipping       ShippingAddress `json:"shipping"`
	Notes          string          `json:"notes,omitempty"`
	IdempotencyKey string          `json:"-"`
	Items          []OrderItem     `json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
