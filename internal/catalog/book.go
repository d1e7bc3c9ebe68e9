package catalog

import "time"

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "old"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDraft    Status = "draft"
)

type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category"`
	Condition     Condition `json:"condition"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price,omitempty"` // zero when no list price is set
	StockQuantity int       `json:"stock_quantity"`
	Rating        float64   `json:"rating"`
	Featured      bool      `json:"featured"`
	Status        Status    `json:"status"`
	ImageURL      string    `json:"image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InStock reports whether at least one copy can still be sold.
func (b Book) InStock() bool {
	return b.StockQuantity > 0
}
