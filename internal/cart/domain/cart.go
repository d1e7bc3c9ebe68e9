package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nijercart/storefront/internal/catalog"
)

// ErrOutOfStock signals that a book is already at its stock ceiling, so
// adding it again changed nothing.
var ErrOutOfStock = errors.New("book is out of stock")

// Line pairs a book snapshot with a quantity. The book fields are captured
// at add time so later catalog edits do not change what the user sees.
type Line struct {
	BookID        string    `bson:"book_id"`
	Title         string    `bson:"title"`
	Author        string    `bson:"author"`
	UnitPrice     float64   `bson:"unit_price"`
	ImageURL      string    `bson:"image_url"`
	Quantity      int       `bson:"quantity"`
	StockQuantity int       `bson:"stock_quantity"`
	AddedAt       time.Time `bson:"added_at"`
}

type Cart struct {
	ID        string    `bson:"_id,omitempty"`
	UserID    string    `bson:"user_id"`
	Lines     []Line    `bson:"lines"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// AddBook merges quantity into an existing line for the book or appends a
// new one, clamping to the book's stock. Adding a book whose line already
// sits at the stock ceiling is a no-op that returns ErrOutOfStock.
func (c *Cart) AddBook(book catalog.Book, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if book.StockQuantity <= 0 {
		return ErrOutOfStock
	}

	for i := range c.Lines {
		if c.Lines[i].BookID != book.ID {
			continue
		}
		if c.Lines[i].Quantity >= book.StockQuantity {
			c.Lines[i].StockQuantity = book.StockQuantity
			return ErrOutOfStock
		}
		c.Lines[i].Quantity = clamp(c.Lines[i].Quantity+quantity, book.StockQuantity)
		c.Lines[i].StockQuantity = book.StockQuantity
		return nil
	}

	c.Lines = append(c.Lines, Line{
		BookID:        book.ID,
		Title:         book.Title,
		Author:        book.Author,
		UnitPrice:     book.Price,
		ImageURL:      book.ImageURL,
		Quantity:      clamp(quantity, book.StockQuantity),
		StockQuantity: book.StockQuantity,
		AddedAt:       time.Now(),
	})
	return nil
}

// SetQuantity sets a line's quantity clamped to [1, stock]. Values below 1
// are floored to 1; removal is always explicit via RemoveBook.
func (c *Cart) SetQuantity(bookID string, quantity int) bool {
	for i := range c.Lines {
		if c.Lines[i].BookID == bookID {
			c.Lines[i].Quantity = clamp(quantity, c.Lines[i].StockQuantity)
			return true
		}
	}
	return false
}

// RemoveBook deletes the line for the book if present. Removing an absent
// book is a no-op.
func (c *Cart) RemoveBook(bookID string) {
	for i, line := range c.Lines {
		if line.BookID == bookID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties all lines.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Clone returns a deep copy. Callers that hand a cart to concurrent
// readers must mutate a clone, never the shared instance.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	return &out
}

// TotalItems is the sum of quantities across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums unit price times quantity over all lines, using the
// snapshotted unit prices rather than a live catalog lookup.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(decimal.NewFromFloat(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Quantity returns the current quantity for a book, or 0 if absent.
func (c *Cart) Quantity(bookID string) int {
	for _, line := range c.Lines {
		if line.BookID == bookID {
			return line.Quantity
		}
	}
	return 0
}

func clamp(quantity, stock int) int {
	if quantity < 1 {
		quantity = 1
	}
	if stock > 0 && quantity > stock {
		return stock
	}
	return quantity
}
