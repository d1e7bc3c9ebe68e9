package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/nijercart/storefront/internal/catalog"
)

type Repository struct {
	db *sql.DB
}

// NewRepository wraps an existing postgres handle. The handle is shared
// with the orders repository so checkout can run in one transaction.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	query := `
		SELECT id, title, author, description, category, condition, price,
		       original_price, stock_quantity, rating, featured, status,
		       image_url, created_at, updated_at
		FROM books
		WHERE status = 'active'
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return books, nil
}

func (r *Repository) GetBook(ctx context.Context, id string) (*catalog.Book, error) {
	query := `
		SELECT id, title, author, description, category, condition, price,
		       original_price, stock_quantity, rating, featured, status,
		       image_url, created_at, updated_at
		FROM books
		WHERE id = $1
	`

	b, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*catalog.Book, error) {
	var b catalog.Book
	var originalPrice sql.NullFloat64
	var imageURL sql.NullString

	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Description,
		&b.Category,
		&b.Condition,
		&b.Price,
		&originalPrice,
		&b.StockQuantity,
		&b.Rating,
		&b.Featured,
		&b.Status,
		&imageURL,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan book: %w", err)
	}

	b.OriginalPrice = originalPrice.Float64
	b.ImageURL = imageURL.String
	return &b, nil
}
