package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijercart/storefront/internal/catalog"
)

func book(id string, price float64, stock int) catalog.Book {
	return catalog.Book{
		ID:            id,
		Title:         "Title " + id,
		Author:        "Author " + id,
		Price:         price,
		StockQuantity: stock,
	}
}

func TestAddBook_NewLine(t *testing.T) {
	cart := &Cart{UserID: "u1"}

	require.NoError(t, cart.AddBook(book("b1", 500, 5), 2))

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 500.0, cart.Lines[0].UnitPrice)
	assert.Equal(t, 5, cart.Lines[0].StockQuantity)
}

func TestAddBook_MergesAndClampsToStock(t *testing.T) {
	cart := &Cart{UserID: "u1"}
	b := book("b1", 500, 5)

	require.NoError(t, cart.AddBook(b, 3))
	require.NoError(t, cart.AddBook(b, 4)) // 3+4 clamps to 5

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestAddBook_AtCeilingSignalsOutOfStock(t *testing.T) {
	cart := &Cart{UserID: "u1"}
	b := book("b1", 500, 2)

	require.NoError(t, cart.AddBook(b, 2))
	err := cart.AddBook(b, 1)

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 2, cart.Quantity("b1"))
}

func TestAddBook_ZeroStock(t *testing.T) {
	cart := &Cart{UserID: "u1"}

	err := cart.AddBook(book("b1", 500, 0), 1)

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Empty(t, cart.Lines)
}

func TestSetQuantity_ClampsToStockCeiling(t *testing.T) {
	cart := &Cart{UserID: "u1"}
	require.NoError(t, cart.AddBook(book("b1", 500, 5), 1))

	ok := cart.SetQuantity("b1", 99)

	assert.True(t, ok)
	assert.Equal(t, 5, cart.Quantity("b1"))
}

func TestSetQuantity_FloorsToOne_NeverRemoves(t *testing.T) {
	cart := &Cart{UserID: "u1"}
	require.NoError(t, cart.AddBook(book("b1", 500, 5), 3))

	cart.SetQuantity("b1", 0)
	assert.Equal(t, 1, cart.Quantity("b1"))

	cart.SetQuantity("b1", -4)
	assert.Equal(t, 1, cart.Quantity("b1"))
	assert.Len(t, cart.Lines, 1)
}

func TestSetQuantity_UnknownBook(t *testing.T) {
	cart := &Cart{UserID: "u1"}

	assert.False(t, cart.SetQuantity("nope", 2))
}

func TestRemoveBook_Idempotent(t *testing.T) {
	cart := &Cart{UserID: "u1"}
	require.NoError(t, cart.AddBook(book("b1", 500, 5), 1))

	cart.RemoveBook("b1")
	assert.Empty(t, cart.Lines)

	// Removing again, or removing an id that was never present, is a no-op.
	cart.RemoveBook("b1")
	cart.RemoveBook("never-added")
	assert.Empty(t, cart.Lines)
}

func TestClear(t *testing.T) {
	cart := &Cart{UserID: "u1"}
	require.NoError(t, cart.AddBook(book("b1", 500, 5), 1))
	require.NoError(t, cart.AddBook(book("b2", 150, 9), 2))

	cart.Clear()

	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0, cart.TotalItems())
}

func TestTotals(t *testing.T) {
	cart := &Cart{UserID: "u1"}
	require.NoError(t, cart.AddBook(book("b1", 500, 10), 2))
	require.NoError(t, cart.AddBook(book("b2", 150.5, 10), 3))

	assert.Equal(t, 5, cart.TotalItems())
	assert.True(t, cart.TotalPrice().Equal(decimal.NewFromFloat(1451.5)),
		"got %s", cart.TotalPrice())
}

// Quantities stay within [1, stock] across any sequence of mutations.
func TestCeilingInvariantUnderMutationSequences(t *testing.T) {
	cart := &Cart{UserID: "u1"}
	b1 := book("b1", 500, 5)
	b2 := book("b2", 300, 2)

	_ = cart.AddBook(b1, 10)
	_ = cart.AddBook(b2, 1)
	_ = cart.AddBook(b1, 1)
	cart.SetQuantity("b1", -7)
	cart.SetQuantity("b2", 50)
	_ = cart.AddBook(b2, 3)

	for _, line := range cart.Lines {
		assert.GreaterOrEqual(t, line.Quantity, 1)
		assert.LessOrEqual(t, line.Quantity, line.StockQuantity)
	}

	// Additivity holds for every reachable state.
	want := decimal.Zero
	for _, line := range cart.Lines {
		want = want.Add(decimal.NewFromFloat(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	assert.True(t, cart.TotalPrice().Equal(want))
}

func TestQuantity_AbsentBookIsZero(t *testing.T) {
	cart := &Cart{UserID: "u1"}

	assert.Equal(t, 0, cart.Quantity("b1"))
}
