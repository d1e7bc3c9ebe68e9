package wishlist

import (
	"errors"
	"time"
)

// ErrDuplicateEntry is returned when the (user, book) pair is already saved.
var ErrDuplicateEntry = errors.New("book is already in the wishlist")

// SyncState tracks the remote-sync lifecycle of a local entry. An add is
// pending until the store acknowledges it; reconciliation on failure is a
// modeled transition, not an ad hoc rollback.
type SyncState string

const (
	StatePending   SyncState = "pending"
	StateConfirmed SyncState = "confirmed"
	StateRejected  SyncState = "rejected"
)

// Entry is a saved (user, book) pair with book fields denormalized at save
// time.
type Entry struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	BookID    string    `bson:"book_id" json:"book_id"`
	Title     string    `bson:"title" json:"title"`
	Author    string    `bson:"author" json:"author"`
	Price     float64   `bson:"price" json:"price"`
	Condition string    `bson:"condition" json:"condition"`
	ImageURL  string    `bson:"image_url" json:"image_url"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`

	// State is local sync bookkeeping and is never persisted remotely.
	State SyncState `bson:"-" json:"state"`
}
