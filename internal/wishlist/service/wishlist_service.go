package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijercart/storefront/internal/catalog"
	"github.com/nijercart/storefront/internal/wishlist"
	"github.com/nijercart/storefront/internal/wishlist/repository"
)

// WishlistService mirrors users' saved-books lists. Mutations go through
// an explicit pending -> confirmed/rejected cycle against the remote
// store; the local mirror only keeps what the store has acknowledged plus
// in-flight pending entries.
type WishlistService struct {
	repo repository.WishlistRepository
	log  *logrus.Logger

	mu      sync.RWMutex
	entries map[string]map[string]*wishlist.Entry // userID -> bookID -> entry
}

func NewWishlistService(repo repository.WishlistRepository, log *logrus.Logger) *WishlistService {
	return &WishlistService{
		repo:    repo,
		log:     log,
		entries: make(map[string]map[string]*wishlist.Entry),
	}
}

// Fetch loads all entries for the user and replaces the local mirror on
// success. On failure the prior mirror state is left intact.
func (s *WishlistService) Fetch(ctx context.Context, userID string) ([]wishlist.Entry, error) {
	fetched, err := s.repo.Fetch(ctx, userID)
	if err != nil {
		s.log.WithError(err).Error("wishlist fetch failed")
		return nil, err
	}

	s.mu.Lock()
	byBook := make(map[string]*wishlist.Entry, len(fetched))
	for i := range fetched {
		fetched[i].State = wishlist.StateConfirmed
		byBook[fetched[i].BookID] = &fetched[i]
	}
	s.entries[userID] = byBook
	s.mu.Unlock()

	return fetched, nil
}

// Add records a pending entry, persists it remotely and confirms it on
// acknowledgement. A duplicate (user, book) pair rejects the entry and
// surfaces ErrDuplicateEntry; the mirror is restored to its prior state.
func (s *WishlistService) Add(ctx context.Context, userID string, book catalog.Book) (*wishlist.Entry, error) {
	entry := &wishlist.Entry{
		UserID:    userID,
		BookID:    book.ID,
		Title:     book.Title,
		Author:    book.Author,
		Price:     book.Price,
		Condition: string(book.Condition),
		ImageURL:  book.ImageURL,
		AddedAt:   time.Now(),
		State:     wishlist.StatePending,
	}

	s.mu.Lock()
	if _, exists := s.userEntries(userID)[book.ID]; exists {
		s.mu.Unlock()
		return nil, wishlist.ErrDuplicateEntry
	}
	s.userEntries(userID)[book.ID] = entry
	s.mu.Unlock()

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.mu.Lock()
		entry.State = wishlist.StateRejected
		delete(s.userEntries(userID), book.ID)
		s.mu.Unlock()

		if !errors.Is(err, wishlist.ErrDuplicateEntry) {
			s.log.WithError(err).Error("wishlist insert failed")
		}
		return nil, err
	}

	s.mu.Lock()
	entry.State = wishlist.StateConfirmed
	s.mu.Unlock()

	return entry, nil
}

// Remove drops the entry locally and issues the remote delete. If the
// remote delete fails the entry is restored, so the mirror reconverges
// with the store.
func (s *WishlistService) Remove(ctx context.Context, userID, bookID string) error {
	s.mu.Lock()
	removed := s.userEntries(userID)[bookID]
	delete(s.userEntries(userID), bookID)
	s.mu.Unlock()

	err := s.repo.Delete(ctx, userID, bookID)
	if err != nil && !errors.Is(err, repository.ErrEntryNotFound) {
		s.log.WithError(err).Error("wishlist delete failed")
		if removed != nil {
			s.mu.Lock()
			removed.State = wishlist.StateConfirmed
			s.userEntries(userID)[bookID] = removed
			s.mu.Unlock()
		}
		return err
	}

	return nil
}

// Contains is a synchronous membership check against the local mirror.
// Pending entries count as present.
func (s *WishlistService) Contains(userID, bookID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[userID][bookID]
	return ok && entry.State != wishlist.StateRejected
}

// Entries returns the local mirror for the user, newest first.
func (s *WishlistService) Entries(userID string) []wishlist.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]wishlist.Entry, 0, len(s.entries[userID]))
	for _, entry := range s.entries[userID] {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AddedAt.After(out[j].AddedAt)
	})
	return out
}

// userEntries must be called with the mutex held.
func (s *WishlistService) userEntries(userID string) map[string]*wishlist.Entry {
	if s.entries[userID] == nil {
		s.entries[userID] = make(map[string]*wishlist.Entry)
	}
	return s.entries[userID]
}
