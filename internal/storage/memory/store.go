// Package memory provides the in-memory AccountStore used for demo
// deployments. State is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ecosystem/web-bff/internal/storage"
)

// Store is a mutex-guarded in-memory implementation of AccountStore.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*storage.Account
}

var _ storage.AccountStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		accounts: make(map[string]*storage.Account),
	}
}

func (s *Store) GetOrCreate(_ context.Context, userID string, initialLimit float64) (storage.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.getOrCreateLocked(userID, initialLimit), nil
}

func (s *Store) Update(_ context.Context, userID string, initialLimit float64, fn func(*storage.Account)) (storage.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.getOrCreateLocked(userID, initialLimit)
	fn(acc)
	acc.UpdatedAt = time.Now()
	return *acc, nil
}

func (s *Store) Reset(_ context.Context, userID string, initialLimit float64) (storage.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := &storage.Account{
		UserID:         userID,
		CreditLimit:    initialLimit,
		AvailableLimit: initialLimit,
		UpdatedAt:      time.Now(),
	}
	s.accounts[userID] = acc
	return *acc, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func (s *Store) getOrCreateLocked(userID string, initialLimit float64) *storage.Account {
	if acc, ok := s.accounts[userID]; ok {
		return acc
	}
	acc := &storage.Account{
		UserID:         userID,
		CreditLimit:    initialLimit,
		AvailableLimit: initialLimit,
		UpdatedAt:      time.Now(),
	}
	s.accounts[userID] = acc
	return acc
}
