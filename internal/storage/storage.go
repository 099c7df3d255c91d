// Package storage defines the persistence contract for per-user credit
// account state. The in-memory implementation is the default; the sqlite
// implementation survives restarts.
package storage

import (
	"context"
	"time"
)

// Account is the simulated credit account state for one user.
type Account struct {
	UserID         string    `db:"user_id" json:"userId"`
	CreditLimit    float64   `db:"credit_limit" json:"creditLimit"`
	AvailableLimit float64   `db:"available_limit" json:"availableLimit"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// AccountStore is the persistence contract for credit accounts.
// Implementations must be safe for concurrent use across requests.
type AccountStore interface {
	// GetOrCreate returns the account for userID, creating it with the given
	// initial limit when absent.
	GetOrCreate(ctx context.Context, userID string, initialLimit float64) (Account, error)

	// Update applies fn to the account under the store's write lock and
	// returns the updated account. The account must already exist or is
	// created with initialLimit first.
	Update(ctx context.Context, userID string, initialLimit float64, fn func(*Account)) (Account, error)

	// Reset discards the account state and recreates it at initialLimit.
	Reset(ctx context.Context, userID string, initialLimit float64) (Account, error)

	// Close releases the store's resources.
	Close() error
}
