// Package sqlite provides a SQLite-backed AccountStore so demo account state
// survives restarts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ecosystem/web-bff/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS credit_accounts (
	user_id         TEXT PRIMARY KEY,
	credit_limit    REAL NOT NULL,
	available_limit REAL NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);`

var pragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA busy_timeout=5000;",
	"PRAGMA foreign_keys=ON;",
}

// Store is a SQLite implementation of AccountStore.
type Store struct {
	db *sqlx.DB
}

var _ storage.AccountStore = (*Store)(nil)

// New opens (or creates) the database at path and initializes the schema.
func New(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) GetOrCreate(ctx context.Context, userID string, initialLimit float64) (storage.Account, error) {
	var acc storage.Account
	err := s.db.GetContext(ctx, &acc,
		`SELECT user_id, credit_limit, available_limit, updated_at FROM credit_accounts WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return s.insert(ctx, userID, initialLimit)
	}
	if err != nil {
		return storage.Account{}, fmt.Errorf("get account %s: %w", userID, err)
	}
	return acc, nil
}

func (s *Store) Update(ctx context.Context, userID string, initialLimit float64, fn func(*storage.Account)) (storage.Account, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storage.Account{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var acc storage.Account
	err = tx.GetContext(ctx, &acc,
		`SELECT user_id, credit_limit, available_limit, updated_at FROM credit_accounts WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		acc = newAccount(userID, initialLimit)
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO credit_accounts (user_id, credit_limit, available_limit, updated_at)
			 VALUES (:user_id, :credit_limit, :available_limit, :updated_at)`, acc); err != nil {
			return storage.Account{}, fmt.Errorf("create account %s: %w", userID, err)
		}
	} else if err != nil {
		return storage.Account{}, fmt.Errorf("get account %s: %w", userID, err)
	}

	fn(&acc)
	acc.UpdatedAt = time.Now()

	if _, err := tx.NamedExecContext(ctx,
		`UPDATE credit_accounts SET credit_limit = :credit_limit, available_limit = :available_limit,
		 updated_at = :updated_at WHERE user_id = :user_id`, acc); err != nil {
		return storage.Account{}, fmt.Errorf("update account %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return storage.Account{}, fmt.Errorf("commit update: %w", err)
	}
	return acc, nil
}

func (s *Store) Reset(ctx context.Context, userID string, initialLimit float64) (storage.Account, error) {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM credit_accounts WHERE user_id = ?`, userID); err != nil {
		return storage.Account{}, fmt.Errorf("reset account %s: %w", userID, err)
	}
	return s.insert(ctx, userID, initialLimit)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) insert(ctx context.Context, userID string, initialLimit float64) (storage.Account, error) {
	acc := newAccount(userID, initialLimit)
	if _, err := s.db.NamedExecContext(ctx,
		`INSERT INTO credit_accounts (user_id, credit_limit, available_limit, updated_at)
		 VALUES (:user_id, :credit_limit, :available_limit, :updated_at)`, acc); err != nil {
		return storage.Account{}, fmt.Errorf("create account %s: %w", userID, err)
	}
	return acc, nil
}

func newAccount(userID string, initialLimit float64) storage.Account {
	return storage.Account{
		UserID:         userID,
		CreditLimit:    initialLimit,
		AvailableLimit: initialLimit,
		UpdatedAt:      time.Now(),
	}
}
