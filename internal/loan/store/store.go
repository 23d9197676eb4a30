package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/loanapply/internal/loan/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable, and so a
// transaction can never be opened from inside another one.
type Store interface {
	Users() Users
	Applications() Applications

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user and returns it with its assigned id.
	// A duplicate username yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdatePasswordHash replaces the stored hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string, now time.Time) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Applications interface {
	// CreateApplication inserts a confirmed application and returns the
	// stored row including id and timestamps.
	CreateApplication(ctx context.Context, a domain.LoanApplication) (domain.LoanApplication, error)

	// GetApplicationByID returns one application.
	GetApplicationByID(ctx context.Context, id int64) (domain.LoanApplication, error)

	// ListApplicationsByUser returns a user's applications, newest first.
	ListApplicationsByUser(ctx context.Context, userID int64) ([]domain.LoanApplication, error)

	// IsDocumentReferenced reports whether any application points at the
	// staged document path. Housekeeping keeps referenced files.
	IsDocumentReferenced(ctx context.Context, path string) (bool, error)
}
