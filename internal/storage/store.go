// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserQueries covers accounts and profiles.
type UserQueries interface {
	// CreateUser inserts a new user. Returns ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns ErrNotFound if the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateUser writes display name, password hash and updated_at.
	UpdateUser(ctx context.Context, user *models.User) error

	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
}

// GroupQueries covers groups and their membership.
type GroupQueries interface {
	// CreateGroup inserts the group and one membership row per member.
	// The creator is always written as a member.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns the group with its members, or ErrNotFound.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// LockGroup is GetGroup that also holds the group row for the rest of
	// the enclosing transaction, serializing concurrent membership reads
	// and writes for the same group.
	LockGroup(ctx context.Context, groupID string) (*models.Group, error)

	// UpdateGroup writes name, description and updated_at.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes the group with its members, expenses and shares.
	DeleteGroup(ctx context.Context, groupID string) error

	// ListVisibleGroups returns groups the user created or belongs to,
	// newest first.
	ListVisibleGroups(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMember reports whether a new membership row was written.
	AddGroupMember(ctx context.Context, groupID, userID string, joinedAt int64) (bool, error)

	// RemoveGroupMember reports whether a membership row was removed.
	RemoveGroupMember(ctx context.Context, groupID, userID string) (bool, error)

	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)
}

// ExpenseQueries covers expenses and their shares.
type ExpenseQueries interface {
	// CreateExpense inserts the expense and all of expense.Shares together.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns the expense with its shares, or ErrNotFound.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns the group's expenses with shares, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeleteExpense removes the expense and its shares, returning the
	// number of shares removed. Returns ErrNotFound if the expense is absent.
	DeleteExpense(ctx context.Context, expenseID string) (int64, error)

	// GetShare returns the share joined with its expense, or ErrNotFound.
	GetShare(ctx context.Context, shareID string) (*models.ShareWithExpense, error)

	// SettleShare flips an unsettled share to settled in one statement.
	// It reports false when the share was already settled or is absent.
	SettleShare(ctx context.Context, shareID string, settledAt int64) (bool, error)

	ListUnsettledSharesByGroup(ctx context.Context, groupID string) ([]models.ShareWithExpense, error)

	// ListUnsettledSharesForUser returns unsettled shares where the user is
	// either the debtor or the payer.
	ListUnsettledSharesForUser(ctx context.Context, userID string) ([]models.ShareWithExpense, error)
}

// TokenQueries covers access tokens revoked before they expire.
type TokenQueries interface {
	// RevokeToken records jti as revoked until expiresAt (unix seconds).
	// Revoking the same jti again is a no-op.
	RevokeToken(ctx context.Context, jti, userID string, expiresAt int64) error

	// IsTokenRevoked reports whether jti was revoked and has not yet expired at now.
	IsTokenRevoked(ctx context.Context, jti string, now int64) (bool, error)

	// DeleteExpiredTokens drops revocations that expired before now and
	// returns how many were removed.
	DeleteExpiredTokens(ctx context.Context, now int64) (int64, error)
}

// Queries is the set of operations available both on a Store and inside
// one of its transactions.
type Queries interface {
	UserQueries
	GroupQueries
	ExpenseQueries
	TokenQueries
}

// Store defines the persistence boundary for the ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	Queries

	// WithTx runs fn inside a single transaction. Any error returned by fn
	// rolls the transaction back; nothing fn wrote is kept.
	WithTx(ctx context.Context, fn func(q Queries) error) error

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
