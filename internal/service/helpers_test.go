package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

// stepClock returns a clock that advances one millisecond per call, so
// records created in sequence have strictly increasing timestamps.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.UnixMilli(1_700_000_000_000)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

type countingRecorder struct {
	mu       sync.Mutex
	recorded int
	deleted  int
	removed  int64
	settled  int
}

func (r *countingRecorder) ExpenseRecorded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded++
}

func (r *countingRecorder) ExpenseDeleted(shares int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted++
	r.removed += shares
}

func (r *countingRecorder) ShareSettled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled++
}

type fixture struct {
	store    *sqlstore.Store
	groups   *GroupService
	ledger   *LedgerService
	recorder *countingRecorder
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlstore.NewSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := stepClock()
	rec := &countingRecorder{}
	return &fixture{
		store:    store,
		groups:   NewGroupService(store, WithClock(clock)),
		ledger:   NewLedgerService(store, WithClock(clock), WithRecorder(rec)),
		recorder: rec,
	}
}

// user inserts a user with a fixed ID so split order is predictable.
func (f *fixture) user(t *testing.T, id string) string {
	t.Helper()
	u := &models.User{
		ID:           id,
		Email:        id + "@example.com",
		DisplayName:  id,
		PasswordHash: "x",
		CreatedAt:    1,
		UpdatedAt:    1,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return id
}

// group creates a group owned by creator with the given extra members.
func (f *fixture) group(t *testing.T, creator string, members ...string) *models.Group {
	t.Helper()
	ctx := context.Background()
	g, err := f.groups.CreateGroup(ctx, creator, "Trip", "")
	require.NoError(t, err)
	for _, m := range members {
		g, err = f.groups.AddMember(ctx, g.ID, creator, m)
		require.NoError(t, err)
	}
	return g
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func shareFor(t *testing.T, e *models.Expense, debtor string) models.ExpenseShare {
	t.Helper()
	for _, s := range e.Shares {
		if s.DebtorID == debtor {
			return s
		}
	}
	t.Fatalf("no share for %s in expense %s", debtor, e.ID)
	return models.ExpenseShare{}
}

func balanceMap(balances []models.MemberBalance) map[string]string {
	out := make(map[string]string, len(balances))
	for _, b := range balances {
		out[b.UserID] = b.Balance.StringFixed(2)
	}
	return out
}
