package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = `id, group_id, payer_id, description, amount, created_at, updated_at`

const shareColumns = `s.id, s.expense_id, s.debtor_id, s.amount, s.settled, s.settled_at`

// CreateExpense persists an expense and all of its shares in one transaction.
func (q *queries) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().UnixMilli()
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = expense.CreatedAt
	}

	return q.atomic(ctx, func(q *queries) error {
		_, err := q.exec(ctx, `
			INSERT INTO expenses (id, group_id, payer_id, description, amount, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			expense.ID,
			expense.GroupID,
			expense.PayerID,
			expense.Description,
			money.Format(expense.Amount),
			expense.CreatedAt,
			expense.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for i := range expense.Shares {
			share := &expense.Shares[i]
			if share.ID == "" {
				share.ID = uuid.New().String()
			}
			share.ExpenseID = expense.ID

			_, err := q.exec(ctx, `
				INSERT INTO expense_shares (id, expense_id, debtor_id, amount, settled, settled_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, share.ID, share.ExpenseID, share.DebtorID, money.Format(share.Amount), share.Settled, share.SettledAt)
			if isUniqueViolation(err) {
				return storage.ErrAlreadyExists
			}
			if err != nil {
				return fmt.Errorf("failed to insert share: %w", err)
			}
		}
		return nil
	})
}

// GetExpense retrieves an expense with its shares.
func (q *queries) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	err := q.get(ctx, expense, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, expenseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	var shares []models.ExpenseShare
	err = q.sel(ctx, &shares, `
		SELECT `+shareColumns+`
		FROM expense_shares s
		WHERE s.expense_id = ?
		ORDER BY s.debtor_id
	`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	expense.Shares = nonNil(shares)
	return expense, nil
}

// ListExpensesByGroup returns all expenses of a group, newest first.
func (q *queries) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	var expenses []*models.Expense
	err := q.sel(ctx, &expenses, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE group_id = ?
		ORDER BY created_at DESC, id DESC
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	if len(expenses) == 0 {
		return []*models.Expense{}, nil
	}

	var shares []models.ExpenseShare
	err = q.sel(ctx, &shares, `
		SELECT `+shareColumns+`
		FROM expense_shares s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.group_id = ?
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].DebtorID < shares[j].DebtorID })

	byExpense := make(map[string][]models.ExpenseShare, len(expenses))
	for _, s := range shares {
		byExpense[s.ExpenseID] = append(byExpense[s.ExpenseID], s)
	}
	for _, e := range expenses {
		e.Shares = nonNil(byExpense[e.ID])
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its shares.
func (q *queries) DeleteExpense(ctx context.Context, expenseID string) (int64, error) {
	var removed int64
	err := q.atomic(ctx, func(q *queries) error {
		res, err := q.exec(ctx, `DELETE FROM expense_shares WHERE expense_id = ?`, expenseID)
		if err != nil {
			return fmt.Errorf("failed to delete shares: %w", err)
		}
		if removed, err = rowsAffected(res); err != nil {
			return err
		}

		res, err = q.exec(ctx, `DELETE FROM expenses WHERE id = ?`, expenseID)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// GetShare retrieves a share joined with its expense's group and payer.
func (q *queries) GetShare(ctx context.Context, shareID string) (*models.ShareWithExpense, error) {
	share := &models.ShareWithExpense{}
	err := q.get(ctx, share, `
		SELECT `+shareColumns+`, e.group_id, e.payer_id
		FROM expense_shares s
		JOIN expenses e ON e.id = s.expense_id
		WHERE s.id = ?
	`, shareID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	return share, nil
}

// SettleShare marks an unsettled share as settled. The settled = false guard
// makes the flip happen at most once even under concurrent callers.
func (q *queries) SettleShare(ctx context.Context, shareID string, settledAt int64) (bool, error) {
	res, err := q.exec(ctx, `
		UPDATE expense_shares SET settled = ?, settled_at = ?
		WHERE id = ? AND settled = ?
	`, true, settledAt, shareID, false)
	if err != nil {
		return false, fmt.Errorf("failed to settle share: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListUnsettledSharesByGroup returns the open shares of a group.
func (q *queries) ListUnsettledSharesByGroup(ctx context.Context, groupID string) ([]models.ShareWithExpense, error) {
	var shares []models.ShareWithExpense
	err := q.sel(ctx, &shares, `
		SELECT `+shareColumns+`, e.group_id, e.payer_id
		FROM expense_shares s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.group_id = ? AND s.settled = ?
	`, groupID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled shares: %w", err)
	}
	return nonNil(shares), nil
}

// ListUnsettledSharesForUser returns open shares the user owes or is owed,
// across every group.
func (q *queries) ListUnsettledSharesForUser(ctx context.Context, userID string) ([]models.ShareWithExpense, error) {
	var shares []models.ShareWithExpense
	err := q.sel(ctx, &shares, `
		SELECT `+shareColumns+`, e.group_id, e.payer_id
		FROM expense_shares s
		JOIN expenses e ON e.id = s.expense_id
		WHERE s.settled = ? AND (s.debtor_id = ? OR e.payer_id = ?)
	`, false, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user shares: %w", err)
	}
	return nonNil(shares), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
