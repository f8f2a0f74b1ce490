package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

const maxExpenseDescription = 200

// RecordExpenseInput describes a new expense.
type RecordExpenseInput struct {
	GroupID     string
	PayerID     string
	Description string
	Amount      decimal.Decimal

	// Allocation maps member IDs to owed amounts. Nil means an equal split
	// over the group's current members.
	Allocation map[string]decimal.Decimal
}

// LedgerService records expenses and tracks their settlement.
type LedgerService struct {
	store storage.Store
	opts  options
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, opts ...Option) *LedgerService {
	return &LedgerService{store: store, opts: buildOptions(opts)}
}

// RecordExpense persists an expense and its shares in one transaction.
//
// The member list is read under the group's row lock, so a concurrent
// membership change cannot make the split and the member set disagree.
// The payer's own share is written already settled.
func (s *LedgerService) RecordExpense(ctx context.Context, in RecordExpenseInput) (*models.Expense, error) {
	slog.Info("RecordExpense request received",
		"group_id", in.GroupID,
		"payer_id", in.PayerID,
		"amount", money.Format(in.Amount),
		"explicit_allocation", in.Allocation != nil,
	)

	description, err := requireText("description", in.Description, 1, maxExpenseDescription)
	if err != nil {
		return nil, err
	}
	if err := money.CheckPositive(in.Amount); err != nil {
		return nil, apperr.InvalidArgument("amount: %v", err)
	}
	totalMinor, err := money.ToMinor(in.Amount)
	if err != nil {
		return nil, apperr.InvalidArgument("amount: %v", err)
	}

	var explicit map[string]int64
	if in.Allocation != nil {
		explicit = make(map[string]int64, len(in.Allocation))
		for userID, amount := range in.Allocation {
			if err := money.CheckNonNegative(amount); err != nil {
				return nil, apperr.InvalidArgument("allocation for %s: %v", userID, err)
			}
			minor, err := money.ToMinor(amount)
			if err != nil {
				return nil, apperr.InvalidArgument("allocation for %s: %v", userID, err)
			}
			explicit[userID] = minor
		}
	}

	var expense *models.Expense
	err = s.store.WithTx(ctx, func(q storage.Queries) error {
		group, err := q.LockGroup(ctx, in.GroupID)
		if err != nil {
			return storeError(err, "group "+in.GroupID+" not found", "failed to load group")
		}
		if !group.HasMember(in.PayerID) {
			return apperr.Forbidden("payer is not a member of group %s", in.GroupID)
		}

		var allocations []calculator.Allocation
		if explicit != nil {
			allocations, err = calculator.ExplicitSplit(totalMinor, explicit, group.Members)
		} else {
			allocations, err = calculator.EqualSplit(totalMinor, group.Members)
		}
		if err != nil {
			return apperr.InvalidArgument("%v", err)
		}

		now := s.opts.now().UnixMilli()
		expense = &models.Expense{
			GroupID:     group.ID,
			PayerID:     in.PayerID,
			Description: description,
			Amount:      money.FromMinor(totalMinor),
			CreatedAt:   now,
			UpdatedAt:   now,
			Shares:      make([]models.ExpenseShare, len(allocations)),
		}
		for i, a := range allocations {
			share := models.ExpenseShare{
				DebtorID: a.UserID,
				Amount:   money.FromMinor(a.Minor),
			}
			if a.UserID == in.PayerID {
				settledAt := now
				share.Settled = true
				share.SettledAt = &settledAt
			}
			expense.Shares[i] = share
		}

		if err := q.CreateExpense(ctx, expense); err != nil {
			return apperr.Internal(err, "failed to record expense")
		}
		return nil
	})
	if err != nil {
		slog.Warn("RecordExpense failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	s.opts.recorder.ExpenseRecorded()
	slog.Info("Expense recorded",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"shares_count", len(expense.Shares),
	)
	return expense, nil
}

// SettleShare marks a share as paid. Either the debtor or the payer may
// settle it; settling twice is a Conflict.
func (s *LedgerService) SettleShare(ctx context.Context, shareID, actorID string) (*models.ExpenseShare, error) {
	slog.Info("SettleShare request received", "share_id", shareID, "actor_id", actorID)

	share, err := s.store.GetShare(ctx, shareID)
	if err != nil {
		return nil, storeError(err, "share "+shareID+" not found", "failed to load share")
	}
	if actorID != share.DebtorID && actorID != share.PayerID {
		return nil, apperr.Forbidden("only the debtor or the payer can settle share %s", shareID)
	}
	if share.Settled {
		return nil, apperr.Conflict("share %s is already settled", shareID)
	}

	settledAt := s.opts.now().UnixMilli()
	ok, err := s.store.SettleShare(ctx, shareID, settledAt)
	if err != nil {
		slog.Error("SettleShare failed", "share_id", shareID, "error", err)
		return nil, apperr.Internal(err, "failed to settle share")
	}
	if !ok {
		// Lost the race against a concurrent settle.
		return nil, apperr.Conflict("share %s is already settled", shareID)
	}

	s.opts.recorder.ShareSettled()
	slog.Info("Share settled", "share_id", shareID, "expense_id", share.ExpenseID)

	settled := share.ExpenseShare
	settled.Settled = true
	settled.SettledAt = &settledAt
	return &settled, nil
}

// DeleteExpense removes an expense and its shares. Only the payer or the
// group creator may delete it.
func (s *LedgerService) DeleteExpense(ctx context.Context, expenseID, actorID string) error {
	slog.Info("DeleteExpense request received", "expense_id", expenseID, "actor_id", actorID)

	var removed int64
	err := s.store.WithTx(ctx, func(q storage.Queries) error {
		expense, err := q.GetExpense(ctx, expenseID)
		if err != nil {
			return storeError(err, "expense "+expenseID+" not found", "failed to load expense")
		}
		group, err := q.LockGroup(ctx, expense.GroupID)
		if err != nil {
			return storeError(err, "group "+expense.GroupID+" not found", "failed to load group")
		}
		if actorID != expense.PayerID && actorID != group.CreatedBy {
			return apperr.Forbidden("only the payer or the group creator can delete expense %s", expenseID)
		}

		removed, err = q.DeleteExpense(ctx, expenseID)
		if err != nil {
			return storeError(err, "expense "+expenseID+" not found", "failed to delete expense")
		}
		return nil
	})
	if err != nil {
		slog.Warn("DeleteExpense failed", "expense_id", expenseID, "error", err)
		return err
	}

	s.opts.recorder.ExpenseDeleted(removed)
	slog.Info("Expense deleted", "expense_id", expenseID, "shares_removed", removed)
	return nil
}

// ListExpenses returns the group's expenses with their shares, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, groupID, callerID string) ([]*models.Expense, error) {
	if err := s.requireMember(ctx, s.store, groupID, callerID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", groupID, "error", err)
		return nil, apperr.Internal(err, "failed to list expenses")
	}
	slog.Debug("ListExpenses successful", "group_id", groupID, "count", len(expenses))
	return expenses, nil
}

// GetExpense returns one expense with its shares.
func (s *LedgerService) GetExpense(ctx context.Context, expenseID, callerID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, storeError(err, "expense "+expenseID+" not found", "failed to load expense")
	}
	ok, err := s.store.IsGroupMember(ctx, expense.GroupID, callerID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to check membership")
	}
	if !ok {
		return nil, apperr.Forbidden("not a member of group %s", expense.GroupID)
	}
	return expense, nil
}

// ComputeBalances nets the group's unsettled shares into per-member
// balances. Positive means owed money. The balances always sum to zero.
// Former members with open shares are included.
func (s *LedgerService) ComputeBalances(ctx context.Context, groupID, callerID string) ([]models.MemberBalance, error) {
	var result []models.MemberBalance
	err := s.store.WithTx(ctx, func(q storage.Queries) error {
		group, err := q.GetGroup(ctx, groupID)
		if err != nil {
			return storeError(err, "group "+groupID+" not found", "failed to load group")
		}
		if !group.HasMember(callerID) {
			return apperr.Forbidden("not a member of group %s", groupID)
		}

		shares, err := q.ListUnsettledSharesByGroup(ctx, groupID)
		if err != nil {
			return apperr.Internal(err, "failed to load shares")
		}
		forBalance, err := toBalanceShares(shares)
		if err != nil {
			return err
		}

		balances := calculator.GroupBalances(forBalance, group.Members)
		result = make([]models.MemberBalance, len(balances))
		for i, b := range balances {
			result[i] = models.MemberBalance{UserID: b.UserID, Balance: money.FromMinor(b.Minor)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SummarizeUser totals the user's unsettled positions across every group.
func (s *LedgerService) SummarizeUser(ctx context.Context, userID string) (*models.UserSummary, error) {
	shares, err := s.store.ListUnsettledSharesForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load shares")
	}
	forBalance, err := toBalanceShares(shares)
	if err != nil {
		return nil, err
	}

	owedTo, owedBy := calculator.UserTotals(forBalance, userID)
	return &models.UserSummary{
		UserID:     userID,
		OwedToUser: money.FromMinor(owedTo),
		OwedByUser: money.FromMinor(owedBy),
		Net:        money.FromMinor(owedTo - owedBy),
	}, nil
}

func (s *LedgerService) requireMember(ctx context.Context, q storage.Queries, groupID, userID string) error {
	group, err := q.GetGroup(ctx, groupID)
	if err != nil {
		return storeError(err, "group "+groupID+" not found", "failed to load group")
	}
	if !group.HasMember(userID) {
		return apperr.Forbidden("not a member of group %s", groupID)
	}
	return nil
}

func toBalanceShares(shares []models.ShareWithExpense) ([]calculator.ShareForBalance, error) {
	out := make([]calculator.ShareForBalance, len(shares))
	for i, sh := range shares {
		minor, err := money.ToMinor(sh.Amount)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("share %s: %w", sh.ID, err), "stored share amount is invalid")
		}
		out[i] = calculator.ShareForBalance{DebtorID: sh.DebtorID, PayerID: sh.PayerID, Minor: minor}
	}
	return out, nil
}
