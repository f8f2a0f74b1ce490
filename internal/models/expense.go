package models

import "github.com/shopspring/decimal"

// Expense is an amount paid by one group member.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `db:"id"`

	GroupID string `db:"group_id"`

	// PayerID is the member who paid the full amount.
	PayerID string `db:"payer_id"`

	Description string `db:"description"`

	// Amount is the total paid, always positive with two fractional digits.
	Amount decimal.Decimal `db:"amount"`

	CreatedAt int64 `db:"created_at"`
	UpdatedAt int64 `db:"updated_at"`

	// Shares are the per-member obligations; they sum to Amount.
	Shares []ExpenseShare `db:"-"`
}

// ExpenseShare is one member's owed portion of an expense.
//
// A share moves from unsettled to settled exactly once. SettledAt is set
// if and only if Settled is true.
type ExpenseShare struct {
	ID        string          `db:"id"`
	ExpenseID string          `db:"expense_id"`
	DebtorID  string          `db:"debtor_id"`
	Amount    decimal.Decimal `db:"amount"`
	Settled   bool            `db:"settled"`
	SettledAt *int64          `db:"settled_at"`
}

// ShareWithExpense is a share joined with the fields of its parent expense
// needed for authorization and balance computation.
type ShareWithExpense struct {
	ExpenseShare
	GroupID string `db:"group_id"`
	PayerID string `db:"payer_id"`
}
