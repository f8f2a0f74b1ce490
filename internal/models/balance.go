package models

import "github.com/shopspring/decimal"

// MemberBalance is a member's net position in a group.
// Positive means the member is owed money, negative means they owe.
type MemberBalance struct {
	UserID  string
	Balance decimal.Decimal
}

// UserSummary aggregates a user's unsettled positions across all groups.
type UserSummary struct {
	UserID string

	// OwedToUser is the total of unsettled shares where the user is the payer.
	OwedToUser decimal.Decimal

	// OwedByUser is the total of the user's own unsettled shares.
	OwedByUser decimal.Decimal

	// Net is OwedToUser - OwedByUser.
	Net decimal.Decimal
}
