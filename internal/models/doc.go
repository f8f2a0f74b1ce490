// Package models defines the core domain models for the shared-expense ledger.
//
// # Models
//
//   - User: registered account, owned by the identity layer
//   - Profile: per-user contact and preference details
//   - Group: set of members who share expenses
//   - Expense: an amount paid by one member on behalf of a group
//   - ExpenseShare: one member's owed portion of an expense
//
// # Conventions
//
// Relationships are expressed with ID strings, never pointers. Amounts are
// decimal.Decimal values with two fractional digits. Timestamps are Unix
// milliseconds.
package models
