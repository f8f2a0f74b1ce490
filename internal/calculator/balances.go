package calculator

import "sort"

// ShareForBalance is an unsettled share with the minimal information needed
// for balance calculations.
type ShareForBalance struct {
	DebtorID string
	PayerID  string
	Minor    int64
}

// MemberBalance is one user's net position, in minor units.
// Positive means the user is owed money, negative means they owe.
type MemberBalance struct {
	UserID string
	Minor  int64
}

// GroupBalances nets unsettled shares into per-user balances.
//
// For every share the debtor's balance decreases by the amount and the
// payer's balance increases by the same amount, so the balances always sum
// to zero. Every member appears in the result, including members with a zero
// balance; users with shares who are no longer members appear as well.
// Shares where debtor and payer are the same user are skipped.
// The result is sorted by user ID.
func GroupBalances(shares []ShareForBalance, members []string) []MemberBalance {
	balances := make(map[string]int64, len(members))
	for _, m := range members {
		balances[m] = 0
	}

	for _, s := range shares {
		if s.DebtorID == s.PayerID {
			continue
		}
		balances[s.DebtorID] -= s.Minor
		balances[s.PayerID] += s.Minor
	}

	result := make([]MemberBalance, 0, len(balances))
	for userID, minor := range balances {
		result = append(result, MemberBalance{UserID: userID, Minor: minor})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UserID < result[j].UserID
	})
	return result
}

// UserTotals sums the unsettled shares touching userID.
// owedToUser counts shares the user paid for; owedByUser counts the user's
// own debts.
func UserTotals(shares []ShareForBalance, userID string) (owedToUser, owedByUser int64) {
	for _, s := range shares {
		if s.DebtorID == s.PayerID {
			continue
		}
		if s.PayerID == userID {
			owedToUser += s.Minor
		}
		if s.DebtorID == userID {
			owedByUser += s.Minor
		}
	}
	return owedToUser, owedByUser
}
