package calculator

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNoMembers       = errors.New("must have at least one member")
	ErrNonPositive     = errors.New("total must be greater than zero")
	ErrUnknownMember   = errors.New("allocation references a non-member")
	ErrNegativeShare   = errors.New("allocation amounts must not be negative")
	ErrSumMismatch     = errors.New("allocation does not sum to the expense amount")
	ErrEmptyAllocation = errors.New("allocation must have at least one entry")
)

// Allocation is one member's portion of an expense, in minor units.
type Allocation struct {
	UserID string
	Minor  int64
}

// EqualSplit divides totalMinor among members using integer arithmetic.
//
// Every member gets totalMinor / n. The remainder (totalMinor mod n) is
// handed out one minor unit at a time to members in ascending user-id order,
// so the allocations always sum to totalMinor exactly. The result is sorted
// by user ID.
func EqualSplit(totalMinor int64, members []string) ([]Allocation, error) {
	if totalMinor <= 0 {
		return nil, ErrNonPositive
	}
	ordered := uniqueSorted(members)
	if len(ordered) == 0 {
		return nil, ErrNoMembers
	}

	n := int64(len(ordered))
	base := totalMinor / n
	remainder := totalMinor % n

	allocations := make([]Allocation, len(ordered))
	for i, userID := range ordered {
		share := base
		if int64(i) < remainder {
			share++
		}
		allocations[i] = Allocation{UserID: userID, Minor: share}
	}
	return allocations, nil
}

// ExplicitSplit validates a caller-provided allocation against the member set.
//
// Every key must be a member and every value non-negative, and the values
// must sum to totalMinor exactly. No rounding adjustment is ever applied.
// The result is sorted by user ID.
func ExplicitSplit(totalMinor int64, allocation map[string]int64, members []string) ([]Allocation, error) {
	if totalMinor <= 0 {
		return nil, ErrNonPositive
	}
	if len(allocation) == 0 {
		return nil, ErrEmptyAllocation
	}

	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	var sum int64
	allocations := make([]Allocation, 0, len(allocation))
	for userID, minor := range allocation {
		if !memberSet[userID] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMember, userID)
		}
		if minor < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNegativeShare, userID)
		}
		// sum <= totalMinor holds here, so the subtraction cannot overflow.
		if minor > totalMinor-sum {
			return nil, fmt.Errorf("%w: exceeds %d minor units", ErrSumMismatch, totalMinor)
		}
		sum += minor
		allocations = append(allocations, Allocation{UserID: userID, Minor: minor})
	}
	if sum != totalMinor {
		return nil, fmt.Errorf("%w: got %d, want %d minor units", ErrSumMismatch, sum, totalMinor)
	}

	sort.Slice(allocations, func(i, j int) bool {
		return allocations[i].UserID < allocations[j].UserID
	})
	return allocations, nil
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
