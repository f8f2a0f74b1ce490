package rpc

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models/dto"
)

// Request messages. Responses reuse the REST shapes from package dto.

type CreateGroupRequest = dto.CreateGroupRequest

type ListGroupsRequest struct{}

type MemberRequest struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

type GroupRequest struct {
	GroupID string `json:"groupId"`
}

type RecordExpenseRequest struct {
	GroupID     string                     `json:"groupId"`
	Description string                     `json:"description"`
	Amount      decimal.Decimal            `json:"amount"`
	Allocation  map[string]decimal.Decimal `json:"allocation,omitempty"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type SettleShareRequest struct {
	ShareID string `json:"shareId"`
}

// Empty is the response of procedures that return nothing.
type Empty struct{}
