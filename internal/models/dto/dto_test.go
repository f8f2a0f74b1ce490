package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func TestRecordExpenseRequestAcceptsStringsAndNumbers(t *testing.T) {
	body := `{"description":"dinner","amount":10.01,"allocation":{"a":"5.00","b":5.01}}`

	var req RecordExpenseRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !req.Amount.Equal(decimal.RequireFromString("10.01")) {
		t.Errorf("amount = %s, want 10.01", req.Amount)
	}
	if !req.Allocation["b"].Equal(decimal.RequireFromString("5.01")) {
		t.Errorf("allocation[b] = %s, want 5.01", req.Allocation["b"])
	}
}

func TestRecordExpenseRequestWithoutAllocation(t *testing.T) {
	var req RecordExpenseRequest
	if err := json.Unmarshal([]byte(`{"description":"x","amount":"30"}`), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if req.Allocation != nil {
		t.Errorf("omitted allocation must stay nil")
	}
}

func TestFromExpenseFormatsAmounts(t *testing.T) {
	e := &models.Expense{
		ID:     "e1",
		Amount: decimal.RequireFromString("30"),
		Shares: []models.ExpenseShare{{ID: "s1", Amount: decimal.RequireFromString("10")}},
	}
	resp := FromExpense(e)
	if resp.Amount != "30.00" || resp.Shares[0].Amount != "10.00" {
		t.Errorf("amounts not fixed to two digits: %+v", resp)
	}
}

func TestFromBalances(t *testing.T) {
	resp := FromBalances("g1", []models.MemberBalance{
		{UserID: "a", Balance: decimal.RequireFromString("20")},
		{UserID: "b", Balance: decimal.RequireFromString("-10")},
	})
	if resp.Balances["a"] != "20.00" || resp.Balances["b"] != "-10.00" {
		t.Errorf("unexpected balances: %v", resp.Balances)
	}
}
