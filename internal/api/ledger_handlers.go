package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/splitledger/internal/models/dto"
	"github.com/mmynk/splitledger/internal/service"
)

// RecordExpense records an expense paid by the caller.
func (h *Handler) RecordExpense(c *gin.Context) {
	var req dto.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	expense, err := h.ledgerService.RecordExpense(c.Request.Context(), service.RecordExpenseInput{
		GroupID:     c.Param("id"),
		PayerID:     currentUser(c),
		Description: req.Description,
		Amount:      req.Amount,
		Allocation:  req.Allocation,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromExpense(expense))
}

func (h *Handler) ListExpenses(c *gin.Context) {
	expenses, err := h.ledgerService.ListExpenses(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromExpenses(expenses))
}

func (h *Handler) GetExpense(c *gin.Context) {
	expense, err := h.ledgerService.GetExpense(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromExpense(expense))
}

func (h *Handler) DeleteExpense(c *gin.Context) {
	if err := h.ledgerService.DeleteExpense(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SettleShare marks a share as paid. Either the debtor or the payer may settle.
func (h *Handler) SettleShare(c *gin.Context) {
	share, err := h.ledgerService.SettleShare(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromShare(*share))
}

func (h *Handler) GroupBalances(c *gin.Context) {
	groupID := c.Param("id")
	balances, err := h.ledgerService.ComputeBalances(c.Request.Context(), groupID, currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromBalances(groupID, balances))
}

// UserSummary returns the caller's unsettled totals across all groups.
func (h *Handler) UserSummary(c *gin.Context) {
	summary, err := h.ledgerService.SummarizeUser(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSummary(summary))
}
