package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Profile handles GET /users/:id — balances, draws, battle record.
func (h *Handler) Profile(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	u, err := h.UserRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Ledger handles GET /users/:id/transactions
func (h *Handler) Ledger(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	txs, err := h.LedgerRepo.GetByUserID(c.Request.Context(), userID, 50)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
