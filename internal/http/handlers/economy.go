package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TransferRequest moves coins between two users.
type TransferRequest struct {
	FromUserID int64 `json:"from_user_id" binding:"required"`
	ToUserID   int64 `json:"to_user_id" binding:"required"`
	Amount     int64 `json:"amount" binding:"required,gt=0"`
}

// Transfer handles POST /economy/transfer
func (h *Handler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := h.EconomyService.Transfer(c.Request.Context(), req.FromUserID, req.ToUserID, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// BankRequest deposits to or withdraws from the bank.
type BankRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// Deposit handles POST /economy/bank/deposit
func (h *Handler) Deposit(c *gin.Context) {
	var req BankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := h.EconomyService.Deposit(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Withdraw handles POST /economy/bank/withdraw
func (h *Handler) Withdraw(c *gin.Context) {
	var req BankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := h.EconomyService.Withdraw(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// pathUserID parses the :id path parameter.
func pathUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, false
	}
	return id, true
}
