package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RedeemRequest applies a code to a user's account.
type RedeemRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

// Redeem handles POST /redeem
func (h *Handler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := h.RedeemService.Redeem(c.Request.Context(), req.UserID, req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
