package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DrawRequest identifies the drawing user.
type DrawRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// Draw handles POST /gacha/draw
func (h *Handler) Draw(c *gin.Context) {
	var req DrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := h.GachaService.Draw(c.Request.Context(), req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DrawHistory handles GET /gacha/history/:id
func (h *Handler) DrawHistory(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	draws, err := h.GachaService.History(c.Request.Context(), userID, 20)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draws": draws})
}
