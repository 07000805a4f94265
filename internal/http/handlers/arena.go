package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// EquipRequest selects one of the user's owned powers.
type EquipRequest struct {
	UserID      int64 `json:"user_id" binding:"required"`
	UserPowerID int64 `json:"user_power_id" binding:"required"`
}

// Equip handles POST /powers/equip
func (h *Handler) Equip(c *gin.Context) {
	var req EquipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := h.PowerService.Equip(c.Request.Context(), req.UserID, req.UserPowerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Collection handles GET /powers/:id
func (h *Handler) Collection(c *gin.Context) {
	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	powers, err := h.PowerService.Collection(c.Request.Context(), userID, 50)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"powers": powers})
}

// ArenaTop handles GET /arena/top
func (h *Handler) ArenaTop(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	top, err := h.PowerService.ArenaTop(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": top})
}
