package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BattleRequest pits a user against an enemy of the given strength.
type BattleRequest struct {
	UserID  int64 `json:"user_id" binding:"required"`
	EnemyCP int   `json:"enemy_cp" binding:"min=0"`
}

// Battle handles POST /battle
func (h *Handler) Battle(c *gin.Context) {
	var req BattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := h.BattleService.Fight(c.Request.Context(), req.UserID, req.EnemyCP)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
