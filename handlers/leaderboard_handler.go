package handlers

import (
	"net/http"

	"mesquite/services"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) Live(c *gin.Context) {
	courseID := c.Param("courseId")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course ID required"})
		return
	}

	rows, err := h.leaderboardService.LiveLeaderboard(
		c.Request.Context(), courseID, c.Query("sort"), c.Query("dir"))
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "rows": rows})
}

func (h *LeaderboardHandler) Tournament(c *gin.Context) {
	board, err := h.leaderboardService.TournamentLeaderboard(
		c.Request.Context(), c.Query("score_type"), c.Query("sort"), c.Query("dir"))
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

func (h *LeaderboardHandler) Scorecard(c *gin.Context) {
	courseID := c.Param("courseId")
	groupID := c.Param("groupId")
	if courseID == "" || groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course ID and Group ID required"})
		return
	}

	card, err := h.leaderboardService.Scorecard(c.Request.Context(), courseID, groupID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}
