package handlers

import (
	"net/http"

	"mesquite/services"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	leaderboardService *services.LeaderboardService
	roundService       *services.RoundService
}

func NewCourseHandler(leaderboardService *services.LeaderboardService, roundService *services.RoundService) *CourseHandler {
	return &CourseHandler{
		leaderboardService: leaderboardService,
		roundService:       roundService,
	}
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.leaderboardService.ListCourses(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// EligiblePlayers lists active players who can still join a round on the
// course, for the group-forming picker.
func (h *CourseHandler) EligiblePlayers(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course ID required"})
		return
	}

	players, err := h.roundService.EligiblePlayers(c.Request.Context(), courseID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, players)
}

func (h *CourseHandler) ListGroups(c *gin.Context) {
	courseID := c.Param("id")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course ID required"})
		return
	}

	groups, err := h.leaderboardService.ListGroups(c.Request.Context(), courseID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}
