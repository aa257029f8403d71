package routes

import (
	"net/http"

	"mesquite/handlers"
	"mesquite/middleware"
	"mesquite/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	roundHandler *handlers.RoundHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	courseHandler *handlers.CourseHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Round routes (only the scorekeeper's device drives these)
		rounds := api.Group("/rounds")
		rounds.Use(middleware.AuthMiddleware(jwtSecret))
		{
			rounds.POST("", roundHandler.StartGroup)
			rounds.GET("/resume", roundHandler.Resume)
			rounds.POST("/:groupId/score", roundHandler.RecordScore)
			rounds.POST("/:groupId/advance", roundHandler.Advance)
			rounds.POST("/:groupId/retreat", roundHandler.Retreat)
			rounds.POST("/:groupId/submit", roundHandler.Submit)
			rounds.POST("/:groupId/edit", roundHandler.Edit)
			rounds.DELETE("/:groupId", roundHandler.Discard)
		}

		// Public read routes
		courses := api.Group("/courses")
		{
			courses.GET("", courseHandler.ListCourses)
			courses.GET("/:id/players", courseHandler.EligiblePlayers)
			courses.GET("/:id/groups", courseHandler.ListGroups)
		}

		leaderboard := api.Group("/leaderboard")
		{
			leaderboard.GET("/tournament", leaderboardHandler.Tournament)
			leaderboard.GET("/live/:courseId", leaderboardHandler.Live)
		}

		api.GET("/scorecard/:courseId/:groupId", leaderboardHandler.Scorecard)
	}

	// WebSocket endpoint for live leaderboard updates
	router.GET("/ws/:courseId", func(c *gin.Context) {
		courseID := c.Param("courseId")
		userID := c.Query("userId")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		client := hub.RegisterClient(conn, courseID, userID)
		hub.SendLeaderboardSync(client)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
