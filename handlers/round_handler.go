package handlers

import (
	"errors"
	"net/http"

	"mesquite/services"

	"github.com/gin-gonic/gin"
)

type RoundHandler struct {
	roundService *services.RoundService
	hub          *services.Hub
}

func NewRoundHandler(roundService *services.RoundService, hub *services.Hub) *RoundHandler {
	return &RoundHandler{
		roundService: roundService,
		hub:          hub,
	}
}

func (h *RoundHandler) StartGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.StartGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.roundService.StartGroup(c.Request.Context(), userID, &req)
	if err != nil {
		var partial *services.PartialGroupFailure
		if errors.As(err, &partial) && sess != nil {
			// Some rounds were created; the caller must retry for the rest.
			c.JSON(http.StatusCreated, gin.H{"session": sess, "warning": partial.Error()})
			return
		}
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sess)
}

func (h *RoundHandler) Resume(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	sess, err := h.roundService.ResumeGroup(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (h *RoundHandler) RecordScore(c *gin.Context) {
	groupID := c.Param("groupId")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group ID required"})
		return
	}

	var req services.RecordScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.roundService.RecordScore(c.Request.Context(), groupID, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *RoundHandler) Advance(c *gin.Context) {
	groupID := c.Param("groupId")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group ID required"})
		return
	}

	sess, err := h.roundService.Advance(c.Request.Context(), groupID, h.hub)
	if err != nil {
		var partial *services.PartialGroupFailure
		if errors.As(err, &partial) && sess != nil {
			// The cursor advanced; failed writes are reported, not retried.
			c.JSON(http.StatusOK, gin.H{"session": sess, "warning": partial.Error()})
			return
		}
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *RoundHandler) Retreat(c *gin.Context) {
	groupID := c.Param("groupId")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group ID required"})
		return
	}

	sess, err := h.roundService.Retreat(c.Request.Context(), groupID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *RoundHandler) Submit(c *gin.Context) {
	groupID := c.Param("groupId")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group ID required"})
		return
	}

	if err := h.roundService.Submit(c.Request.Context(), groupID, h.hub); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Round submitted successfully"})
}

func (h *RoundHandler) Edit(c *gin.Context) {
	groupID := c.Param("groupId")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group ID required"})
		return
	}

	sess, err := h.roundService.Edit(c.Request.Context(), groupID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *RoundHandler) Discard(c *gin.Context) {
	groupID := c.Param("groupId")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group ID required"})
		return
	}

	if err := h.roundService.Discard(c.Request.Context(), groupID); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Round discarded"})
}
