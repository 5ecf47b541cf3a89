package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type completionRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message" binding:"required"`
}

// GenerateCompletion godoc
// @Summary Ask a question and stream the answer
// @Tags chat
// @Accept json
// @Produce text/event-stream
// @Param body body completionRequest true "Completion parameters"
// @Success 200 {string} string "SSE stream of message events, terminated by done or error"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /chat/completions [post]
func (h *Handler) GenerateCompletion(c *gin.Context) {
	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	session, ok := h.sessions.lookup(req.SessionID)
	if !ok {
		if req.SessionID != "" {
			sendError(c, http.StatusNotFound, fmt.Errorf("%w: %s", ErrSessionNotFound, req.SessionID))
			return
		}
		session = h.sessions.create()
	}

	stream, err := session.Ask(c.Request.Context(), req.Message)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	// Client disconnects must tear down the generation.
	defer stream.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Session-ID", session.ID())

	// Forward each increment as it arrives; the final event carries the
	// committed answer, which equals the concatenation of all increments.
	var answer strings.Builder
	c.Stream(func(w io.Writer) bool {
		increment, ok := <-stream.Increments()
		if !ok {
			if err := stream.Err(); err != nil {
				c.SSEvent("error", gin.H{"message": err.Error()})
			} else {
				c.SSEvent("done", gin.H{
					"sessionId": session.ID(),
					"answer":    answer.String(),
				})
			}
			return false
		}
		answer.WriteString(increment)
		c.SSEvent("message", increment)
		return true
	})
}

// GetChatHistory godoc
// @Summary Get the session transcript
// @Tags chat
// @Param sessionId query string true "Chat session ID"
// @Produce json
// @Success 200 {array} chat.Turn
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chat/history [get]
func (h *Handler) GetChatHistory(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		sendError(c, http.StatusBadRequest, fmt.Errorf("sessionId is required"))
		return
	}

	session, ok := h.sessions.lookup(sessionID)
	if !ok {
		sendError(c, http.StatusNotFound, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID))
		return
	}

	sendJSON(c, http.StatusOK, session.History().Snapshot())
}
