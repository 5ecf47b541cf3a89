package http

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"ragchat/src/core/chat"
	"ragchat/src/core/retrieval"
)

// ErrSessionNotFound is returned for requests naming an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// Pinger checks one backing component for the health endpoint.
type Pinger func(ctx context.Context) error

type Handler struct {
	sessions *sessionRegistry
	pingers  map[string]Pinger
}

// NewHandler builds the HTTP surface. newSession creates a fresh session for
// callers that do not present one; pingers feed the health endpoint.
func NewHandler(newSession func() *chat.Session, pingers map[string]Pinger) *Handler {
	return &Handler{
		sessions: &sessionRegistry{
			sessions:   make(map[string]*chat.Session),
			newSession: newSession,
		},
		pingers: pingers,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	// Chat routes
	api.POST("/chat/completions", h.GenerateCompletion)
	api.GET("/chat/history", h.GetChatHistory)

	// System routes
	api.GET("/health", h.CheckHealth)
}

// sessionRegistry maps session IDs to their loop instances. Each session
// still admits at most one in-flight query; the registry only routes.
type sessionRegistry struct {
	mu         sync.Mutex
	sessions   map[string]*chat.Session
	newSession func() *chat.Session
}

func (r *sessionRegistry) lookup(id string) (*chat.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *sessionRegistry) create() *chat.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.newSession()
	r.sessions[s.ID()] = s
	return s
}

// Common error response structure
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func sendError(c *gin.Context, status int, err error) {
	var code string
	var generationErr *chat.GenerationError
	switch {
	case errors.Is(err, chat.ErrEmptyQuery):
		code = "EMPTY_QUERY"
		status = http.StatusBadRequest
	case errors.Is(err, chat.ErrBusy):
		code = "SESSION_BUSY"
		status = http.StatusConflict
	case errors.Is(err, retrieval.ErrUnavailable):
		code = "RETRIEVAL_UNAVAILABLE"
		status = http.StatusServiceUnavailable
	case errors.As(err, &generationErr):
		code = "GENERATION_FAILED"
		status = http.StatusBadGateway
	case errors.Is(err, ErrSessionNotFound):
		code = "NOT_FOUND"
		status = http.StatusNotFound
	default:
		code = "INTERNAL_ERROR"
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
