package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	handler "ragchat/handler/http"
	"ragchat/src/core/chat"
	"ragchat/src/core/retrieval"
)

type stubGenerator struct {
	increments []string
	err        error
}

func (g *stubGenerator) Generate(ctx context.Context, payload chat.Payload) (*chat.Stream, error) {
	stream := chat.NewStream(nil)
	go func() {
		for _, inc := range g.increments {
			if !stream.Emit(ctx, inc) {
				stream.Close(ctx.Err())
				return
			}
		}
		stream.Close(g.err)
	}()
	return stream, nil
}

func newTestRouter(generator chat.Generator, retrieveErr error) (*gin.Engine, *handler.Handler) {
	gin.SetMode(gin.TestMode)
	retriever := retrieval.Func(func(ctx context.Context, query string, k int) ([]retrieval.Fragment, error) {
		if retrieveErr != nil {
			return nil, retrieveErr
		}
		return []retrieval.Fragment{{Content: "fragment", Source: "doc.md", Score: 1}}, nil
	})
	h := handler.NewHandler(func() *chat.Session {
		return chat.NewSession(retriever, generator, chat.Options{}, nil)
	}, nil)

	r := gin.New()
	h.RegisterRoutes(r)
	return r, h
}

// sseRecorder adds the CloseNotify the SSE stream loop expects from the
// response writer.
type sseRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newSSERecorder() *sseRecorder {
	return &sseRecorder{
		ResponseRecorder: httptest.NewRecorder(),
		closed:           make(chan bool, 1),
	}
}

func (r *sseRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func postCompletion(t *testing.T, r *gin.Engine, body string) *sseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := newSSERecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateCompletionStreamsAnswer(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{increments: []string{"Hel", "lo"}}, nil)

	w := postCompletion(t, r, `{"message":"hi"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Session-ID") == "" {
		t.Error("X-Session-ID header missing")
	}

	body := w.Body.String()
	for _, want := range []string{"event:message", "Hel", "lo", "event:done", "Hello"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestGenerateCompletionContinuesSession(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{increments: []string{"answer"}}, nil)

	first := postCompletion(t, r, `{"message":"first"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	sessionID := first.Header().Get("X-Session-ID")

	second := postCompletion(t, r, `{"sessionId":"`+sessionID+`","message":"second"}`)
	if second.Code != http.StatusOK {
		t.Fatalf("second status = %d, body = %s", second.Code, second.Body.String())
	}
	if got := second.Header().Get("X-Session-ID"); got != sessionID {
		t.Errorf("X-Session-ID = %q, want %q", got, sessionID)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history?sessionId="+sessionID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
	var turns []chat.Turn
	if err := json.Unmarshal(w.Body.Bytes(), &turns); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("len(turns) = %d, want 4", len(turns))
	}
	if turns[0].Content != "first" || turns[2].Content != "second" {
		t.Errorf("turns = %+v", turns)
	}
}

func TestGenerateCompletionErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		generator   chat.Generator
		retrieveErr error
		wantStatus  int
		wantCode    string
	}{
		{
			name:       "missing message",
			body:       `{}`,
			generator:  &stubGenerator{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blank message",
			body:       `{"message":"   "}`,
			generator:  &stubGenerator{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "EMPTY_QUERY",
		},
		{
			name:       "unknown session",
			body:       `{"sessionId":"nope","message":"hi"}`,
			generator:  &stubGenerator{},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:        "index down",
			body:        `{"message":"hi"}`,
			generator:   &stubGenerator{},
			retrieveErr: retrieval.ErrUnavailable,
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    "RETRIEVAL_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(tt.generator, tt.retrieveErr)
			w := postCompletion(t, r, tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode == "" {
				return
			}
			var resp handler.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestGenerateCompletionStreamError(t *testing.T) {
	r, _ := newTestRouter(&stubGenerator{
		increments: []string{"partial"},
		err:        &chat.GenerationError{Err: errors.New("model failed")},
	}, nil)

	w := postCompletion(t, r, `{"message":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event:error") {
		t.Errorf("body missing error event:\n%s", body)
	}
	if strings.Contains(body, "event:done") {
		t.Errorf("failed stream must not emit done:\n%s", body)
	}
}

func TestCheckHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.NewHandler(func() *chat.Session {
		return chat.NewSession(nil, nil, chat.Options{}, nil)
	}, map[string]handler.Pinger{
		"up":   func(ctx context.Context) error { return nil },
		"down": func(ctx context.Context) error { return errors.New("unreachable") },
	})
	r := gin.New()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var status handler.HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if status.Status != "unhealthy" {
		t.Errorf("status = %q", status.Status)
	}
	if status.Components["up"] != handler.StatusUp || status.Components["down"] != handler.StatusDown {
		t.Errorf("components = %+v", status.Components)
	}
}
