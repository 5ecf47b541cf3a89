package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"ragchat/src/core/retrieval"
	"ragchat/src/infrastructure/log"
)

// DefaultFragmentCount is used when a session is configured with K <= 0.
const DefaultFragmentCount = 4

// Generator produces a streamed answer for an assembled payload. The
// returned stream is finite and not restartable; implementations must close
// it with a *GenerationError on backend failure and release all resources
// when ctx is cancelled.
type Generator interface {
	Generate(ctx context.Context, payload Payload) (*Stream, error)
}

// EventSink receives optional side-channel session events. It is distinct
// from the answer increment stream and never carries increments.
type EventSink interface {
	Publish(event string, fields map[string]interface{})
}

// State tracks where the session loop currently is for one query.
type State int32

const (
	StateIdle State = iota
	StateRetrieving
	StateAssembling
	StateGenerating
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRetrieving:
		return "retrieving"
	case StateAssembling:
		return "assembling"
	case StateGenerating:
		return "generating"
	case StateCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// Options configure one session. They are passed through to the generation
// backend unchanged.
type Options struct {
	// System is the static instructions preamble. Empty selects
	// DefaultSystemInstructions.
	System string

	// K is the number of fragments requested per query.
	K int

	// HistoryWindow bounds how many trailing turns are assembled into each
	// payload. Zero means the full transcript.
	HistoryWindow int

	// DegradeOnRetrievalError makes the loop continue with zero fragments
	// when the index is unreachable instead of surfacing the failure.
	DegradeOnRetrievalError bool
}

// Session runs the query loop for one conversation: retrieve, assemble,
// generate, stream increments to the caller, then commit the finished
// exchange to history. At most one query is in flight at a time.
type Session struct {
	id        string
	retriever retrieval.Retriever
	generator Generator
	history   *History
	events    EventSink
	opts      Options

	mu       sync.Mutex
	state    State
	inflight bool
}

func NewSession(r retrieval.Retriever, g Generator, opts Options, events EventSink) *Session {
	return &Session{
		id:        uuid.New().String(),
		retriever: r,
		generator: g,
		history:   NewHistory(),
		events:    events,
		opts:      opts,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) History() *History {
	return s.history
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ask runs one query through the loop and returns the increment stream. The
// user and assistant turns are committed as a pair only after the stream is
// exhausted without error; on any failure the transcript is untouched and
// the session returns to idle, ready for the next query.
func (s *Session) Ask(ctx context.Context, query string) (*Stream, error) {
	if !s.begin() {
		return nil, ErrBusy
	}

	// Reject malformed input before any external call.
	if strings.TrimSpace(query) == "" {
		s.toIdle()
		return nil, ErrEmptyQuery
	}
	s.publish("query.received", map[string]interface{}{"session": s.id})

	s.setState(StateRetrieving)
	k := s.opts.K
	if k <= 0 {
		k = DefaultFragmentCount
	}
	fragments, err := s.retriever.Retrieve(ctx, query, k)
	if err != nil {
		if errors.Is(err, retrieval.ErrUnavailable) && s.opts.DegradeOnRetrievalError {
			log.Info("index unavailable, generating without context", "session", s.id)
			fragments = nil
		} else {
			s.fail("retrieving", err)
			return nil, err
		}
	}
	s.publish("retrieval.completed", map[string]interface{}{
		"session":   s.id,
		"fragments": len(fragments),
	})

	s.setState(StateAssembling)
	turns := s.history.Snapshot()
	if w := s.opts.HistoryWindow; w > 0 {
		turns = LastN(turns, w)
	}
	payload, err := Assemble(s.opts.System, turns, fragments, query)
	if err != nil {
		s.fail("assembling", err)
		return nil, err
	}

	s.setState(StateGenerating)
	genCtx, cancel := context.WithCancel(ctx)
	backend, err := s.generator.Generate(genCtx, payload)
	if err != nil {
		cancel()
		s.fail("generating", err)
		return nil, err
	}

	out := NewStream(cancel)
	go s.forward(genCtx, query, backend, out)
	return out, nil
}

// forward copies increments from the backend stream to the caller's stream
// as they arrive, accumulating the answer. The exchange is committed only
// when the backend finishes cleanly.
func (s *Session) forward(ctx context.Context, query string, backend, out *Stream) {
	var answer strings.Builder

	for increment := range backend.Increments() {
		answer.WriteString(increment)
		if !out.Emit(ctx, increment) {
			// Consumer abandoned the stream; tear down generation and
			// leave the transcript untouched.
			backend.Cancel()
			for range backend.Increments() {
			}
			s.fail("generating", ctx.Err())
			out.Close(ctx.Err())
			return
		}
	}

	if err := backend.Err(); err != nil {
		s.fail("generating", err)
		out.Close(err)
		return
	}

	s.setState(StateCommitting)
	user, assistant := s.history.AppendExchange(query, answer.String())
	s.publish("answer.committed", map[string]interface{}{
		"session":  s.id,
		"ordinals": []int64{user.Ordinal, assistant.Ordinal},
	})
	s.toIdle()
	out.Close(nil)
}

func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight {
		return false
	}
	s.inflight = true
	return true
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) toIdle() {
	s.mu.Lock()
	s.state = StateIdle
	s.inflight = false
	s.mu.Unlock()
}

func (s *Session) fail(stage string, err error) {
	if err != nil {
		log.Error(err, "query failed", "session", s.id, "stage", stage)
	}
	s.publish("query.failed", map[string]interface{}{
		"session": s.id,
		"stage":   stage,
	})
	s.toIdle()
}

func (s *Session) publish(event string, fields map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(event, fields)
}
