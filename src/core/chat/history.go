package chat

import (
	"sync"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one committed message of the transcript. Turns are immutable once
// appended; ordinals increase strictly in append order.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Ordinal   int64     `json:"ordinal"`
	CreatedAt time.Time `json:"createdAt"`
}

// History is the append-only transcript of a session. A user turn and its
// assistant turn are always committed as a pair, user first, so a snapshot
// never shows an answer without its question.
//
// History lives in memory only; it is not persisted across restarts.
type History struct {
	mu    sync.RWMutex
	turns []Turn
	next  int64
}

func NewHistory() *History {
	return &History{}
}

// AppendExchange commits a completed round trip. The user turn receives the
// next ordinal and the assistant turn the one after it, atomically with
// respect to Snapshot.
func (h *History) AppendExchange(query, answer string) (Turn, Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now().UTC()
	user := Turn{Role: RoleUser, Content: query, Ordinal: h.next, CreatedAt: now}
	assistant := Turn{Role: RoleAssistant, Content: answer, Ordinal: h.next + 1, CreatedAt: now}
	h.next += 2
	h.turns = append(h.turns, user, assistant)
	return user, assistant
}

// Snapshot returns a copy of the transcript. It is safe to call while a
// generation is in flight; readers observe either the pre- or post-commit
// state, never a partially appended exchange.
func (h *History) Snapshot() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	turns := make([]Turn, len(h.turns))
	copy(turns, h.turns)
	return turns
}

// Len returns the number of committed turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

// LastN returns the trailing n turns of a snapshot, preserving order. The
// core never truncates history on its own; callers that need a bounded
// context window apply this before assembling.
func LastN(turns []Turn, n int) []Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
