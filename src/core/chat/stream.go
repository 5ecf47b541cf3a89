package chat

import (
	"context"
	"strings"
	"sync"
)

// Stream is a finite, non-restartable sequence of answer increments.
// Increments are non-empty and arrive in emission order; their concatenation
// is the full answer. The channel closes when generation completes or fails,
// after which Err reports the outcome.
//
// A stream has a single consumer. The producer side (Emit/Close) belongs to
// Generator implementations and the session loop.
type Stream struct {
	ch     chan string
	cancel context.CancelFunc

	closeOnce sync.Once
	err       error
}

// NewStream returns a stream whose resources are released through cancel on
// every exit path, including consumer abandonment.
func NewStream(cancel context.CancelFunc) *Stream {
	if cancel == nil {
		cancel = func() {}
	}
	return &Stream{
		ch:     make(chan string, 16),
		cancel: cancel,
	}
}

// Increments returns the channel of partial answers. Range over it; once it
// is closed, check Err.
func (s *Stream) Increments() <-chan string {
	return s.ch
}

// Err reports how the stream ended. It is valid only after the increments
// channel has been closed.
func (s *Stream) Err() error {
	return s.err
}

// Cancel abandons the stream. The underlying generation is torn down and no
// turn is committed.
func (s *Stream) Cancel() {
	s.cancel()
}

// Emit forwards one increment to the consumer. Empty increments are dropped.
// It returns false when ctx is done, signalling the producer to stop.
func (s *Stream) Emit(ctx context.Context, increment string) bool {
	if increment == "" {
		return true
	}
	select {
	case s.ch <- increment:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close ends the stream. A nil err means generation completed; a non-nil err
// is surfaced to the consumer through Err. Close is idempotent and always
// releases the underlying generation resources.
func (s *Stream) Close(err error) {
	s.closeOnce.Do(func() {
		s.err = err
		close(s.ch)
		s.cancel()
	})
}

// Text consumes the whole stream and returns the concatenated answer. It
// blocks until the stream ends.
func (s *Stream) Text() (string, error) {
	var b strings.Builder
	for increment := range s.ch {
		b.WriteString(increment)
	}
	return b.String(), s.err
}
