package chat

import "errors"

var (
	// ErrEmptyQuery rejects a blank user query before any external call is made.
	ErrEmptyQuery = errors.New("chat: empty query")

	// ErrBusy is returned when a session already has a query in flight.
	ErrBusy = errors.New("chat: session busy")
)

// GenerationError wraps a failure of the generation backend. The session
// loop treats it as recoverable: nothing is committed to history and the
// session stays usable.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "chat: generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
