package chat

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"ragchat/src/core/retrieval"
)

// Payload is the fully assembled input for one generation request. It is
// built per query, handed to a Generator once, and discarded.
type Payload struct {
	System    string
	Turns     []Turn
	Fragments []retrieval.Fragment
	Query     string
}

// Assemble combines the running history, the retrieved fragments and the new
// user query into a payload. It is a pure function: it never mutates its
// inputs and identical inputs produce identical payloads. Fragments keep
// retrieval-rank order; turns keep full ordinal order. History truncation is
// the caller's job (see LastN).
func Assemble(system string, history []Turn, fragments []retrieval.Fragment, query string) (Payload, error) {
	if strings.TrimSpace(query) == "" {
		return Payload{}, ErrEmptyQuery
	}
	if system == "" {
		system = DefaultSystemInstructions
	}

	turns := make([]Turn, len(history))
	copy(turns, history)
	frags := make([]retrieval.Fragment, len(fragments))
	copy(frags, fragments)

	return Payload{
		System:    system,
		Turns:     turns,
		Fragments: frags,
		Query:     query,
	}, nil
}

// Render executes the answer prompt template over the payload, producing the
// prompt string for backends that take a single flat prompt.
func (p Payload) Render() (string, error) {
	t := template.Must(template.New("answer").Parse(AnswerPromptTmpl))

	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("failed to execute answer template: %w", err)
	}
	return buf.String(), nil
}
