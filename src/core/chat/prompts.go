package chat

const (
	// DefaultSystemInstructions is the static preamble sent to the
	// generation backend when no instructions are configured.
	DefaultSystemInstructions = `You are an expert assistant. Answer using the provided context and conversation history. When the context does not contain the answer, say so rather than inventing one.`

	// AnswerPromptTmpl renders the assembled payload into the single prompt
	// sent to the generation backend: retrieved context first, then the
	// running history in ordinal order, then the new question.
	AnswerPromptTmpl = `## Task Context and History

- **Context**:
{{range .Fragments}}
{{.Content}}
{{end}}
- **Chat History**:
{{range .Turns}}{{.Role}}: {{.Content}}
{{end}}
- **User Question**: {{.Query}}

## Answer

Answer the question concisely, grounded in the context above.
`
)
