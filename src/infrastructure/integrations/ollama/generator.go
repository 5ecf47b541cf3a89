package ollama

import (
	"context"

	"ragchat/src/core/chat"
)

// Generator adapts the Ollama client to the chat.Generator contract.
type Generator struct {
	client  *Client
	model   string
	options map[string]interface{}
}

func NewGenerator(client *Client, model string, temperature float64) *Generator {
	return &Generator{
		client: client,
		model:  model,
		options: map[string]interface{}{
			"temperature": temperature,
			"top_p":       0.9,
		},
	}
}

// Generate renders the payload and streams the completion. Increments reach
// the returned stream as the backend emits them; the stream closes with a
// *chat.GenerationError on backend failure.
func (g *Generator) Generate(ctx context.Context, payload chat.Payload) (*chat.Stream, error) {
	prompt, err := payload.Render()
	if err != nil {
		return nil, &chat.GenerationError{Err: err}
	}

	stream := chat.NewStream(nil)
	go func() {
		err := g.client.GenerateStream(ctx, g.model, payload.System, prompt, g.options, func(chunk string) bool {
			return stream.Emit(ctx, chunk)
		})
		if err != nil {
			if ctx.Err() != nil {
				stream.Close(ctx.Err())
				return
			}
			stream.Close(&chat.GenerationError{Err: err})
			return
		}
		stream.Close(nil)
	}()
	return stream, nil
}
