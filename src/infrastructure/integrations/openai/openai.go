package openai

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"ragchat/src/core/chat"
)

// Generator streams completions from the OpenAI chat API through
// langchaingo. Model, temperature and API key are configuration passed
// through unchanged.
type Generator struct {
	llm         *openai.LLM
	temperature float64
}

func NewGenerator(model, token string, temperature float64) (*Generator, error) {
	opts := []openai.Option{openai.WithModel(model)}
	if token != "" {
		opts = append(opts, openai.WithToken(token))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return &Generator{
		llm:         llm,
		temperature: temperature,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, payload chat.Payload) (*chat.Stream, error) {
	prompt, err := payload.Render()
	if err != nil {
		return nil, &chat.GenerationError{Err: err}
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, payload.System),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	stream := chat.NewStream(nil)
	go func() {
		_, err := g.llm.GenerateContent(ctx, messages,
			llms.WithTemperature(g.temperature),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				if !stream.Emit(ctx, string(chunk)) {
					return ctx.Err()
				}
				return nil
			}),
		)
		switch {
		case err == nil:
			stream.Close(nil)
		case ctx.Err() != nil && errors.Is(err, ctx.Err()):
			stream.Close(ctx.Err())
		default:
			stream.Close(&chat.GenerationError{Err: err})
		}
	}()
	return stream, nil
}
