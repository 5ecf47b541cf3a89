package weaviate

import (
	"context"
	"fmt"

	"ragchat/src/core/retrieval"
	"ragchat/src/infrastructure/log"
)

// Embedder turns a query into the vector the index was built with. The
// embedding model itself is an opaque capability.
type Embedder interface {
	GetEmbedding(ctx context.Context, model string, text string) ([]float32, error)
}

// ChunkResolver loads chunk text and source metadata for hits that only
// carry a chunk reference.
type ChunkResolver interface {
	Resolve(ctx context.Context, chunkID string) (content, source string, err error)
}

// Retriever answers queries from a pre-built Weaviate class. Hits carrying
// inline content are used directly; hits carrying only a chunkId are
// resolved through the chunk store.
type Retriever struct {
	sdk            *SDK
	embedder       Embedder
	embeddingModel string
	className      string
	resolver       ChunkResolver // optional
	hybrid         bool
}

func NewRetriever(sdk *SDK, embedder Embedder, embeddingModel, className string, resolver ChunkResolver, hybrid bool) *Retriever {
	return &Retriever{
		sdk:            sdk,
		embedder:       embedder,
		embeddingModel: embeddingModel,
		className:      className,
		resolver:       resolver,
		hybrid:         hybrid,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]retrieval.Fragment, error) {
	vector, err := r.embedder.GetEmbedding(ctx, r.embeddingModel, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding failed: %v", retrieval.ErrUnavailable, err)
	}

	var results []QueryResult
	if r.hybrid {
		config := DefaultHybridConfig(query)
		config.Fields = []string{"content", "source", "chunkId"}
		config.Limit = k
		results, err = r.sdk.QueryHybrid(ctx, r.className, vector, config)
	} else {
		results, err = r.sdk.QueryVectors(ctx, r.className, vector, QueryConfig{
			Fields: []string{"content", "source", "chunkId"},
			Limit:  k,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", retrieval.ErrUnavailable, err)
	}

	fragments := make([]retrieval.Fragment, 0, len(results))
	for _, result := range results {
		fragment := retrieval.Fragment{
			Score: relevance(result.Score, r.hybrid),
		}
		fragment.Content, _ = result.Properties["content"].(string)
		fragment.Source, _ = result.Properties["source"].(string)

		if fragment.Content == "" && r.resolver != nil {
			chunkID, _ := result.Properties["chunkId"].(string)
			if chunkID == "" {
				continue
			}
			content, source, err := r.resolver.Resolve(ctx, chunkID)
			if err != nil {
				log.Error(err, "failed to resolve chunk", "chunkId", chunkID)
				continue
			}
			fragment.Content = content
			if fragment.Source == "" {
				fragment.Source = source
			}
		}

		if fragment.Content == "" {
			continue
		}
		fragments = append(fragments, fragment)
	}

	return retrieval.TopK(fragments, k), nil
}

// relevance normalizes weaviate scores so that higher always means more
// relevant: vector search reports a distance, hybrid search a fused score.
func relevance(score float64, hybrid bool) float64 {
	if hybrid {
		return score
	}
	return 1 - score
}
