package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"ragchat/src/core/retrieval"
)

const DefaultIndex = "corpus-chunks"

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				Content string `json:"content"`
				Source  string `json:"source"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Retriever answers queries with a BM25 match over a pre-built chunk index.
// It serves as the keyword fallback next to the vector retriever.
type Retriever struct {
	client *elasticsearch.Client
	index  string
}

func NewRetriever(client *elasticsearch.Client, index string) *Retriever {
	if index == "" {
		index = DefaultIndex
	}
	return &Retriever{
		client: client,
		index:  index,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]retrieval.Fragment, error) {
	body := map[string]interface{}{
		"size": k,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"content": query,
			},
		},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search body: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(strings.NewReader(string(encoded))),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", retrieval.ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search returned %s", retrieval.ErrUnavailable, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	fragments := make([]retrieval.Fragment, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if hit.Source.Content == "" {
			continue
		}
		fragments = append(fragments, retrieval.Fragment{
			Content: hit.Source.Content,
			Source:  hit.Source.Source,
			Score:   hit.Score,
		})
	}

	return fragments, nil
}

// Ping reports whether the cluster is reachable.
func (r *Retriever) Ping(ctx context.Context) error {
	res, err := r.client.Ping(r.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping returned %s", res.Status())
	}
	return nil
}
