package retrieval

import (
	"context"
	"errors"
	"sort"
)

// ErrUnavailable is returned when the underlying index cannot be reached.
// Callers must treat it as recoverable: degrade to empty-context generation
// or surface a notice, never abort the session.
var ErrUnavailable = errors.New("retrieval: index unavailable")

// Fragment is a scored snippet of source text relevant to a query. Fragments
// are produced fresh per query and never persisted.
type Fragment struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// Retriever finds the fragments most relevant to a query. Implementations
// return at most k fragments ranked by descending score.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Fragment, error)
}

// Func adapts an ordinary function to the Retriever interface.
type Func func(ctx context.Context, query string, k int) ([]Fragment, error)

func (f Func) Retrieve(ctx context.Context, query string, k int) ([]Fragment, error) {
	return f(ctx, query, k)
}

// Fallback queries Primary and, when it reports ErrUnavailable, retries the
// same query against Secondary. Any other error is returned as-is.
type Fallback struct {
	Primary   Retriever
	Secondary Retriever
}

func (f *Fallback) Retrieve(ctx context.Context, query string, k int) ([]Fragment, error) {
	fragments, err := f.Primary.Retrieve(ctx, query, k)
	if err == nil {
		return fragments, nil
	}
	if !errors.Is(err, ErrUnavailable) || f.Secondary == nil {
		return nil, err
	}
	return f.Secondary.Retrieve(ctx, query, k)
}

// TopK re-ranks fragments by descending score and truncates to k. The input
// slice is not modified.
func TopK(fragments []Fragment, k int) []Fragment {
	ranked := make([]Fragment, len(fragments))
	copy(ranked, fragments)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
