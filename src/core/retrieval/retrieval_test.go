package retrieval_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ragchat/src/core/retrieval"
)

func TestFallback(t *testing.T) {
	fragments := []retrieval.Fragment{{Content: "hit", Score: 1}}
	backup := []retrieval.Fragment{{Content: "keyword hit", Score: 0.5}}
	otherErr := errors.New("malformed query")

	tests := []struct {
		name        string
		primaryErr  error
		wantContent string
		wantErr     error
	}{
		{
			name:        "primary healthy",
			wantContent: "hit",
		},
		{
			name:        "primary unavailable falls back",
			primaryErr:  fmt.Errorf("%w: connection refused", retrieval.ErrUnavailable),
			wantContent: "keyword hit",
		},
		{
			name:       "other errors do not fall back",
			primaryErr: otherErr,
			wantErr:    otherErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := retrieval.Func(func(ctx context.Context, query string, k int) ([]retrieval.Fragment, error) {
				if tt.primaryErr != nil {
					return nil, tt.primaryErr
				}
				return fragments, nil
			})
			secondary := retrieval.Func(func(ctx context.Context, query string, k int) ([]retrieval.Fragment, error) {
				return backup, nil
			})

			combined := &retrieval.Fallback{Primary: primary, Secondary: secondary}
			got, err := combined.Retrieve(context.Background(), "q", 3)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Retrieve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Retrieve() error = %v", err)
			}
			if len(got) != 1 || got[0].Content != tt.wantContent {
				t.Errorf("Retrieve() = %v, want single fragment %q", got, tt.wantContent)
			}
		})
	}
}

func TestFallbackWithoutSecondary(t *testing.T) {
	primary := retrieval.Func(func(ctx context.Context, query string, k int) ([]retrieval.Fragment, error) {
		return nil, retrieval.ErrUnavailable
	})
	combined := &retrieval.Fallback{Primary: primary}

	if _, err := combined.Retrieve(context.Background(), "q", 3); !errors.Is(err, retrieval.ErrUnavailable) {
		t.Errorf("Retrieve() error = %v, want ErrUnavailable", err)
	}
}

func TestTopK(t *testing.T) {
	fragments := []retrieval.Fragment{
		{Content: "low", Score: 0.1},
		{Content: "high", Score: 0.9},
		{Content: "mid", Score: 0.5},
	}

	tests := []struct {
		name string
		k    int
		want []string
	}{
		{name: "rank and truncate", k: 2, want: []string{"high", "mid"}},
		{name: "k larger than input", k: 10, want: []string{"high", "mid", "low"}},
		{name: "zero keeps all ranked", k: 0, want: []string{"high", "mid", "low"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := retrieval.TopK(fragments, tt.k)
			if len(got) != len(tt.want) {
				t.Fatalf("TopK() length = %d, want %d", len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if got[i].Content != want {
					t.Errorf("TopK()[%d] = %q, want %q", i, got[i].Content, want)
				}
			}
		})
	}

	// Input order must survive ranking.
	if fragments[0].Content != "low" {
		t.Errorf("TopK mutated its input: %v", fragments)
	}
}
