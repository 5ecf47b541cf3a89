package chunkctrl_test

import (
	"context"
	"fmt"
	"testing"

	"ragchat/src/storage/postgres/chunkctrl"
)

type fakeLookup struct {
	rows map[string]*chunkctrl.Chunk
}

func (f *fakeLookup) GetByChunkID(ctx context.Context, chunkID string) (*chunkctrl.Chunk, error) {
	return f.rows[chunkID], nil
}

type fakeStore struct {
	objects map[string][]byte
}

func (f *fakeStore) GetObject(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	data, ok := f.objects[bucketName+"/"+objectName]
	if !ok {
		return nil, fmt.Errorf("no such object: %s/%s", bucketName, objectName)
	}
	return data, nil
}

func TestResolve(t *testing.T) {
	lookup := &fakeLookup{rows: map[string]*chunkctrl.Chunk{
		"c1": {ChunkID: "c1", Source: "guide.md", MinioURL: "chunks/c1.txt"},
		"c2": {ChunkID: "c2", Source: "guide.md", MinioURL: "malformed"},
		"c3": {ChunkID: "c3", Source: "guide.md", MinioURL: "chunks/missing.txt"},
	}}
	store := &fakeStore{objects: map[string][]byte{
		"chunks/c1.txt": []byte("chunk one text"),
	}}
	resolver := chunkctrl.NewResolver(lookup, store)

	tests := []struct {
		name        string
		chunkID     string
		wantContent string
		wantSource  string
		wantErr     bool
	}{
		{name: "resolves row and object", chunkID: "c1", wantContent: "chunk one text", wantSource: "guide.md"},
		{name: "unknown chunk", chunkID: "nope", wantErr: true},
		{name: "malformed minio url", chunkID: "c2", wantErr: true},
		{name: "missing object", chunkID: "c3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, source, err := resolver.Resolve(context.Background(), tt.chunkID)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Resolve() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if content != tt.wantContent {
				t.Errorf("content = %q, want %q", content, tt.wantContent)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}
