package chunkctrl

import (
	"context"
	"fmt"
	"strings"
)

// ObjectStore reads chunk text objects; minioctrl implements it.
type ObjectStore interface {
	GetObject(ctx context.Context, bucketName, objectName string) ([]byte, error)
}

// ChunkLookup finds a chunk's metadata row; ChunkService implements it.
type ChunkLookup interface {
	GetByChunkID(ctx context.Context, chunkID string) (*Chunk, error)
}

// Resolver looks up a chunk's metadata row and loads its text from object
// storage. The vector retriever uses it for hits without inline content.
type Resolver struct {
	chunks  ChunkLookup
	objects ObjectStore
}

func NewResolver(chunks ChunkLookup, objects ObjectStore) *Resolver {
	return &Resolver{
		chunks:  chunks,
		objects: objects,
	}
}

func (r *Resolver) Resolve(ctx context.Context, chunkID string) (string, string, error) {
	chunk, err := r.chunks.GetByChunkID(ctx, chunkID)
	if err != nil {
		return "", "", err
	}
	if chunk == nil {
		return "", "", fmt.Errorf("chunk not found: %s", chunkID)
	}

	// MinioURL format: bucket-name/object-name
	parts := strings.SplitN(chunk.MinioURL, "/", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed minio url: %s", chunk.MinioURL)
	}

	data, err := r.objects.GetObject(ctx, parts[0], parts[1])
	if err != nil {
		return "", "", fmt.Errorf("failed to load chunk object: %w", err)
	}

	return string(data), chunk.Source, nil
}
