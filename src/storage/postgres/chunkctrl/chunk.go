package chunkctrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Chunk maps an index hit to where its text lives: a minio object plus the
// document it was cut from.
type Chunk struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ChunkID   string    `gorm:"not null;uniqueIndex" json:"chunk_id"`
	Source    string    `gorm:"not null" json:"source"`
	MinioURL  string    `gorm:"not null;column:minio_url" json:"minio_url"` // bucket name + object name
	Order     int       `gorm:"not null;column:chunk_order" json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChunkService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewChunkService(db *gorm.DB) (*ChunkService, error) {
	// Initialize snowflake node
	node, err := snowflake.NewNode(2) // Node number 2 for chunks
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %v", err)
	}

	return &ChunkService{
		db:        db,
		snowflake: node,
	}, nil
}

func (s *ChunkService) Create(ctx context.Context, chunkID, source, minioURL string, order int) (*Chunk, error) {
	chunk := &Chunk{
		ID:       s.snowflake.Generate().Int64(),
		ChunkID:  chunkID,
		Source:   source,
		MinioURL: minioURL,
		Order:    order,
	}

	result := s.db.WithContext(ctx).Create(chunk)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create chunk: %v", result.Error)
	}

	return chunk, nil
}

func (s *ChunkService) GetByChunkID(ctx context.Context, chunkID string) (*Chunk, error) {
	var chunk Chunk
	result := s.db.WithContext(ctx).Where("chunk_id = ?", chunkID).First(&chunk)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chunk: %v", result.Error)
	}
	return &chunk, nil
}
