package store

import (
	"context"
	"fmt"

	"github.com/kart-io/webinsight/internal/model"
)

// ChunkResult is a retrieved chunk with its distance to the query vector.
// Lower distance means higher similarity.
type ChunkResult struct {
	Text     string
	Distance float64
}

// SchemaError reports a storage shape violation: a failure preparing the
// schema, or a vector whose width does not match the configured dimension.
type SchemaError struct {
	Object string
	Err    error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error on %s: %v", e.Object, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// checkEmbeddingDim rejects vectors whose width differs from the store's
// configured dimension. Silent coercion would corrupt similarity search.
func checkEmbeddingDim(dim, got int, object string) error {
	if dim > 0 && got != dim {
		return &SchemaError{
			Object: object,
			Err:    fmt.Errorf("embedding dimension %d, store configured for %d", got, dim),
		}
	}
	return nil
}

// WebsiteStore persists website records and their synthesized insights.
type WebsiteStore interface {
	// GetOrCreate returns the website row for the canonical URL, creating
	// it when absent.
	GetOrCreate(ctx context.Context, url string) (*model.Website, error)

	// GetByURL returns the website row for the canonical URL, or nil when
	// the site has never been analyzed.
	GetByURL(ctx context.Context, url string) (*model.Website, error)

	// SaveInsights stores the serialized insight document for a website.
	SaveInsights(ctx context.Context, websiteID int64, insights []byte) error
}

// VectorStore persists and searches chunk embeddings per website.
type VectorStore interface {
	// ReplaceChunks atomically replaces all stored chunks for a website.
	// Re-analysis must never leave a mix of old and new chunks behind.
	ReplaceChunks(ctx context.Context, websiteID int64, chunks []*model.WebsiteChunk) error

	// Search returns up to topK chunks of the website ordered by ascending
	// distance to the query embedding.
	Search(ctx context.Context, websiteID int64, embedding []float32, topK int) ([]*ChunkResult, error)

	// Count returns the number of chunks stored for a website.
	Count(ctx context.Context, websiteID int64) (int64, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
