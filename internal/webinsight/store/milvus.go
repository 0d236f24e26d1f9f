package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/pkg/component/milvus"
)

// MilvusStore keeps chunk embeddings in a Milvus collection. Website rows
// stay in PostgreSQL; only the vector side is swapped.
type MilvusStore struct {
	client       *milvus.Client
	collection   string
	embeddingDim int

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore creates the store and ensures the collection exists.
func NewMilvusStore(ctx context.Context, client *milvus.Client, collection string, embeddingDim int) (*MilvusStore, error) {
	s := &MilvusStore{
		client:       client,
		collection:   collection,
		embeddingDim: embeddingDim,
		locks:        make(map[int64]*sync.Mutex),
	}

	schema := &milvus.CollectionSchema{
		Name:        collection,
		Description: "website content chunks",
		Dimension:   embeddingDim,
		MetaFields: []milvus.MetaField{
			{Name: "website_id", DataType: entity.FieldTypeInt64},
			{Name: "chunk_text", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
	if err := client.EnsureCollection(ctx, schema); err != nil {
		return nil, &SchemaError{Object: "collection " + collection, Err: err}
	}

	return s, nil
}

// websiteLock returns the mutex serializing writes for one website.
func (s *MilvusStore) websiteLock(websiteID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[websiteID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[websiteID] = lock
	}
	return lock
}

// ReplaceChunks deletes all chunks of the website and inserts the new set.
// Milvus has no transaction spanning delete and insert, so a per-website
// mutex keeps concurrent re-analyses of the same site from interleaving.
// The component's Insert flushes before returning.
func (s *MilvusStore) ReplaceChunks(ctx context.Context, websiteID int64, chunks []*model.WebsiteChunk) error {
	for _, c := range chunks {
		if err := checkEmbeddingDim(s.embeddingDim, len(c.Embedding.Slice()), "chunk embedding"); err != nil {
			return err
		}
	}

	lock := s.websiteLock(websiteID)
	lock.Lock()
	defer lock.Unlock()

	filter := fmt.Sprintf("website_id == %d", websiteID)
	if err := s.client.DeleteByFilter(ctx, s.collection, filter); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"website_id": make([]any, len(chunks)),
		"chunk_text": make([]any, len(chunks)),
	}
	for i, c := range chunks {
		embeddings[i] = c.Embedding.Slice()
		metadata["website_id"][i] = websiteID
		metadata["chunk_text"][i] = c.ChunkText
	}

	_, err := s.client.Insert(ctx, s.collection, &milvus.InsertData{
		Embeddings: embeddings,
		Metadata:   metadata,
	})
	if err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}

// Search returns the topK nearest chunks of the website. Milvus reports
// cosine similarity, so the score is converted to a distance to match the
// other backends.
func (s *MilvusStore) Search(ctx context.Context, websiteID int64, embedding []float32, topK int) ([]*ChunkResult, error) {
	if err := checkEmbeddingDim(s.embeddingDim, len(embedding), "query embedding"); err != nil {
		return nil, err
	}

	filter := fmt.Sprintf("website_id == %d", websiteID)
	results, err := s.client.Search(ctx, s.collection, embedding, topK, filter, []string{"chunk_text"})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	out := make([]*ChunkResult, 0, len(results))
	for _, r := range results {
		text, _ := r.Metadata["chunk_text"].(string)
		out = append(out, &ChunkResult{
			Text:     text,
			Distance: 1 - float64(r.Score),
		})
	}
	return out, nil
}

// Count returns the total rows in the collection. Milvus does not expose a
// cheap per-filter count, so this reports the collection size.
func (s *MilvusStore) Count(ctx context.Context, websiteID int64) (int64, error) {
	return s.client.RowCount(ctx, s.collection)
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
