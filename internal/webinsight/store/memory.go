package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/internal/pkg/textutil"
)

// MemoryStore keeps chunk embeddings in process memory. It backs tests and
// local development where neither PostgreSQL nor Milvus is available.
type MemoryStore struct {
	embeddingDim int

	mu     sync.RWMutex
	chunks map[int64][]memChunk
}

type memChunk struct {
	text      string
	embedding []float32
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory vector store. Vectors written or
// searched must have width embeddingDim; zero disables the check.
func NewMemoryStore(embeddingDim int) *MemoryStore {
	return &MemoryStore{
		embeddingDim: embeddingDim,
		chunks:       make(map[int64][]memChunk),
	}
}

// ReplaceChunks swaps the stored chunk set for a website.
func (s *MemoryStore) ReplaceChunks(ctx context.Context, websiteID int64, chunks []*model.WebsiteChunk) error {
	fresh := make([]memChunk, 0, len(chunks))
	for _, c := range chunks {
		emb := c.Embedding.Slice()
		if err := checkEmbeddingDim(s.embeddingDim, len(emb), "chunk embedding"); err != nil {
			return err
		}
		cp := make([]float32, len(emb))
		copy(cp, emb)
		fresh = append(fresh, memChunk{text: c.ChunkText, embedding: cp})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[websiteID] = fresh
	return nil
}

// Search scans the website's chunks and returns the topK by cosine distance.
func (s *MemoryStore) Search(ctx context.Context, websiteID int64, embedding []float32, topK int) ([]*ChunkResult, error) {
	if err := checkEmbeddingDim(s.embeddingDim, len(embedding), "query embedding"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.chunks[websiteID]
	results := make([]*ChunkResult, 0, len(stored))
	for _, c := range stored {
		sim := textutil.CosineSimilarity(embedding, c.embedding)
		results = append(results, &ChunkResult{
			Text:     c.text,
			Distance: 1 - sim,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of chunks stored for a website.
func (s *MemoryStore) Count(ctx context.Context, websiteID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chunks[websiteID])), nil
}

// Close is a no-op.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
