package store

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/webinsight/internal/model"
)

func chunk(text string, embedding []float32) *model.WebsiteChunk {
	return &model.WebsiteChunk{
		ChunkText: text,
		Embedding: pgvector.NewVector(embedding),
	}
}

func TestMemoryStoreSearchOrdersByDistance(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()

	err := s.ReplaceChunks(ctx, 1, []*model.WebsiteChunk{
		chunk("orthogonal", []float32{0, 1, 0}),
		chunk("exact match", []float32{1, 0, 0}),
		chunk("close", []float32{0.9, 0.1, 0}),
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, 1, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "exact match", results[0].Text)
	assert.Equal(t, "close", results[1].Text)
	assert.Less(t, results[0].Distance, results[1].Distance)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
}

func TestMemoryStoreReplaceChunksDiscardsOldSet(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()

	require.NoError(t, s.ReplaceChunks(ctx, 7, []*model.WebsiteChunk{
		chunk("old a", []float32{1, 0}),
		chunk("old b", []float32{0, 1}),
	}))
	require.NoError(t, s.ReplaceChunks(ctx, 7, []*model.WebsiteChunk{
		chunk("new", []float32{1, 0}),
	}))

	n, err := s.Count(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	results, err := s.Search(ctx, 7, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Text)
}

func TestMemoryStoreIsolatesWebsites(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()

	require.NoError(t, s.ReplaceChunks(ctx, 1, []*model.WebsiteChunk{chunk("site one", []float32{1, 0})}))
	require.NoError(t, s.ReplaceChunks(ctx, 2, []*model.WebsiteChunk{chunk("site two", []float32{1, 0})}))

	results, err := s.Search(ctx, 1, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "site one", results[0].Text)
}

func TestMemoryStoreRejectsWrongEmbeddingWidth(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()

	err := s.ReplaceChunks(ctx, 1, []*model.WebsiteChunk{
		chunk("too narrow", []float32{1, 0}),
	})
	require.Error(t, err)
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	require.NoError(t, s.ReplaceChunks(ctx, 1, []*model.WebsiteChunk{
		chunk("right width", []float32{1, 0, 0}),
	}))

	_, err = s.Search(ctx, 1, []float32{1, 0, 0, 0}, 5)
	require.Error(t, err)
	assert.ErrorAs(t, err, &schemaErr)
}

func TestMemoryStoreSearchEmptyWebsite(t *testing.T) {
	s := NewMemoryStore(2)

	results, err := s.Search(context.Background(), 99, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	n, err := s.Count(context.Background(), 99)
	require.NoError(t, err)
	assert.Zero(t, n)
}
