package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/kart-io/webinsight/internal/model"
)

// PostgresStore persists websites and chunk embeddings in PostgreSQL with
// the pgvector extension.
type PostgresStore struct {
	db           *gorm.DB
	embeddingDim int
}

var (
	_ WebsiteStore = (*PostgresStore)(nil)
	_ VectorStore  = (*PostgresStore)(nil)
)

// NewPostgresStore creates the store and prepares the schema.
func NewPostgresStore(ctx context.Context, db *gorm.DB, embeddingDim int) (*PostgresStore, error) {
	s := &PostgresStore{db: db, embeddingDim: embeddingDim}
	if err := s.setupSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// setupSchema creates the extension and tables if they do not exist.
// The vector column width is configuration driven, so the tables are
// created with raw SQL instead of AutoMigrate.
func (s *PostgresStore) setupSchema(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return &SchemaError{Object: "extension vector", Err: err}
	}

	if err := db.Exec(`CREATE TABLE IF NOT EXISTS websites (
		id BIGSERIAL PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		insights JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`).Error; err != nil {
		return &SchemaError{Object: "table websites", Err: err}
	}

	if err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS website_chunks (
		id BIGSERIAL PRIMARY KEY,
		website_id BIGINT NOT NULL REFERENCES websites(id) ON DELETE CASCADE,
		chunk_text TEXT NOT NULL,
		embedding VECTOR(%d)
	)`, s.embeddingDim)).Error; err != nil {
		return &SchemaError{Object: "table website_chunks", Err: err}
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_website_chunks_website_id ON website_chunks(website_id)").Error; err != nil {
		return &SchemaError{Object: "index idx_website_chunks_website_id", Err: err}
	}

	return nil
}

// GetOrCreate returns the website row for the URL, creating it when absent.
func (s *PostgresStore) GetOrCreate(ctx context.Context, url string) (*model.Website, error) {
	var site model.Website
	err := s.db.WithContext(ctx).
		Where(&model.Website{URL: url}).
		FirstOrCreate(&site).Error
	if err != nil {
		return nil, fmt.Errorf("get or create website: %w", err)
	}
	return &site, nil
}

// GetByURL returns the website row, or nil when it does not exist.
func (s *PostgresStore) GetByURL(ctx context.Context, url string) (*model.Website, error) {
	var site model.Website
	err := s.db.WithContext(ctx).Where("url = ?", url).First(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get website by url: %w", err)
	}
	return &site, nil
}

// SaveInsights stores the serialized insight document for a website.
func (s *PostgresStore) SaveInsights(ctx context.Context, websiteID int64, insights []byte) error {
	err := s.db.WithContext(ctx).
		Model(&model.Website{}).
		Where("id = ?", websiteID).
		Update("insights", insights).Error
	if err != nil {
		return fmt.Errorf("save insights: %w", err)
	}
	return nil
}

// ReplaceChunks replaces all chunks of a website in a single transaction.
// An advisory lock on the website ID serializes concurrent re-analysis of
// the same site.
func (s *PostgresStore) ReplaceChunks(ctx context.Context, websiteID int64, chunks []*model.WebsiteChunk) error {
	for _, c := range chunks {
		if err := checkEmbeddingDim(s.embeddingDim, len(c.Embedding.Slice()), "chunk embedding"); err != nil {
			return err
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", websiteID).Error; err != nil {
			return fmt.Errorf("acquire advisory lock: %w", err)
		}
		if err := tx.Where("website_id = ?", websiteID).Delete(&model.WebsiteChunk{}).Error; err != nil {
			return fmt.Errorf("delete old chunks: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		for _, c := range chunks {
			c.WebsiteID = websiteID
		}
		if err := tx.CreateInBatches(chunks, 100).Error; err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	})
}

// Search returns the topK nearest chunks by cosine distance.
func (s *PostgresStore) Search(ctx context.Context, websiteID int64, embedding []float32, topK int) ([]*ChunkResult, error) {
	if err := checkEmbeddingDim(s.embeddingDim, len(embedding), "query embedding"); err != nil {
		return nil, err
	}

	vec := pgvector.NewVector(embedding)

	var rows []struct {
		ChunkText string
		Distance  float64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT chunk_text, embedding <=> ? AS distance
		 FROM website_chunks
		 WHERE website_id = ?
		 ORDER BY embedding <=> ?
		 LIMIT ?`,
		vec, websiteID, vec, topK,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	results := make([]*ChunkResult, len(rows))
	for i, r := range rows {
		results[i] = &ChunkResult{Text: r.ChunkText, Distance: r.Distance}
	}
	return results, nil
}

// Count returns the number of chunks stored for a website.
func (s *PostgresStore) Count(ctx context.Context, websiteID int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.WebsiteChunk{}).
		Where("website_id = ?", websiteID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Close is a no-op; the database connection is owned by the caller.
func (s *PostgresStore) Close(ctx context.Context) error {
	return nil
}
