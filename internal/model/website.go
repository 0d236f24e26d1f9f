package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Website is the persisted identity of an analyzed site, one row per
// canonical URL.
type Website struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	URL       string    `json:"url" gorm:"type:text;uniqueIndex;not null"`
	Insights  []byte    `json:"insights,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Website.
func (Website) TableName() string {
	return "websites"
}

// WebsiteChunk is one retrievable unit of a website's extracted text, paired
// 1:1 with its embedding. Chunks are replaced wholesale on re-analysis.
type WebsiteChunk struct {
	ID        int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	WebsiteID int64           `json:"website_id" gorm:"index;not null"`
	ChunkText string          `json:"chunk_text" gorm:"type:text"`
	Embedding pgvector.Vector `json:"-"`
}

// TableName specifies the table name for WebsiteChunk.
func (WebsiteChunk) TableName() string {
	return "website_chunks"
}
