// Package insight provides analysis pipeline configuration options.
package insight

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/webinsight/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options controls chunking, embedding and retrieval for the analysis
// pipeline.
type Options struct {
	// ChunkSize is the maximum characters per chunk.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the characters shared between consecutive chunks.
	// Must be smaller than ChunkSize.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of chunks retrieved per query.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// EmbeddingDim is the dimensionality of the embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// EmbedConcurrency bounds concurrent embedding requests during analysis.
	EmbedConcurrency int `json:"embed-concurrency" mapstructure:"embed-concurrency"`

	// QueryTimeout bounds a single question answering request.
	QueryTimeout time.Duration `json:"query-timeout" mapstructure:"query-timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:        1000,
		ChunkOverlap:     200,
		TopK:             5,
		EmbeddingDim:     3072,
		EmbedConcurrency: 4,
		QueryTimeout:     60 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"insight.chunk-size", o.ChunkSize, "Maximum characters per text chunk.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"insight.chunk-overlap", o.ChunkOverlap, "Characters shared between consecutive chunks.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"insight.top-k", o.TopK, "Number of chunks retrieved per query.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"insight.embedding-dim", o.EmbeddingDim, "Embedding vector dimensionality.")
	fs.IntVar(&o.EmbedConcurrency, options.Join(prefixes...)+"insight.embed-concurrency", o.EmbedConcurrency, "Concurrent embedding requests during analysis.")
	fs.DurationVar(&o.QueryTimeout, options.Join(prefixes...)+"insight.query-timeout", o.QueryTimeout, "Timeout for a question answering request.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("insight chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("insight chunk-overlap cannot be negative"))
	}
	if o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("insight chunk-overlap must be smaller than chunk-size"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("insight top-k must be positive"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("insight embedding-dim must be positive"))
	}
	if o.EmbedConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("insight embed-concurrency must be positive"))
	}
	return errs
}
