package biz

import (
	"context"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/internal/webinsight/metrics"
	"github.com/kart-io/webinsight/internal/webinsight/store"
	"github.com/kart-io/webinsight/pkg/llm"
)

// Service defines the website insight operations.
type Service interface {
	// Analyze fetches, analyzes and indexes a website homepage.
	Analyze(ctx context.Context, url string, questions []string) (*AnalyzeResult, error)
	// Query answers a question about an analyzed website.
	Query(ctx context.Context, url, query string, history []model.Message) (*model.QueryResult, error)
	// Stats reports service statistics.
	Stats(ctx context.Context) (map[string]any, error)
}

// ServiceConfig bundles the pipeline configuration.
type ServiceConfig struct {
	Analyzer  *AnalyzerConfig
	Responder *ResponderConfig
	Cache     *QueryCacheConfig
}

// InsightService composes the Analyzer and Responder into the full service.
type InsightService struct {
	analyzer  *Analyzer
	responder *Responder
	cache     *QueryCache
	websites  store.WebsiteStore
	vectors   store.VectorStore
	embed     llm.EmbeddingProvider
	chat      llm.ChatProvider
	metrics   *metrics.Metrics
}

var _ Service = (*InsightService)(nil)

// NewInsightService creates the service from its dependencies.
func NewInsightService(
	fetcher Fetcher,
	embed llm.EmbeddingProvider,
	chat llm.ChatProvider,
	websites store.WebsiteStore,
	vectors store.VectorStore,
	cache *QueryCache,
	config *ServiceConfig,
) *InsightService {
	return &InsightService{
		analyzer:  NewAnalyzer(fetcher, embed, chat, websites, vectors, config.Analyzer),
		responder: NewResponder(websites, vectors, embed, chat, cache, config.Responder),
		cache:     cache,
		websites:  websites,
		vectors:   vectors,
		embed:     embed,
		chat:      chat,
		metrics:   metrics.Get(),
	}
}

// Analyze runs the full analysis pipeline for a URL.
func (s *InsightService) Analyze(ctx context.Context, url string, questions []string) (*AnalyzeResult, error) {
	return s.analyzer.Analyze(ctx, url, questions)
}

// Query answers a question about an analyzed website.
func (s *InsightService) Query(ctx context.Context, url, query string, history []model.Message) (*model.QueryResult, error) {
	return s.responder.Query(ctx, url, query, history)
}

// Stats reports provider names, cache state and business counters.
func (s *InsightService) Stats(ctx context.Context) (map[string]any, error) {
	stats := map[string]any{
		"embed_provider": s.embed.Name(),
		"chat_provider":  s.chat.Name(),
		"metrics":        s.metrics.Stats(),
	}

	if s.cache != nil {
		if cacheStats, err := s.cache.GetStats(ctx); err == nil {
			stats["cache"] = cacheStats
		}
	}
	return stats, nil
}
