// Package webinsight provides the website insight service application.
package webinsight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/webinsight/internal/pkg/scrape"
	"github.com/kart-io/webinsight/internal/webinsight/biz"
	"github.com/kart-io/webinsight/internal/webinsight/handler"
	"github.com/kart-io/webinsight/internal/webinsight/router"
	"github.com/kart-io/webinsight/internal/webinsight/store"
	"github.com/kart-io/webinsight/pkg/app"
	milvuscomp "github.com/kart-io/webinsight/pkg/component/milvus"
	pgcomp "github.com/kart-io/webinsight/pkg/component/postgres"
	rediscomp "github.com/kart-io/webinsight/pkg/component/redis"
	infraapp "github.com/kart-io/webinsight/pkg/infra/app"
	"github.com/kart-io/webinsight/pkg/llm"

	// Register LLM providers.
	_ "github.com/kart-io/webinsight/pkg/llm/ollama"
	_ "github.com/kart-io/webinsight/pkg/llm/openai"
	vsopts "github.com/kart-io/webinsight/pkg/options/vectorstore"
)

const (
	// Name is the name of the application.
	Name = "webinsight"

	appDescription = `WebInsight Service

AI-powered website analysis backend.

This server provides:
  - Homepage fetching and structured content extraction
  - LLM-based business insight synthesis
  - Content chunking with vector embeddings
  - RAG-based question answering about analyzed websites`
)

// NewApp creates a new application instance.
func NewApp() *infraapp.App {
	opts := NewOptions()

	return infraapp.NewApp(
		infraapp.WithName(Name),
		infraapp.WithDescription(appDescription),
		infraapp.WithOptions(opts),
		infraapp.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

var _ app.CliOptions = (*Options)(nil)

// Run runs the webinsight service with the given options.
func Run(opts *Options) error {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Embedding: %s (%s)\n", opts.Embedding.Provider, opts.Embedding.Model)
	fmt.Printf("  Chat: %s (%s)\n", opts.Chat.Provider, opts.Chat.Model)

	opts.Log.AddInitialField("service.name", Name)
	opts.Log.AddInitialField("service.version", infraapp.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting webinsight service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgClient, err := pgcomp.NewWithContext(ctx, opts.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize postgres: %w", err)
	}
	defer func() { _ = pgClient.Close() }()
	logger.Info("Postgres client initialized")

	websiteStore, err := store.NewPostgresStore(ctx, pgClient.DB(), opts.Insight.EmbeddingDim)
	if err != nil {
		return fmt.Errorf("failed to initialize website store: %w", err)
	}

	vectorStore, closeVectors, err := newVectorStore(ctx, opts, websiteStore)
	if err != nil {
		return err
	}
	defer closeVectors()
	logger.Infow("Vector store initialized", "driver", opts.VectorStore.Driver)

	redisClient, closeRedis := newRedisClient(ctx, opts)
	defer closeRedis()

	var queryCache *biz.QueryCache
	if redisClient != nil {
		queryCache = biz.NewQueryCache(redisClient.Client(), &biz.QueryCacheConfig{
			Enabled:   true,
			TTL:       opts.Cache.TTL,
			KeyPrefix: opts.Cache.KeyPrefix,
		})
	}

	var embedProvider llm.EmbeddingProvider
	embedProvider, err = llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	if redisClient != nil {
		embedProvider = llm.NewCachedEmbeddingProvider(embedProvider, redisClient.Client(), nil)
	}
	logger.Infow("Embedding provider initialized",
		"provider", opts.Embedding.Provider,
		"model", opts.Embedding.Model,
		"cached", redisClient != nil,
	)

	chatProvider, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		return fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", opts.Chat.Provider,
		"model", opts.Chat.Model,
	)

	fetcher := scrape.NewFetcher(opts.Scrape.Timeout,
		scrape.WithMaxAttempts(opts.Scrape.MaxAttempts),
		scrape.WithBackoff(opts.Scrape.Backoff),
		scrape.WithUserAgent(opts.Scrape.UserAgent),
	)

	serviceConfig := &biz.ServiceConfig{
		Analyzer: &biz.AnalyzerConfig{
			ChunkSize:        opts.Insight.ChunkSize,
			ChunkOverlap:     opts.Insight.ChunkOverlap,
			EmbedConcurrency: opts.Insight.EmbedConcurrency,
		},
		Responder: &biz.ResponderConfig{
			TopK: opts.Insight.TopK,
		},
		Cache: &biz.QueryCacheConfig{
			Enabled:   opts.Cache.Enabled,
			TTL:       opts.Cache.TTL,
			KeyPrefix: opts.Cache.KeyPrefix,
		},
	}
	service := biz.NewInsightService(fetcher, embedProvider, chatProvider, websiteStore, vectorStore, queryCache, serviceConfig)
	logger.Infow("Insight service initialized",
		"cache.enabled", opts.Cache.Enabled,
		"chunk_size", opts.Insight.ChunkSize,
		"top_k", opts.Insight.TopK,
	)

	insightHandler := handler.NewInsightHandler(service, opts.Insight.QueryTimeout)

	gin.SetMode(opts.HTTP.Mode)
	engine := gin.New()
	router.Register(engine, insightHandler, router.Config{APISecret: opts.APISecret})

	srv := &http.Server{
		Addr:         opts.HTTP.Addr,
		Handler:      engine,
		ReadTimeout:  opts.HTTP.ReadTimeout,
		WriteTimeout: opts.HTTP.WriteTimeout,
		IdleTimeout:  opts.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", opts.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logger.Info("webinsight service is ready")

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("Shutdown complete")
	return nil
}

// newVectorStore builds the chunk vector store for the configured driver.
// The postgres driver reuses the website store so chunks live next to the
// website rows.
func newVectorStore(ctx context.Context, opts *Options, pg *store.PostgresStore) (store.VectorStore, func(), error) {
	switch opts.VectorStore.Driver {
	case vsopts.DriverPostgres:
		return pg, func() {}, nil

	case vsopts.DriverMilvus:
		client, err := milvuscomp.New(opts.Milvus)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize milvus: %w", err)
		}
		ms, err := store.NewMilvusStore(ctx, client, opts.VectorStore.Collection, opts.Insight.EmbeddingDim)
		if err != nil {
			_ = client.Close(context.Background())
			return nil, nil, fmt.Errorf("failed to initialize milvus store: %w", err)
		}
		return ms, func() { _ = client.Close(context.Background()) }, nil

	case vsopts.DriverMemory:
		return store.NewMemoryStore(opts.Insight.EmbeddingDim), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown vector store driver %q", opts.VectorStore.Driver)
	}
}

// newRedisClient connects to Redis when caching is enabled. A connection
// failure disables caching instead of failing startup.
func newRedisClient(ctx context.Context, opts *Options) (*rediscomp.Client, func()) {
	if !opts.Cache.Enabled {
		logger.Info("Cache is disabled")
		return nil, func() {}
	}

	redisClient, err := rediscomp.NewWithContext(ctx, opts.Cache.Redis)
	if err != nil {
		logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
		return nil, func() {}
	}

	logger.Infow("Redis cache initialized",
		"addr", opts.Cache.Redis.Addr(),
		"ttl", opts.Cache.TTL,
	)
	return redisClient, func() { _ = redisClient.Close() }
}
