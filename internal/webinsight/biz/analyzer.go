package biz

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/logger"
	"github.com/pgvector/pgvector-go"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/internal/pkg/scrape"
	"github.com/kart-io/webinsight/internal/pkg/textutil"
	"github.com/kart-io/webinsight/internal/webinsight/metrics"
	"github.com/kart-io/webinsight/internal/webinsight/store"
	"github.com/kart-io/webinsight/pkg/llm"
	jsonutil "github.com/kart-io/webinsight/pkg/utils/json"
)

// Fetcher retrieves the homepage HTML for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// AnalyzerConfig controls chunking and embedding during analysis.
type AnalyzerConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	EmbedConcurrency int
}

// AnalyzeResult is the outcome of a full website analysis.
type AnalyzeResult struct {
	URL            string                 `json:"url"`
	WebsiteID      int64                  `json:"website_id"`
	Insights       *model.BusinessInsight `json:"insights"`
	Degraded       bool                   `json:"degraded,omitempty"`
	DegradedReason string                 `json:"degraded_reason,omitempty"`
	ChunksStored   int                    `json:"chunks_stored"`
}

// Analyzer runs the fetch, extract, synthesize, chunk and embed pipeline
// for a single website.
type Analyzer struct {
	fetcher     Fetcher
	extractor   *scrape.Extractor
	synthesizer *Synthesizer
	embed       llm.EmbeddingProvider
	websites    store.WebsiteStore
	vectors     store.VectorStore
	config      *AnalyzerConfig
	metrics     *metrics.Metrics
}

// NewAnalyzer wires the analysis pipeline.
func NewAnalyzer(
	fetcher Fetcher,
	embed llm.EmbeddingProvider,
	chat llm.ChatProvider,
	websites store.WebsiteStore,
	vectors store.VectorStore,
	config *AnalyzerConfig,
) *Analyzer {
	return &Analyzer{
		fetcher:     fetcher,
		extractor:   scrape.NewExtractor(),
		synthesizer: NewSynthesizer(chat),
		embed:       embed,
		websites:    websites,
		vectors:     vectors,
		config:      config,
		metrics:     metrics.Get(),
	}
}

// Analyze runs the full pipeline for a URL. Fetch and synthesis failures
// degrade the result instead of failing the request; only invalid input and
// store errors propagate.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string, questions []string) (*AnalyzeResult, error) {
	canonical, err := scrape.CanonicalURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	logger.Infow("analyzing website", "url", canonical, "questions", len(questions))

	var syn *Synthesis
	content := &model.ScrapedContent{}

	html, fetchErr := a.fetcher.Fetch(ctx, canonical)
	if fetchErr != nil {
		// Fetch failures never abort the analysis; the site still gets a
		// fallback insight document.
		logger.Warnw("fetch failed, producing degraded analysis", "url", canonical, "error", fetchErr.Error())
		syn = &Synthesis{
			Insight:  model.FallbackInsight(),
			Degraded: true,
			Reason:   fmt.Sprintf("fetch failed: %v", fetchErr),
		}
	} else {
		content = a.extractor.Extract(html, canonical)
		syn = a.synthesizer.Synthesize(ctx, content, questions)
	}

	site, err := a.websites.GetOrCreate(ctx, canonical)
	if err != nil {
		return nil, err
	}

	insightsJSON, err := jsonutil.Marshal(syn.Insight)
	if err != nil {
		return nil, fmt.Errorf("marshal insights: %w", err)
	}
	if err := a.websites.SaveInsights(ctx, site.ID, insightsJSON); err != nil {
		return nil, err
	}

	stored, err := a.indexContent(ctx, site.ID, content.RawText)
	if err != nil {
		return nil, err
	}

	result := &AnalyzeResult{
		URL:            canonical,
		WebsiteID:      site.ID,
		Insights:       syn.Insight,
		Degraded:       syn.Degraded,
		DegradedReason: syn.Reason,
		ChunksStored:   stored,
	}

	a.metrics.RecordAnalysis(syn.Degraded)
	logger.Infow("analysis complete",
		"url", canonical,
		"website_id", site.ID,
		"chunks_stored", stored,
		"degraded", syn.Degraded,
	)
	return result, nil
}

// indexContent chunks the raw text, embeds the chunks and replaces the
// stored set. When every embedding fails the store write is skipped so the
// previous chunk set stays intact.
func (a *Analyzer) indexContent(ctx context.Context, websiteID int64, rawText string) (int, error) {
	if rawText == "" {
		if err := a.vectors.ReplaceChunks(ctx, websiteID, nil); err != nil {
			return 0, err
		}
		return 0, nil
	}

	texts, err := textutil.SplitIntoChunks(rawText, a.config.ChunkSize, a.config.ChunkOverlap)
	if err != nil {
		return 0, err
	}

	embeddings, firstErr := a.embedAll(ctx, texts)

	chunks := make([]*model.WebsiteChunk, 0, len(texts))
	for i, emb := range embeddings {
		if emb == nil {
			continue
		}
		chunks = append(chunks, &model.WebsiteChunk{
			WebsiteID: websiteID,
			ChunkText: texts[i],
			Embedding: pgvector.NewVector(emb),
		})
	}

	if len(chunks) == 0 {
		embErr := &EmbeddingError{Total: len(texts), Err: firstErr}
		logger.Errorw("skipping chunk storage", "website_id", websiteID, "error", embErr.Error())
		return 0, nil
	}
	if dropped := len(texts) - len(chunks); dropped > 0 {
		logger.Warnw("dropped chunks with failed embeddings", "website_id", websiteID, "dropped", dropped, "total", len(texts))
	}

	if err := a.vectors.ReplaceChunks(ctx, websiteID, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// embedAll embeds chunk texts with bounded concurrency. Failed positions
// are left nil; the first error is returned for diagnostics.
func (a *Analyzer) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	concurrency := a.config.EmbedConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	embeddings := make([][]float32, len(texts))
	sem := make(chan struct{}, concurrency)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, text := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()

			emb, err := a.embed.EmbedSingle(ctx, text)
			if err != nil {
				logger.Warnw("chunk embedding failed", "chunk", i, "error", err.Error())
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			embeddings[i] = emb
		}(i, text)
	}
	wg.Wait()

	return embeddings, firstErr
}
