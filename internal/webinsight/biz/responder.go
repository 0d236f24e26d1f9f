package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/internal/pkg/scrape"
	"github.com/kart-io/webinsight/internal/webinsight/metrics"
	"github.com/kart-io/webinsight/internal/webinsight/store"
	"github.com/kart-io/webinsight/pkg/llm"
)

// Terminal answers for the two non-retrieval query states.
const (
	NotAnalyzedMessage = "This website hasn't been analyzed yet. Please run the insights endpoint first to analyze the website content."
	NoContentMessage   = "I couldn't find relevant content to answer your question about this website."
)

const querySystemPrompt = "You are a helpful assistant that answers questions based on website content. Be conversational and accurate."

// ResponderConfig controls retrieval during question answering.
type ResponderConfig struct {
	TopK int
}

// Responder answers questions about analyzed websites by retrieving stored
// chunks and generating a grounded answer.
type Responder struct {
	websites store.WebsiteStore
	vectors  store.VectorStore
	embed    llm.EmbeddingProvider
	chat     llm.ChatProvider
	cache    *QueryCache
	config   *ResponderConfig
	metrics  *metrics.Metrics
}

// NewResponder wires the question answering pipeline.
func NewResponder(
	websites store.WebsiteStore,
	vectors store.VectorStore,
	embed llm.EmbeddingProvider,
	chat llm.ChatProvider,
	cache *QueryCache,
	config *ResponderConfig,
) *Responder {
	return &Responder{
		websites: websites,
		vectors:  vectors,
		embed:    embed,
		chat:     chat,
		cache:    cache,
		config:   config,
		metrics:  metrics.Get(),
	}
}

// Query answers a question about a website. The two terminal states (site
// never analyzed, no relevant chunks) return fixed answers with the input
// history unchanged, not errors. A successful turn appends the user question
// and the answer to the returned conversation history.
func (r *Responder) Query(ctx context.Context, rawURL, query string, history []model.Message) (*model.QueryResult, error) {
	canonical, err := scrape.CanonicalURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	site, err := r.websites.GetByURL(ctx, canonical)
	if err != nil {
		r.metrics.RecordQuery(false, err)
		return nil, err
	}
	if site == nil || len(site.Insights) == 0 {
		logger.Infow("query against unanalyzed website", "url", canonical)
		r.metrics.RecordQuery(false, nil)
		return terminalResult(NotAnalyzedMessage, history), nil
	}

	// Cached answers are only valid for history-free turns; follow-ups
	// depend on the conversation so far.
	if len(history) == 0 && r.cache != nil {
		if cached, err := r.cache.Get(ctx, canonical, query); err == nil && cached != nil {
			r.metrics.RecordQuery(true, nil)
			return cached, nil
		}
	}

	queryEmbedding, err := r.embed.EmbedSingle(ctx, query)
	if err != nil {
		r.metrics.RecordQuery(false, err)
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.vectors.Search(ctx, site.ID, queryEmbedding, r.config.TopK)
	if err != nil {
		r.metrics.RecordQuery(false, err)
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if len(results) == 0 {
		r.metrics.RecordQuery(false, nil)
		return terminalResult(NoContentMessage, history), nil
	}

	chunks := make([]string, len(results))
	for i, res := range results {
		chunks[i] = res.Text
	}

	prompt := buildRAGPrompt(query, chunks, history)

	start := time.Now()
	resp, err := r.chat.Generate(ctx, prompt, querySystemPrompt)
	if err != nil {
		r.metrics.RecordLLMCall(time.Since(start), 0, 0, err)
		r.metrics.RecordQuery(false, err)
		logger.Errorw("answer generation failed", "url", canonical, "error", err.Error())
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	promptTokens, completionTokens := 0, 0
	if resp.TokenUsage != nil {
		promptTokens = resp.TokenUsage.PromptTokens
		completionTokens = resp.TokenUsage.CompletionTokens
	}
	r.metrics.RecordLLMCall(time.Since(start), promptTokens, completionTokens, nil)

	result := &model.QueryResult{
		Answer:              strings.TrimSpace(resp.Content),
		SourceChunks:        chunks,
		ConversationHistory: appendTurn(history, query, strings.TrimSpace(resp.Content)),
	}

	if len(history) == 0 && r.cache != nil {
		_ = r.cache.Set(ctx, canonical, query, result)
	}

	r.metrics.RecordQuery(false, nil)
	return result, nil
}

// terminalResult builds a QueryResult carrying a fixed answer. The input
// history is returned untouched; terminal states are not conversation turns.
func terminalResult(answer string, history []model.Message) *model.QueryResult {
	return &model.QueryResult{
		Answer:              answer,
		SourceChunks:        []string{},
		ConversationHistory: history,
	}
}

// appendTurn returns history plus the user/assistant pair for this turn.
func appendTurn(history []model.Message, query, answer string) []model.Message {
	out := make([]model.Message, 0, len(history)+2)
	out = append(out, history...)
	out = append(out,
		model.Message{Role: string(llm.RoleUser), Content: query},
		model.Message{Role: string(llm.RoleAssistant), Content: answer},
	)
	return out
}

// buildRAGPrompt assembles the grounded answering prompt from the retrieved
// chunks and the conversation so far.
func buildRAGPrompt(query string, chunks []string, history []model.Message) string {
	var historyText string
	if len(history) > 0 {
		lines := make([]string, len(history))
		for i, msg := range history {
			lines[i] = fmt.Sprintf("%s: %s", msg.Role, msg.Content)
		}
		historyText = strings.Join(lines, "\n")
	}

	chunksText := strings.Join(chunks, "\n\n")

	return fmt.Sprintf(`You are an AI assistant answering questions based on retrieved website chunks.

Context Chunks:
%s

Conversation History:
%s

User Query: %s

Provide a clear, grounded answer using only the information from the chunks.
If information is not available, respond with "Not available on the website."
Be conversational and helpful.`, chunksText, historyText, query)
}
