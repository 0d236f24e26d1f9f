package biz

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/internal/webinsight/store"
	"github.com/kart-io/webinsight/pkg/llm"
)

func newTestResponder(chat *fakeChat, websites *fakeWebsiteStore, vectors store.VectorStore) *Responder {
	return NewResponder(websites, vectors, &fakeEmbed{}, chat, nil, &ResponderConfig{TopK: 5})
}

func analyzedSite(t *testing.T, websites *fakeWebsiteStore, url string) *model.Website {
	t.Helper()
	site, err := websites.GetOrCreate(context.Background(), url)
	require.NoError(t, err)
	require.NoError(t, websites.SaveInsights(context.Background(), site.ID, []byte(`{"industry":"SaaS"}`)))
	return site
}

func TestResponderNotAnalyzed(t *testing.T) {
	r := newTestResponder(&fakeChat{response: "unused"}, newFakeWebsiteStore(), store.NewMemoryStore(3))

	result, err := r.Query(context.Background(), "https://unknown.example", "What do they sell?", nil)
	require.NoError(t, err)

	assert.Equal(t, NotAnalyzedMessage, result.Answer)
	assert.Empty(t, result.SourceChunks)
	// Terminal states are not conversation turns.
	assert.Empty(t, result.ConversationHistory)
}

func TestResponderNotAnalyzedKeepsHistory(t *testing.T) {
	r := newTestResponder(&fakeChat{response: "unused"}, newFakeWebsiteStore(), store.NewMemoryStore(3))

	history := []model.Message{
		{Role: string(llm.RoleUser), Content: "Hi"},
		{Role: string(llm.RoleAssistant), Content: "Hello!"},
	}
	result, err := r.Query(context.Background(), "https://unknown.example", "What do they sell?", history)
	require.NoError(t, err)

	assert.Equal(t, NotAnalyzedMessage, result.Answer)
	assert.Equal(t, history, result.ConversationHistory)
}

func TestResponderNoRelevantChunks(t *testing.T) {
	websites := newFakeWebsiteStore()
	analyzedSite(t, websites, "https://acme.example")

	r := newTestResponder(&fakeChat{response: "unused"}, websites, store.NewMemoryStore(3))

	result, err := r.Query(context.Background(), "https://acme.example", "What do they sell?", nil)
	require.NoError(t, err)
	assert.Equal(t, NoContentMessage, result.Answer)
	assert.Empty(t, result.SourceChunks)
	assert.Empty(t, result.ConversationHistory)
}

func TestResponderAnswersFromChunks(t *testing.T) {
	websites := newFakeWebsiteStore()
	site := analyzedSite(t, websites, "https://acme.example")

	vectors := store.NewMemoryStore(3)
	require.NoError(t, vectors.ReplaceChunks(context.Background(), site.ID, []*model.WebsiteChunk{
		{ChunkText: "Acme sells retail analytics dashboards.", Embedding: pgvector.NewVector([]float32{1, 0, 0})},
	}))

	chat := &fakeChat{response: "They sell retail analytics dashboards."}
	r := newTestResponder(chat, websites, vectors)

	history := []model.Message{
		{Role: string(llm.RoleUser), Content: "Hi"},
		{Role: string(llm.RoleAssistant), Content: "Hello! Ask me about this website."},
	}
	result, err := r.Query(context.Background(), "https://acme.example", "What do they sell?", history)
	require.NoError(t, err)

	assert.Equal(t, "They sell retail analytics dashboards.", result.Answer)
	require.Len(t, result.SourceChunks, 1)
	assert.Contains(t, result.SourceChunks[0], "retail analytics")

	// The turn appends exactly the user question and the answer.
	require.Len(t, result.ConversationHistory, 4)
	assert.Equal(t, string(llm.RoleUser), result.ConversationHistory[2].Role)
	assert.Equal(t, "What do they sell?", result.ConversationHistory[2].Content)
	assert.Equal(t, string(llm.RoleAssistant), result.ConversationHistory[3].Role)
	assert.Equal(t, result.Answer, result.ConversationHistory[3].Content)

	// Prompt carries chunks and prior history.
	assert.Contains(t, chat.lastPrompt, "Acme sells retail analytics dashboards.")
	assert.Contains(t, chat.lastPrompt, "user: Hi")
	assert.Contains(t, chat.lastPrompt, "User Query: What do they sell?")
	assert.Equal(t, querySystemPrompt, chat.lastSystem)
}

func TestResponderLLMFailureReturnsError(t *testing.T) {
	websites := newFakeWebsiteStore()
	site := analyzedSite(t, websites, "https://acme.example")

	vectors := store.NewMemoryStore(3)
	require.NoError(t, vectors.ReplaceChunks(context.Background(), site.ID, []*model.WebsiteChunk{
		{ChunkText: "Some content.", Embedding: pgvector.NewVector([]float32{1, 0, 0})},
	}))

	r := newTestResponder(&fakeChat{err: assert.AnError}, websites, vectors)

	// Provider failure surfaces as an error, not a crafted answer.
	_, err := r.Query(context.Background(), "https://acme.example", "Anything?", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestResponderInvalidURL(t *testing.T) {
	r := newTestResponder(&fakeChat{}, newFakeWebsiteStore(), store.NewMemoryStore(3))

	_, err := r.Query(context.Background(), "not a url", "Anything?", nil)
	assert.Error(t, err)
}

func TestResponderCanonicalizesURL(t *testing.T) {
	websites := newFakeWebsiteStore()
	analyzedSite(t, websites, "https://acme.example")

	r := newTestResponder(&fakeChat{response: "unused"}, websites, store.NewMemoryStore(3))

	// Trailing slash and uppercase host resolve to the stored site.
	result, err := r.Query(context.Background(), "HTTPS://ACME.example/", "What do they sell?", nil)
	require.NoError(t, err)
	assert.Equal(t, NoContentMessage, result.Answer)
}
