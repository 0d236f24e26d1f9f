package biz

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/webinsight/internal/webinsight/store"
)

const insightJSON = `{
	"industry": "Retail Analytics",
	"company_size": "Small (11-50)",
	"location": null,
	"USP": "Real-time dashboards",
	"products": ["Dashboard"],
	"target_audience": "Retailers",
	"contact_info": {"emails": [], "phones": [], "social_media": []}
}`

func newTestAnalyzer(fetcher Fetcher, embed *fakeEmbed, chat *fakeChat, websites *fakeWebsiteStore, vectors store.VectorStore) *Analyzer {
	return NewAnalyzer(fetcher, embed, chat, websites, vectors, &AnalyzerConfig{
		ChunkSize:        200,
		ChunkOverlap:     50,
		EmbedConcurrency: 2,
	})
}

func TestAnalyzerFullPipeline(t *testing.T) {
	websites := newFakeWebsiteStore()
	vectors := store.NewMemoryStore(3)
	fetcher := &fakeFetcher{html: testHomepage(strings.Repeat("Acme Analytics builds dashboards for independent retailers. ", 20))}

	a := newTestAnalyzer(fetcher, &fakeEmbed{}, &fakeChat{response: insightJSON}, websites, vectors)

	result, err := a.Analyze(context.Background(), "https://Acme.example/", []string{"Do they offer a trial?"})
	require.NoError(t, err)

	assert.Equal(t, "https://acme.example", result.URL)
	assert.False(t, result.Degraded)
	assert.Equal(t, "Retail Analytics", result.Insights.Industry)
	assert.Greater(t, result.ChunksStored, 1)

	// Insights are persisted on the website row.
	site, err := websites.GetByURL(context.Background(), "https://acme.example")
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.Contains(t, string(site.Insights), "Retail Analytics")

	// Chunks are persisted in the vector store.
	n, err := vectors.Count(context.Background(), site.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(result.ChunksStored), n)
}

func TestAnalyzerFetchFailureDegrades(t *testing.T) {
	websites := newFakeWebsiteStore()
	vectors := store.NewMemoryStore(3)
	chat := &fakeChat{response: insightJSON}

	a := newTestAnalyzer(&fakeFetcher{err: assert.AnError}, &fakeEmbed{}, chat, websites, vectors)

	result, err := a.Analyze(context.Background(), "https://down.example", nil)
	require.NoError(t, err)

	assert.True(t, result.Degraded)
	assert.Contains(t, result.DegradedReason, "fetch failed")
	assert.Equal(t, 0, result.ChunksStored)

	// The fallback insight is still persisted.
	site, err := websites.GetByURL(context.Background(), "https://down.example")
	require.NoError(t, err)
	require.NotNil(t, site)
	assert.NotEmpty(t, site.Insights)

	// The LLM is not consulted for an empty page.
	assert.Empty(t, chat.lastPrompt)
}

func TestAnalyzerAllEmbeddingsFailSkipsStorage(t *testing.T) {
	websites := newFakeWebsiteStore()
	vectors := store.NewMemoryStore(3)
	fetcher := &fakeFetcher{html: testHomepage(strings.Repeat("Lots of content here. ", 50))}

	a := newTestAnalyzer(fetcher, &fakeEmbed{err: assert.AnError}, &fakeChat{response: insightJSON}, websites, vectors)

	result, err := a.Analyze(context.Background(), "https://acme.example", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ChunksStored)
	assert.Equal(t, "Retail Analytics", result.Insights.Industry)

	site, _ := websites.GetByURL(context.Background(), "https://acme.example")
	n, err := vectors.Count(context.Background(), site.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAnalyzerReanalysisReplacesChunks(t *testing.T) {
	websites := newFakeWebsiteStore()
	vectors := store.NewMemoryStore(3)

	long := &fakeFetcher{html: testHomepage(strings.Repeat("First version of the page content. ", 40))}
	short := &fakeFetcher{html: testHomepage("Second version.")}

	a1 := newTestAnalyzer(long, &fakeEmbed{}, &fakeChat{response: insightJSON}, websites, vectors)
	first, err := a1.Analyze(context.Background(), "https://acme.example", nil)
	require.NoError(t, err)

	a2 := newTestAnalyzer(short, &fakeEmbed{}, &fakeChat{response: insightJSON}, websites, vectors)
	second, err := a2.Analyze(context.Background(), "https://acme.example", nil)
	require.NoError(t, err)

	assert.Equal(t, first.WebsiteID, second.WebsiteID)
	assert.Less(t, second.ChunksStored, first.ChunksStored)

	n, err := vectors.Count(context.Background(), second.WebsiteID)
	require.NoError(t, err)
	assert.Equal(t, int64(second.ChunksStored), n)
}

func TestAnalyzerInvalidURL(t *testing.T) {
	a := newTestAnalyzer(&fakeFetcher{}, &fakeEmbed{}, &fakeChat{}, newFakeWebsiteStore(), store.NewMemoryStore(3))

	_, err := a.Analyze(context.Background(), "ftp://acme.example", nil)
	assert.Error(t, err)
}
