package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/pkg/llm"
)

// fakeChat returns a canned response and records the last prompt.
type fakeChat struct {
	mu         sync.Mutex
	response   string
	err        error
	lastPrompt string
	lastSystem string
}

func (f *fakeChat) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeChat) Generate(ctx context.Context, prompt, systemPrompt string) (*llm.GenerateResponse, error) {
	f.mu.Lock()
	f.lastPrompt = prompt
	f.lastSystem = systemPrompt
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{
		Content:    f.response,
		TokenUsage: &llm.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (f *fakeChat) Name() string { return "fake-chat" }

// fakeEmbed returns a fixed vector, or an error for texts listed in fail.
type fakeEmbed struct {
	vector []float32
	fail   map[string]bool
	err    error
}

func (f *fakeEmbed) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		emb, err := f.EmbedSingle(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (f *fakeEmbed) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.fail[text] {
		return nil, errors.New("embedding unavailable")
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbed) Name() string { return "fake-embed" }

// fakeWebsiteStore keeps website rows in a map.
type fakeWebsiteStore struct {
	mu     sync.Mutex
	nextID int64
	sites  map[string]*model.Website
}

func newFakeWebsiteStore() *fakeWebsiteStore {
	return &fakeWebsiteStore{sites: make(map[string]*model.Website)}
}

func (f *fakeWebsiteStore) GetOrCreate(ctx context.Context, url string) (*model.Website, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if site, ok := f.sites[url]; ok {
		return site, nil
	}
	f.nextID++
	site := &model.Website{ID: f.nextID, URL: url}
	f.sites[url] = site
	return site, nil
}

func (f *fakeWebsiteStore) GetByURL(ctx context.Context, url string) (*model.Website, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sites[url], nil
}

func (f *fakeWebsiteStore) SaveInsights(ctx context.Context, websiteID int64, insights []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, site := range f.sites {
		if site.ID == websiteID {
			site.Insights = insights
			return nil
		}
	}
	return fmt.Errorf("website %d not found", websiteID)
}

// fakeFetcher serves a fixed HTML document.
type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.html, nil
}

func testHomepage(body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <title>Acme Analytics - Data Insights for Retail</title>
  <meta name="description" content="Acme Analytics turns retail data into decisions.">
</head>
<body>
  <div class="hero">%s</div>
  <main>%s</main>
</body>
</html>`, strings.Repeat("Retail analytics made simple. ", 3), body)
}
