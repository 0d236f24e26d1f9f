package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/webinsight/internal/model"
	"github.com/kart-io/webinsight/internal/webinsight/biz"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	analyzeResult *biz.AnalyzeResult
	analyzeErr    error
	queryResult   *model.QueryResult
	queryErr      error
	queryDelay    time.Duration
	stats         map[string]any
	statsErr      error
}

func (f *fakeService) Analyze(ctx context.Context, url string, questions []string) (*biz.AnalyzeResult, error) {
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.analyzeResult, nil
}

func (f *fakeService) Query(ctx context.Context, url, query string, history []model.Message) (*model.QueryResult, error) {
	if f.queryDelay > 0 {
		select {
		case <-time.After(f.queryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryResult, nil
}

func (f *fakeService) Stats(ctx context.Context) (map[string]any, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func newTestRouter(service biz.Service, queryTimeout time.Duration) *gin.Engine {
	h := NewInsightHandler(service, queryTimeout)
	r := gin.New()
	r.POST("/api/insights", h.Insights)
	r.POST("/api/query", h.Query)
	r.GET("/api/health", h.Health)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestInsightsSuccess(t *testing.T) {
	svc := &fakeService{
		analyzeResult: &biz.AnalyzeResult{
			URL:          "https://acme.example",
			WebsiteID:    7,
			Insights:     &model.BusinessInsight{Industry: "Software"},
			ChunksStored: 3,
		},
	}
	r := newTestRouter(svc, 0)

	w := postJSON(t, r, "/api/insights", `{"url": "https://acme.example"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":0`)
	assert.Contains(t, w.Body.String(), `"Software"`)
	assert.Contains(t, w.Body.String(), `"chunks_stored":3`)
}

func TestInsightsMissingURL(t *testing.T) {
	r := newTestRouter(&fakeService{}, 0)

	w := postJSON(t, r, "/api/insights", `{"questions": ["who?"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInsightsInvalidURL(t *testing.T) {
	svc := &fakeService{
		analyzeErr: fmt.Errorf("%w: unsupported scheme", biz.ErrInvalidURL),
	}
	r := newTestRouter(svc, 0)

	w := postJSON(t, r, "/api/insights", `{"url": "ftp://acme.example"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid url")
}

func TestInsightsServiceError(t *testing.T) {
	svc := &fakeService{analyzeErr: fmt.Errorf("store unavailable")}
	r := newTestRouter(svc, 0)

	w := postJSON(t, r, "/api/insights", `{"url": "https://acme.example"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestQuerySuccess(t *testing.T) {
	svc := &fakeService{
		queryResult: &model.QueryResult{
			Answer:       "They sell widgets.",
			SourceChunks: []string{"chunk one"},
			ConversationHistory: []model.Message{
				{Role: "user", Content: "What do they sell?"},
				{Role: "assistant", Content: "They sell widgets."},
			},
		},
	}
	r := newTestRouter(svc, 0)

	w := postJSON(t, r, "/api/query", `{"url": "https://acme.example", "query": "What do they sell?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "They sell widgets.")
	assert.Contains(t, w.Body.String(), "conversation_history")
}

func TestQueryMissingFields(t *testing.T) {
	r := newTestRouter(&fakeService{}, 0)

	w := postJSON(t, r, "/api/query", `{"url": "https://acme.example"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryTimeout(t *testing.T) {
	svc := &fakeService{queryDelay: time.Second}
	r := newTestRouter(svc, 20*time.Millisecond)

	w := postJSON(t, r, "/api/query", `{"url": "https://acme.example", "query": "slow?"}`)

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "Query timeout")
}

func TestQueryServiceError(t *testing.T) {
	svc := &fakeService{queryErr: fmt.Errorf("embed query: connection refused")}
	r := newTestRouter(svc, 0)

	w := postJSON(t, r, "/api/query", `{"url": "https://acme.example", "query": "hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealth(t *testing.T) {
	svc := &fakeService{stats: map[string]any{"embed_provider": "openai"}}
	r := newTestRouter(svc, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "embed_provider")
}
