package scrape_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/webinsight/internal/pkg/scrape"
)

func TestFetcherSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		_, _ = w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer srv.Close()

	f := scrape.NewFetcher(5*time.Second, scrape.WithBackoff(time.Millisecond))
	body, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, body, "<title>ok</title>")
}

func TestFetcherRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	f := scrape.NewFetcher(5*time.Second, scrape.WithMaxAttempts(3), scrape.WithBackoff(time.Millisecond))
	body, err := f.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "recovered", body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcherExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := scrape.NewFetcher(5*time.Second, scrape.WithMaxAttempts(3), scrape.WithBackoff(time.Millisecond))
	_, err := f.Fetch(context.Background(), srv.URL)

	var fetchErr *scrape.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcherTransportError(t *testing.T) {
	f := scrape.NewFetcher(time.Second, scrape.WithMaxAttempts(2), scrape.WithBackoff(time.Millisecond))
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1")

	var fetchErr *scrape.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
}

func TestFetcherContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := scrape.NewFetcher(time.Second, scrape.WithMaxAttempts(3), scrape.WithBackoff(time.Hour))
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
}
