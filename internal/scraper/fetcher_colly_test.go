package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollyFetcherFetch(t *testing.T) {
	t.Parallel()

	var gotUA atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body><h1 id="ad-title">Listing</h1></body></html>`))
	}))
	defer server.Close()

	fetcher, err := NewCollyFetcher(testConfig(), zap.NewNop())
	require.NoError(t, err)

	page, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Contains(t, string(page.Body), "ad-title")
	require.Equal(t, server.URL, page.URL)
	require.Equal(t, "test-agent", gotUA.Load())
}

func TestCollyFetcherNonSuccessStatusIsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher, err := NewCollyFetcher(testConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
}

func TestCollyFetcherConnectionRefused(t *testing.T) {
	t.Parallel()

	// Grab a port that nothing listens on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	deadURL := server.URL
	server.Close()

	fetcher, err := NewCollyFetcher(testConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), deadURL)
	require.Error(t, err)
}

func TestNewCollyFetcherValidatesConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.UserAgent = ""
	_, err := NewCollyFetcher(cfg, zap.NewNop())
	require.Error(t, err)
}
