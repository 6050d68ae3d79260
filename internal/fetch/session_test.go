package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	if cfg.UserAgent == "" {
		cfg.UserAgent = "marquee-test/1.0"
	}
	return NewSession(cfg, zap.NewNop())
}

func TestSessionUseBeforeInit(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Config{})
	ctx := context.Background()

	_, err := s.FetchStatic(ctx, "http://example.invalid/")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.True(t, IsSessionStateError(err))

	_, _, err = s.FetchRendered(ctx, "http://example.invalid/")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSessionUseAfterClose(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Config{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))
	s.Close()

	_, err := s.FetchStatic(ctx, "http://example.invalid/")
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, IsSessionStateError(err))
}

func TestSessionDoubleInitRejected(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Config{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))
	defer s.Close()

	assert.Error(t, s.Init(ctx))
}

func TestSessionCloseIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestSession(t, Config{})
	require.NoError(t, s.Init(context.Background()))
	s.Close()
	s.Close()
}

func TestFetchStatic(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte("<html><body><h1>listings</h1></body></html>"))
	}))
	defer srv.Close()

	s := newTestSession(t, Config{UserAgent: "marquee-test/1.0 (+https://example.org)"})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))
	defer s.Close()

	body, err := s.FetchStatic(ctx, srv.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "listings")
	assert.Equal(t, "marquee-test/1.0 (+https://example.org)", gotUA)
}

func TestFetchStaticRevisitsSameURL(t *testing.T) {
	t.Parallel()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := newTestSession(t, Config{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))
	defer s.Close()

	// Retry loops hit the same listing URL again; the collector must not
	// treat that as an already-visited page.
	_, err := s.FetchStatic(ctx, srv.URL)
	require.NoError(t, err)
	_, err = s.FetchStatic(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestFetchStaticServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := newTestSession(t, Config{})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))
	defer s.Close()

	_, err := s.FetchStatic(ctx, srv.URL)
	assert.Error(t, err)
}

func TestFetchStaticRateGated(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := newTestSession(t, Config{RequestDelay: 100 * time.Millisecond})
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))
	defer s.Close()

	_, err := s.FetchStatic(ctx, srv.URL)
	require.NoError(t, err)

	start := time.Now()
	_, err = s.FetchStatic(ctx, srv.URL)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
