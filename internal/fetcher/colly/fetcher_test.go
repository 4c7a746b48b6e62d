package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
}

func (c *fakeClock) sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Corpus")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>listing</html>"))
	}))
	defer srv.Close()

	clk := &fakeClock{now: time.Unix(0, 0)}
	f := New(Config{
		Headers: map[string]string{"X-Corpus": "scraper"},
		Timeout: 2 * time.Second,
	}, clk)

	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, resp.OK())
	require.Equal(t, "<html>listing</html>", string(resp.Body))
	require.Equal(t, "scraper", gotHeader)
}

func TestFetchNonSuccessStatusIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{Timeout: time.Second}, &fakeClock{})

	resp, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.False(t, resp.OK())
}

func TestFetchTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	url := srv.URL
	srv.Close()

	f := New(Config{Timeout: time.Second}, &fakeClock{})

	_, err := f.Fetch(context.Background(), url)
	require.Error(t, err)
}

func TestFetchThrottlesBeforeEveryRequest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	clk := &fakeClock{}
	f := New(Config{Timeout: 3 * time.Second}, clk)

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}

	// One flat suspension per request, no backoff.
	require.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, clk.sleeps())
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	f := New(Config{Timeout: 10 * time.Second}, &fakeClock{})

	_, err := f.Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, context.Canceled)
}
