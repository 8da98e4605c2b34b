package httpclient

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBreakerClient(cfg CircuitBreakerConfig) *CircuitBreakerClient {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCircuitBreakerClient(New(Config{Timeout: 2 * time.Second}), cfg, logger)
}

func TestCircuitBreakerPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newBreakerClient(DefaultCircuitBreakerConfig("test"))

	resp, err := c.Post(context.Background(), srv.URL, "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	// Unreachable address so every attempt errors.
	cfg := CircuitBreakerConfig{
		Name:         "failing",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}
	c := newBreakerClient(cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = c.Post(ctx, "http://127.0.0.1:1", "application/json", strings.NewReader("{}"))
	}

	_, err := c.Post(ctx, "http://127.0.0.1:1", "application/json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, ErrCircuitOpen)
}
