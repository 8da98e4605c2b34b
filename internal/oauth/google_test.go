package oauth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/httpclient"
)

func newTestVerifier(endpoint string) *GoogleVerifier {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := httpclient.New(httpclient.Config{Timeout: 2 * time.Second, MaxRetries: 0})
	return NewGoogleVerifier(endpoint, "test-api-key", client, logger)
}

func TestVerifySuccess(t *testing.T) {
	var gotKey, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotToken = req["idToken"]

		_ = json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]string{
				{"email": "jane@example.com", "displayName": "Jane Doe"},
			},
		})
	}))
	defer srv.Close()

	v := newTestVerifier(srv.URL)
	id, err := v.Verify(context.Background(), "the-id-token")
	require.NoError(t, err)

	assert.Equal(t, "test-api-key", gotKey)
	assert.Equal(t, "the-id-token", gotToken)
	assert.Equal(t, "jane@example.com", id.Email)
	assert.Equal(t, "Jane Doe", id.FullName)
}

func TestVerifyDisplayNameFallsBackToLocalPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]string{
				{"email": "jane.doe@example.com"},
			},
		})
	}))
	defer srv.Close()

	v := newTestVerifier(srv.URL)
	id, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe", id.FullName)
}

func TestVerifyNoMatchingAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"users": []any{}})
	}))
	defer srv.Close()

	v := newTestVerifier(srv.URL)
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"INVALID_ID_TOKEN"}}`))
	}))
	defer srv.Close()

	v := newTestVerifier(srv.URL)
	_, err := v.Verify(context.Background(), "tok")

	// Provider detail is swallowed; only the generic error escapes.
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotContains(t, err.Error(), "INVALID_ID_TOKEN")
}

func TestVerifyNetworkError(t *testing.T) {
	v := newTestVerifier("http://127.0.0.1:1")
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	v := newTestVerifier(srv.URL)
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
