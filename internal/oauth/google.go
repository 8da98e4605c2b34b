package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ProviderGoogle is the only identity provider this service supports.
const ProviderGoogle = "google"

// DefaultLookupEndpoint is the Firebase Identity Toolkit introspection
// endpoint. The id token is never decoded locally; it is always round-tripped
// to the provider for verification.
const DefaultLookupEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:lookup"

// ErrInvalidToken is the single error every provider-side failure collapses
// into. The underlying cause (network error, non-200, unknown account) is
// logged server-side and never reaches the caller.
var ErrInvalidToken = errors.New("invalid google token")

// Identity holds the verified claims extracted from the provider response.
type Identity struct {
	Email    string
	FullName string
}

// Verifier exchanges a third-party id token for verified identity claims.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// doer is the outbound HTTP client shape the verifier needs; satisfied by
// httpclient.Client and httpclient.CircuitBreakerClient.
type doer interface {
	Post(ctx context.Context, url string, contentType string, body io.Reader) (*http.Response, error)
}

// GoogleVerifier verifies id tokens against the Firebase accounts:lookup
// endpoint using a server-held API key.
type GoogleVerifier struct {
	endpoint string
	apiKey   string
	client   doer
	logger   *slog.Logger
}

// NewGoogleVerifier creates a verifier for the given introspection endpoint
// and API key.
func NewGoogleVerifier(endpoint, apiKey string, client doer, logger *slog.Logger) *GoogleVerifier {
	return &GoogleVerifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   client,
		logger:   logger,
	}
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"users"`
}

// Verify round-trips the id token to the provider and extracts the verified
// email and display name. The display name falls back to the email's local
// part when the provider omits it.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	body, err := json.Marshal(lookupRequest{IDToken: idToken})
	if err != nil {
		return nil, v.invalid(ctx, fmt.Errorf("marshal lookup request: %w", err))
	}

	url := v.endpoint + "?key=" + v.apiKey
	resp, err := v.client.Post(ctx, url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, v.invalid(ctx, fmt.Errorf("call identity provider: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, v.invalid(ctx, fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, detail))
	}

	var lookup lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookup); err != nil {
		return nil, v.invalid(ctx, fmt.Errorf("decode lookup response: %w", err))
	}

	if len(lookup.Users) == 0 {
		return nil, v.invalid(ctx, errors.New("no user found for this token"))
	}

	account := lookup.Users[0]
	fullName := account.DisplayName
	if fullName == "" {
		fullName = localPart(account.Email)
	}

	return &Identity{Email: account.Email, FullName: fullName}, nil
}

// invalid logs the real provider error and returns the generic one. This is
// the information-hiding boundary: callers only ever see ErrInvalidToken.
func (v *GoogleVerifier) invalid(ctx context.Context, cause error) error {
	v.logger.WarnContext(ctx, "identity token verification failed",
		slog.String("provider", ProviderGoogle),
		slog.String("error", cause.Error()),
	)
	return ErrInvalidToken
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
