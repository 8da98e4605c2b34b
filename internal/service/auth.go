package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/auth"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/domain"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/oauth"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/repository"
	apperrors "github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// AuthService implements the authentication flows: registration, password
// login, OAuth login, token refresh, logout, and session resolution.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	verifier oauth.Verifier
	logger   *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenManager,
	verifier oauth.Verifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// LoginInput holds the parameters for password login.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a new user account, hashes the password, and returns the
// user with a fresh token pair.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.TokenPair, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := normalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)

	if fullName == "" || email == "" || password == "" {
		return nil, nil, apperrors.InvalidInput("all fields are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.Conflict("user with this email already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil, fmt.Errorf("check existing user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		FullName:  fullName,
		Email:     email,
		Password:  string(hashedPassword),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Duplicate insert races surface here as a conflict too.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Login authenticates a user with email and password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	email := normalizeEmail(input.Email)
	password := input.Password

	if email == "" || password == "" {
		return nil, nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.NotFound("user does not exist")
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid credentials")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return user, tokens, nil
}

// OAuthLogin verifies a third-party id token and logs the bound account in,
// provisioning a user record on first sight of the verified email.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, idToken string) (*domain.User, *domain.TokenPair, error) {
	if provider != oauth.ProviderGoogle {
		return nil, nil, apperrors.InvalidInput("unsupported provider")
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, nil, apperrors.InvalidInput("ID token is required")
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		// The bridge already logged the real cause; the caller gets the
		// fixed message regardless of what went wrong provider-side.
		return nil, nil, apperrors.InvalidInput("invalid google token")
	}

	email := normalizeEmail(identity.Email)

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Existing account, OAuth or password-based; reuse it.
	case errors.Is(err, apperrors.ErrNotFound):
		user, err = s.provisionOAuthUser(ctx, identity.FullName, email)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "oauth login",
		slog.String("user_id", user.ID),
		slog.String("provider", provider),
	)

	return user, tokens, nil
}

// Refresh validates a presented refresh token against the user's stored slot
// and rotates the pair. A token that no longer matches the slot (overwritten
// by a newer login, or cleared by logout) is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, nil, apperrors.Unauthorized("unauthorized")
	}

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, nil, apperrors.Unauthorized("refresh token is no longer valid")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.String("user_id", user.ID),
	)

	return user, tokens, nil
}

// Logout clears the user's refresh token slot. Logging out without a
// resolved user, or for a user that no longer exists, is not an error.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		// Logout must stay idempotent; report the store failure in the log
		// and let the handler clear cookies regardless.
		s.logger.ErrorContext(ctx, "failed to clear refresh token",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	s.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", userID),
	)

	return nil
}

// UserByID resolves a user identifier to the stored record. Used by the
// session middleware after token verification.
func (s *AuthService) UserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ValidateAccessToken verifies an access token and returns its claims.
func (s *AuthService) ValidateAccessToken(token string) (*auth.Claims, error) {
	return s.tokens.ValidateAccessToken(token)
}

// issueTokens mints an access/refresh pair for the user and persists the
// refresh token into the user's single slot, overwriting whatever was there.
// The caller has already resolved the user, so a missing record here is a
// contract violation reported as an internal error.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Internal(fmt.Errorf("token issuance for unknown user %s: %w", user.ID, err))
		}
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	user.RefreshToken = refreshToken

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// provisionOAuthUser creates a user for a first-time OAuth login. The
// placeholder secret is random and never intended for password login.
func (s *AuthService) provisionOAuthUser(ctx context.Context, fullName, email string) (*domain.User, error) {
	placeholder, err := randomSecret()
	if err != nil {
		return nil, fmt.Errorf("generate placeholder secret: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(placeholder), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder secret: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		FullName:  fullName,
		Email:     email,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent first login for the same email may have provisioned
		// the record already; reuse it.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return s.users.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("provision oauth user: %w", err)
	}

	s.logger.InfoContext(ctx, "oauth user provisioned",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
