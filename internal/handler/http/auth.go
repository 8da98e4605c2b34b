package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/auth"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/domain"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/internal/service"
	apperrors "github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/errors"
	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/validator"
)

// AuthService is the behavior the HTTP layer needs from the auth service.
type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (*domain.User, *domain.TokenPair, error)
	Login(ctx context.Context, input service.LoginInput) (*domain.User, *domain.TokenPair, error)
	OAuthLogin(ctx context.Context, provider, idToken string) (*domain.User, *domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.User, *domain.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	UserByID(ctx context.Context, userID string) (*domain.User, error)
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	service AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OAuthLoginRequest is the payload for POST /api/auth/oauth-login.
// IDToken carries no validate tag so an unsupported provider is reported
// before a missing token.
type OAuthLoginRequest struct {
	Provider string `json:"provider" validate:"required"`
	IDToken  string `json:"idToken"`
}

// RefreshRequest is the optional payload for POST /api/auth/refresh; when
// the body carries no token the refreshToken cookie is used.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// authPayload is the data section returned by every token-issuing endpoint.
type authPayload struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidInput("invalid request body")
	}
	if err := validator.Validate(dst); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			return apperrors.InvalidInput(validationErr.Error())
		}
		return apperrors.InvalidInput("invalid request body")
	}
	return nil
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, tokens, err := h.service.Register(r.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	setAuthCookies(w, tokens)
	writeSuccess(w, http.StatusCreated, "user registered successfully", authPayload{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, tokens, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	setAuthCookies(w, tokens)
	writeSuccess(w, http.StatusOK, "login successful", authPayload{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// OAuthLogin handles POST /api/auth/oauth-login.
func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req OAuthLoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, tokens, err := h.service.OAuthLogin(r.Context(), req.Provider, req.IDToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setAuthCookies(w, tokens)
	writeSuccess(w, http.StatusOK, "login successful", authPayload{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Refresh handles POST /api/auth/refresh. The token comes from the body when
// present, else from the refreshToken cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperrors.InvalidInput("invalid request body"))
			return
		}
	}

	token := req.RefreshToken
	if token == "" {
		if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
			token = cookie.Value
		}
	}

	user, tokens, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	setAuthCookies(w, tokens)
	writeSuccess(w, http.StatusOK, "tokens refreshed", authPayload{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Logout handles POST /api/auth/logout. The session is optional: the
// cookies are cleared and 200 returned whether or not a valid session was
// presented.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var userID string
	if user, ok := UserFromContext(r.Context()); ok {
		userID = user.ID
	}

	_ = h.service.Logout(r.Context(), userID)

	clearAuthCookies(w)
	writeSuccess(w, http.StatusOK, "logged out successfully", nil)
}

// CurrentUser handles GET /api/auth/current-user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, r, apperrors.Unauthorized("Unauthorized"))
		return
	}

	writeSuccess(w, http.StatusOK, "current user fetched successfully", map[string]any{
		"user": user,
	})
}
