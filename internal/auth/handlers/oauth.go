package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cosmos-server/internal/auth"
	"cosmos-server/internal/auth/providers"
	"cosmos-server/internal/shared/config"
	"cosmos-server/internal/shared/cookies"
	"cosmos-server/internal/shared/errors"
	"cosmos-server/internal/shared/response"
)

type OAuthHandler struct {
	provider     providers.OAuthProvider
	authService  *auth.Service
	isConfigured bool
}

func NewOAuthHandler(provider providers.OAuthProvider, authService *auth.Service, isConfigured bool) *OAuthHandler {
	return &OAuthHandler{
		provider:     provider,
		authService:  authService,
		isConfigured: isConfigured,
	}
}

// HandleAuth starts the sign-in flow by redirecting to the provider.
func (h *OAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	logger := slog.With("handler", name+"_oauth_init")

	if !h.isConfigured {
		response.Error(w, r, logger, errors.External(fmt.Sprintf("%s OAuth is not properly configured", name)))
		return
	}

	state, err := auth.GenerateOAuthState(name, r.UserAgent())
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to initialize OAuth flow", err))
		return
	}

	authURL := h.provider.GetAuthURL(state)
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// HandleCallback completes the sign-in flow, upserts the operator, and
// sets the auth cookie before redirecting back to the frontend.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")

	logger := slog.With(
		"handler", name+"_oauth_callback",
		"user_agent", r.UserAgent(),
		"ip", r.RemoteAddr,
		"has_code", code != "",
		"has_state", state != "",
	)

	if errorParam != "" {
		logger.Warn("OAuth authorization denied",
			"provider", name,
			"oauth_error", errorParam,
			"error_description", r.URL.Query().Get("error_description"))
		redirectWithError(w, r, "oauth_denied", errorParam)
		return
	}

	if code == "" {
		logger.Error("OAuth callback missing authorization code", "provider", name)
		redirectWithError(w, r, "oauth_error", "missing_code")
		return
	}

	if err := auth.ValidateOAuthState(state, name, r.UserAgent()); err != nil {
		logger.Warn("OAuth state validation failed", "provider", name, "error", err)
		redirectWithError(w, r, "invalid_state", "state_validation_failed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code",
			"error", err,
			"provider", name)
		redirectWithError(w, r, "oauth_error", "code_exchange_failed")
		return
	}

	userInfo, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info",
			"error", err,
			"provider", name)
		redirectWithError(w, r, "oauth_error", "user_info_failed")
		return
	}

	userLogger := logger.With(
		"provider_user_id", userInfo.ID,
		"login", userInfo.Login)

	operator, err := h.authService.SignInWithGitHub(ctx, userInfo)
	if err != nil {
		userLogger.Error("Failed to sign in operator", "error", err)
		redirectWithError(w, r, "database_error", "sign_in_failed")
		return
	}

	jwtToken, err := auth.GenerateJWT(operator)
	if err != nil {
		userLogger.Error("Failed to generate JWT token", "error", err, "operator_id", operator.ID)
		redirectWithError(w, r, "auth_error", "token_generation_failed")
		return
	}

	cookies.SetAuthCookie(w, jwtToken)

	userLogger.Info("OAuth authentication successful",
		"provider", name,
		"operator_id", operator.ID,
		"operator_role", operator.Role)

	successURL := fmt.Sprintf("%s/auth/callback?success=true", config.GlobalConfig.Frontend.URL)
	http.Redirect(w, r, successURL, http.StatusTemporaryRedirect)
}
