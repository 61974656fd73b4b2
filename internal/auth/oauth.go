package auth

import (
	"log/slog"

	"cosmos-server/internal/auth/providers"
	"cosmos-server/internal/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// OAuthConfig holds the configured sign-in providers for the HTTP layer.
type OAuthConfig struct {
	GitHubProvider   *providers.GitHubProvider
	GitHubConfigured bool
}

func InitOAuth() *OAuthConfig {
	cfg := config.GlobalConfig

	githubConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.GitHub.ClientID,
		ClientSecret: cfg.OAuth.GitHub.ClientSecret,
		RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
		Scopes:       cfg.OAuth.GitHub.Scopes,
		Endpoint:     github.Endpoint,
	}

	githubConfigured := cfg.GitHubOAuthConfigured()

	if githubConfigured {
		slog.Info("OAuth configuration completed",
			"github_redirect", githubConfig.RedirectURL)
	} else {
		slog.Warn("GitHub OAuth not configured - missing client credentials")
	}

	return &OAuthConfig{
		GitHubProvider:   providers.NewGitHubProvider(githubConfig),
		GitHubConfigured: githubConfigured,
	}
}
