package providers

import (
	"context"

	"golang.org/x/oauth2"
)

// OAuthUser is the normalized user info returned by sign-in providers.
// Login is the provider's stable handle. Email is either empty or
// verified by the provider.
type OAuthUser struct {
	ID        string
	Login     string
	Email     string
	Name      string
	AvatarURL string
}

// OAuthProvider is the interface that all sign-in providers implement.
type OAuthProvider interface {
	Name() string
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUser, error)
}
