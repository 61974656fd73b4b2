package server

import (
	"log/slog"
	"net/http"

	"cosmos-server/internal/auth"
	authHandlers "cosmos-server/internal/auth/handlers"
	"cosmos-server/internal/location"
	locationHandlers "cosmos-server/internal/location/handlers"
	"cosmos-server/internal/middleware"
	serverHandlers "cosmos-server/internal/server/handlers"
	"cosmos-server/internal/shared/database"
	"cosmos-server/internal/shared/redis"
)

type Routes struct {
	db              *database.DB
	cache           *redis.Client
	locationService *location.Service
	authService     *auth.Service
	oauthConfig     *auth.OAuthConfig
	logger          *slog.Logger
}

func NewRoutes(db *database.DB, cache *redis.Client, locationService *location.Service, authService *auth.Service, oauthConfig *auth.OAuthConfig, logger *slog.Logger) *Routes {
	return &Routes{
		db:              db,
		cache:           cache,
		locationService: locationService,
		authService:     authService,
		oauthConfig:     oauthConfig,
		logger:          logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.cache)
	locationHandler := locationHandlers.NewLocationHandler(r.locationService)
	meHandler := authHandlers.NewMeHandler(r.authService)
	logoutHandler := authHandlers.NewLogoutHandler()

	githubAuthHandler := authHandlers.NewOAuthHandler(
		r.oauthConfig.GitHubProvider,
		r.authService,
		r.oauthConfig.GitHubConfigured,
	)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.HandleFunc("/api/locations", locationHandler.GetRoots)
	mux.HandleFunc("GET /api/locations/{id}", locationHandler.GetLocation)
	mux.HandleFunc("/api/locations/{id}/children", locationHandler.GetChildren)
	mux.HandleFunc("/api/locations/{id}/subtree", locationHandler.GetSubtree)
	mux.HandleFunc("/api/locations/{id}/ancestors", locationHandler.GetAncestors)
	mux.HandleFunc("/api/locations/{id}/distance/{other}", locationHandler.GetDistance)
	mux.HandleFunc("/api/locations/{id}/orbit/stream", locationHandler.StreamOrbit)

	// Protected endpoints (authenticated operators)
	mux.Handle("/api/operators/me", middleware.JWTMiddleware(meHandler))

	// Admin-only endpoints (authenticated + admin role)
	mux.Handle("/api/regions", middleware.RequireAdmin(http.HandlerFunc(locationHandler.GenerateRegion)))
	mux.Handle("/api/locations/{id}/populate", middleware.RequireAdmin(http.HandlerFunc(locationHandler.Populate)))
	mux.Handle("/api/locations/{id}/orbit/advance", middleware.RequireAdmin(http.HandlerFunc(locationHandler.Advance)))
	mux.Handle("DELETE /api/locations/{id}", middleware.RequireAdmin(http.HandlerFunc(locationHandler.DeleteLocation)))

	// OAuth endpoints
	mux.HandleFunc("/auth/github", githubAuthHandler.HandleAuth)
	mux.HandleFunc("/auth/github/callback", githubAuthHandler.HandleCallback)
	mux.Handle("/auth/logout", logoutHandler)

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/api/locations", "/api/locations/{id}", "/api/locations/{id}/children", "/api/locations/{id}/subtree", "/api/locations/{id}/ancestors", "/api/locations/{id}/distance/{other}", "/api/locations/{id}/orbit/stream"},
		"protected_endpoints", []string{"/api/operators/me"},
		"admin_endpoints", []string{"/api/regions", "/api/locations/{id}/populate", "/api/locations/{id}/orbit/advance"},
		"auth_endpoints", []string{"/auth/github", "/auth/logout"},
	)

	return mux
}
