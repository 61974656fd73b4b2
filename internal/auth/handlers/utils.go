package handlers

import (
	"fmt"
	"net/http"

	"cosmos-server/internal/shared/config"
)

// redirectWithError redirects to the frontend with error parameters.
// Both values must be URL-safe tokens.
func redirectWithError(w http.ResponseWriter, r *http.Request, errorType, message string) {
	cfg := config.GlobalConfig
	errorURL := fmt.Sprintf("%s/auth/error?error=%s&message=%s",
		cfg.Frontend.URL, errorType, message)

	http.Redirect(w, r, errorURL, http.StatusTemporaryRedirect)
}
