package handlers

import (
	"log/slog"
	"net/http"

	"cosmos-server/internal/shared/cookies"
	"cosmos-server/internal/shared/response"
)

type LogoutHandler struct{}

func NewLogoutHandler() *LogoutHandler {
	return &LogoutHandler{}
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "logout", "remote_addr", r.RemoteAddr)

	cookies.ClearAuthCookie(w)

	logger.Info("Operator logged out")
	response.Success(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
