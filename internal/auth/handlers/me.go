package handlers

import (
	"log/slog"
	"net/http"

	"cosmos-server/internal/auth"
	"cosmos-server/internal/middleware"
	"cosmos-server/internal/shared/errors"
	"cosmos-server/internal/shared/response"
)

type MeHandler struct {
	authService *auth.Service
}

func NewMeHandler(authService *auth.Service) *MeHandler {
	return &MeHandler{authService: authService}
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "me")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("no user claims found in context"))
		return
	}

	operator, err := h.authService.GetOperatorByID(r.Context(), claims.OperatorID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, operator)
}
