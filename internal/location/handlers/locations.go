package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"cosmos-server/internal/location"
	"cosmos-server/internal/shared/errors"
	"cosmos-server/internal/shared/response"
)

type LocationHandler struct {
	service *location.Service
}

func NewLocationHandler(service *location.Service) *LocationHandler {
	return &LocationHandler{service: service}
}

func parseLocationID(r *http.Request, name string) (uuid.UUID, error) {
	idStr := r.PathValue(name)
	if idStr == "" {
		return uuid.Nil, errors.Validation("location ID is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, errors.WrapValidation("invalid location ID format", err)
	}
	return id, nil
}

func (h *LocationHandler) GenerateRegion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "generate_region")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req location.GenerateRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	result, err := h.service.GenerateRegion(ctx, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, result)
}

func (h *LocationHandler) Populate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "populate_location")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := parseLocationID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	// The body is optional; without one the seed is sampled.
	var req struct {
		Seed *int64 `json:"seed"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	result, err := h.service.Populate(ctx, id, req.Seed)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, result)
}

func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_location")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := parseLocationID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	loc, err := h.service.Get(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, loc)
}

func (h *LocationHandler) GetRoots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_roots")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	roots, err := h.service.GetRoots(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, roots)
}

func (h *LocationHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_children")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := parseLocationID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	children, err := h.service.GetChildren(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, children)
}

func (h *LocationHandler) GetSubtree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_subtree")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := parseLocationID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	maxDepth := 0
	if depthStr := r.URL.Query().Get("depth"); depthStr != "" {
		maxDepth, err = strconv.Atoi(depthStr)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid depth parameter", err))
			return
		}
	}

	subtree, err := h.service.GetSubtree(ctx, id, maxDepth)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, subtree)
}

func (h *LocationHandler) GetAncestors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_ancestors")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := parseLocationID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	ancestors, err := h.service.GetAncestors(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, ancestors)
}

func (h *LocationHandler) GetDistance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_distance")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	fromID, err := parseLocationID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	toID, err := parseLocationID(r, "other")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	result, err := h.service.Distance(ctx, fromID, toID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}

func (h *LocationHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "advance_orbit")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := parseLocationID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var req location.AdvanceRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON in request body", err))
		return
	}

	loc, err := h.service.Advance(ctx, id, req.Seconds)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, loc)
}

func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "delete_location")

	if r.Method != http.MethodDelete {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := parseLocationID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	deleted, err := h.service.Delete(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]int{"deleted": deleted})
}
