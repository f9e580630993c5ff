package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/life-engine/internal/logger"
	"github.com/jwebster45206/life-engine/internal/services"
	"github.com/jwebster45206/life-engine/pkg/storage"
)

type LifeHandler struct {
	storage     storage.Storage
	lives       *services.LifeService
	defaultLang string
	logger      *slog.Logger
}

func NewLifeHandler(storage storage.Storage, lives *services.LifeService, defaultLang string, logger *slog.Logger) *LifeHandler {
	return &LifeHandler{
		storage:     storage,
		lives:       lives,
		defaultLang: defaultLang,
		logger:      logger,
	}
}

// ServeHTTP handles HTTP requests for lives
// Routes:
// POST /v1/lives        - Simulate and archive a life
// GET /v1/lives/{id}    - Read an archived life
// DELETE /v1/lives/{id} - Delete an archived life
func (h *LifeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/lives"), "/")
	var lifeID uuid.UUID
	if path != "" {
		id, err := uuid.Parse(path)
		if err != nil {
			h.logger.Warn("Invalid life ID", "id", path, "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid life ID format")
			return
		}
		lifeID = id
	}

	switch r.Method {
	case http.MethodPost:
		if lifeID != uuid.Nil {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "POST is only supported on /v1/lives")
			return
		}
		h.handleCreate(w, r)
	case http.MethodGet:
		if lifeID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Life ID is required for GET requests")
			return
		}
		h.handleRead(w, r, lifeID)
	case http.MethodDelete:
		if lifeID == uuid.Nil {
			writeError(w, h.logger, http.StatusBadRequest, "Life ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, lifeID)
	default:
		h.logger.Warn("Method not allowed for lives endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *LifeHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req services.PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	rec, err := h.lives.Play(r.Context(), req)
	if err != nil {
		if services.IsClientError(err) {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		logger.WithError(h.logger, err).Error("Failed to simulate life", "seed", req.Seed, "player", req.Player)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to simulate life")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, services.Render(rec, requestLanguage(r, h.defaultLang)))
}

func (h *LifeHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	rec, err := h.storage.LoadLife(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load life", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load life")
		return
	}
	if rec == nil {
		writeError(w, h.logger, http.StatusNotFound, "Life not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, services.Render(rec, requestLanguage(r, h.defaultLang)))
}

func (h *LifeHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteLife(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete life", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete life")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
