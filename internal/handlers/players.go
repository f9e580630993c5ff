package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/life-engine/pkg/storage"
)

type PlayerHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewPlayerHandler(storage storage.Storage, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		storage: storage,
		logger:  logger,
	}
}

// ServeHTTP handles GET /v1/players/{name}.
func (h *PlayerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	player := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/players"), "/")
	profile, err := h.storage.LoadProfile(r.Context(), player)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPlayer) {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid player name")
			return
		}
		h.logger.Error("Failed to load profile", "player", player, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, profile)
}
