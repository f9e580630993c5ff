package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/life-engine/internal/services"
)

type TalentHandler struct {
	lives  *services.LifeService
	logger *slog.Logger
}

func NewTalentHandler(lives *services.LifeService, logger *slog.Logger) *TalentHandler {
	return &TalentHandler{
		lives:  lives,
		logger: logger,
	}
}

// ServeHTTP handles GET /v1/talents?seed=&n=. A missing seed draws a new
// one, which the response reports.
func (h *TalentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	q := r.URL.Query()
	var seed int64
	if raw := q.Get("seed"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "seed must be an integer")
			return
		}
		seed = parsed
	}
	var n int
	if raw := q.Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, h.logger, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}

	menu, err := h.lives.Menu(seed, n)
	if err != nil {
		h.logger.Error("Failed to draw talents", "seed", seed, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to draw talents")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, menu)
}
