package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/life-engine/pkg/grade"
	"golang.org/x/text/language"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// requestLanguage picks the summary language from ?lang=, then the
// Accept-Language header, then fallback.
func requestLanguage(r *http.Request, fallback string) language.Tag {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return grade.ParseTag(lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return grade.ParseTag(accept)
	}
	return grade.ParseTag(fallback)
}
