package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"redirect-analytics/internal/render"
)

// Response helpers for HTML pages and the JSON health endpoints

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// respondHTML sends a complete HTML document
func respondHTML(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = io.WriteString(w, body)
}

// respondPage renders an admin page. The page is rendered into a buffer first
// so a template error still produces a clean 500.
func respondPage(w http.ResponseWriter, logger *slog.Logger, statusCode int, name string, data render.PageData) {
	var buf bytes.Buffer
	if err := render.Page(&buf, name, data); err != nil {
		logger.Error("Failed to render page", "page", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondHTML(w, statusCode, buf.String())
}

// respondDefaultContent sends the page served for unknown aliases and paths
func respondDefaultContent(w http.ResponseWriter, logger *slog.Logger) {
	var buf bytes.Buffer
	if err := render.DefaultContent(&buf); err != nil {
		logger.Error("Failed to render default content", "error", err)
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	respondHTML(w, http.StatusNotFound, buf.String())
}
