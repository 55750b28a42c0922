package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/ledgertools/api/internal/services/charcount"
)

// ToolsHandler holds dependencies for the text utility endpoints.
type ToolsHandler struct {
	charcountSvc *charcount.Service
	logger       *slog.Logger
}

// NewToolsHandler creates a tools handler.
func NewToolsHandler(charcountSvc *charcount.Service, logger *slog.Logger) *ToolsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolsHandler{charcountSvc: charcountSvc, logger: logger}
}

// RegisterRoutes registers the tool routes on the given mux.
func (h *ToolsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/tools/character-count", h.CharacterCount)
}

type characterCountRequest struct {
	Text string `json:"text"`
}

// CharacterCount handles POST /api/v1/tools/character-count
func (h *ToolsHandler) CharacterCount(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "failed to read request body"})
		return
	}

	var req characterCountRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid JSON body"})
		return
	}

	writeJSON(w, http.StatusOK, h.charcountSvc.Count(req.Text))
}
