package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/models"
	"github.com/formbase-inc/formbase-engine/pkg/services"
)

// ResponsesHandler exposes submission ingestion and listing over HTTP.
type ResponsesHandler struct {
	responseSvc services.ResponseService
	logger      *zap.Logger
}

// NewResponsesHandler creates a new ResponsesHandler.
func NewResponsesHandler(responseSvc services.ResponseService, logger *zap.Logger) *ResponsesHandler {
	return &ResponsesHandler{responseSvc: responseSvc, logger: logger}
}

// RegisterRoutes registers the response routes on the given mux.
func (h *ResponsesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/forms/{fid}/responses", h.Submit)
	mux.HandleFunc("GET /api/forms/{fid}/responses", h.List)
	mux.HandleFunc("GET /api/forms/{fid}/responses/columns", h.Columns)
}

// Submit handles POST /api/forms/{fid}/responses.
func (h *ResponsesHandler) Submit(w http.ResponseWriter, r *http.Request) {
	formID, ok := ParseFormID(w, r, h.logger)
	if !ok {
		return
	}

	var doc models.FormDefinition
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.writeError(ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	if err := h.responseSvc.Submit(r.Context(), formID, &doc); err != nil {
		h.logger.Warn("Failed to store submission", zap.Int64("form_id", formID), zap.Error(err))
		h.writeError(WriteServiceError(w, err))
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// List handles GET /api/forms/{fid}/responses with pagination, sorting,
// and per-field search parameters.
func (h *ResponsesHandler) List(w http.ResponseWriter, r *http.Request) {
	formID, ok := ParseFormID(w, r, h.logger)
	if !ok {
		return
	}

	params := ParseListParams(r.URL.Query())
	page, err := h.responseSvc.List(r.Context(), formID, params)
	if err != nil {
		h.logger.Warn("Failed to list submissions", zap.Int64("form_id", formID), zap.Error(err))
		h.writeError(WriteServiceError(w, err))
		return
	}

	h.writeError(WriteJSON(w, http.StatusOK, page))
}

// Columns handles GET /api/forms/{fid}/responses/columns, returning the
// live column set of the form's submission table.
func (h *ResponsesHandler) Columns(w http.ResponseWriter, r *http.Request) {
	formID, ok := ParseFormID(w, r, h.logger)
	if !ok {
		return
	}

	columns, err := h.responseSvc.Columns(r.Context(), formID)
	if err != nil {
		h.writeError(WriteServiceError(w, err))
		return
	}
	if columns == nil {
		columns = []string{}
	}

	h.writeError(WriteJSON(w, http.StatusOK, map[string]any{"columns": columns}))
}

func (h *ResponsesHandler) writeError(err error) {
	if err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
