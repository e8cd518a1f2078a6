package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/models"
	"github.com/formbase-inc/formbase-engine/pkg/services"
)

// FormsHandler exposes form CRUD and publishing over HTTP.
type FormsHandler struct {
	formSvc services.FormService
	logger  *zap.Logger
}

// NewFormsHandler creates a new FormsHandler.
func NewFormsHandler(formSvc services.FormService, logger *zap.Logger) *FormsHandler {
	return &FormsHandler{formSvc: formSvc, logger: logger}
}

// RegisterRoutes registers the form routes on the given mux.
func (h *FormsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/forms", h.Create)
	mux.HandleFunc("GET /api/forms", h.List)
	mux.HandleFunc("GET /api/forms/{fid}", h.Get)
	mux.HandleFunc("PUT /api/forms/{fid}", h.Update)
	mux.HandleFunc("DELETE /api/forms/{fid}", h.Delete)
	mux.HandleFunc("POST /api/forms/{fid}/publish", h.Publish)
}

type formRequest struct {
	Name       string                `json:"name"`
	Definition models.FormDefinition `json:"definition"`
}

// Create handles POST /api/forms.
func (h *FormsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	form, err := h.formSvc.Create(r.Context(), req.Name, req.Definition)
	if err != nil {
		h.logger.Warn("Failed to create form", zap.Error(err))
		h.writeError(w, WriteServiceError(w, err))
		return
	}

	h.writeError(w, WriteJSON(w, http.StatusCreated, form))
}

// List handles GET /api/forms.
func (h *FormsHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.formSvc.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list forms", zap.Error(err))
		h.writeError(w, WriteServiceError(w, err))
		return
	}
	if forms == nil {
		forms = []*models.Form{}
	}

	h.writeError(w, WriteJSON(w, http.StatusOK, forms))
}

// Get handles GET /api/forms/{fid}.
func (h *FormsHandler) Get(w http.ResponseWriter, r *http.Request) {
	formID, ok := ParseFormID(w, r, h.logger)
	if !ok {
		return
	}

	form, err := h.formSvc.Get(r.Context(), formID)
	if err != nil {
		h.writeError(w, WriteServiceError(w, err))
		return
	}

	h.writeError(w, WriteJSON(w, http.StatusOK, form))
}

// Update handles PUT /api/forms/{fid}.
func (h *FormsHandler) Update(w http.ResponseWriter, r *http.Request) {
	formID, ok := ParseFormID(w, r, h.logger)
	if !ok {
		return
	}

	var req formRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	form, err := h.formSvc.Update(r.Context(), formID, req.Name, req.Definition)
	if err != nil {
		h.writeError(w, WriteServiceError(w, err))
		return
	}

	h.writeError(w, WriteJSON(w, http.StatusOK, form))
}

// Delete handles DELETE /api/forms/{fid}.
func (h *FormsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	formID, ok := ParseFormID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.formSvc.Delete(r.Context(), formID); err != nil {
		h.writeError(w, WriteServiceError(w, err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Publish handles POST /api/forms/{fid}/publish.
func (h *FormsHandler) Publish(w http.ResponseWriter, r *http.Request) {
	formID, ok := ParseFormID(w, r, h.logger)
	if !ok {
		return
	}

	version, err := h.formSvc.Publish(r.Context(), formID)
	if err != nil {
		h.logger.Warn("Failed to publish form", zap.Int64("form_id", formID), zap.Error(err))
		h.writeError(w, WriteServiceError(w, err))
		return
	}

	h.writeError(w, WriteJSON(w, http.StatusOK, version))
}

func (h *FormsHandler) writeError(w http.ResponseWriter, err error) {
	if err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
