package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/models"
	"github.com/formbase-inc/formbase-engine/pkg/services"
)

// InvitationsHandler exposes invitation management over HTTP.
type InvitationsHandler struct {
	invitationSvc services.InvitationService
	logger        *zap.Logger
}

// NewInvitationsHandler creates a new InvitationsHandler.
func NewInvitationsHandler(invitationSvc services.InvitationService, logger *zap.Logger) *InvitationsHandler {
	return &InvitationsHandler{invitationSvc: invitationSvc, logger: logger}
}

// RegisterRoutes registers the invitation routes on the given mux.
func (h *InvitationsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/forms/{fid}/invitations", h.Invite)
	mux.HandleFunc("GET /api/forms/{fid}/invitations", h.List)
	mux.HandleFunc("DELETE /api/invitations/{token}", h.Revoke)
}

// Invite handles POST /api/forms/{fid}/invitations.
func (h *InvitationsHandler) Invite(w http.ResponseWriter, r *http.Request) {
	formID, ok := ParseFormID(w, r, h.logger)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"))
		return
	}

	invitation, err := h.invitationSvc.Invite(r.Context(), formID, req.Email)
	if err != nil {
		h.writeError(WriteServiceError(w, err))
		return
	}

	h.writeError(WriteJSON(w, http.StatusCreated, invitation))
}

// List handles GET /api/forms/{fid}/invitations.
func (h *InvitationsHandler) List(w http.ResponseWriter, r *http.Request) {
	formID, ok := ParseFormID(w, r, h.logger)
	if !ok {
		return
	}

	invitations, err := h.invitationSvc.ListByForm(r.Context(), formID)
	if err != nil {
		h.writeError(WriteServiceError(w, err))
		return
	}
	if invitations == nil {
		invitations = []*models.Invitation{}
	}

	h.writeError(WriteJSON(w, http.StatusOK, invitations))
}

// Revoke handles DELETE /api/invitations/{token}.
func (h *InvitationsHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	token, err := uuid.Parse(r.PathValue("token"))
	if err != nil {
		h.writeError(ErrorResponse(w, http.StatusBadRequest, "invalid_token", "Invalid invitation token"))
		return
	}

	if err := h.invitationSvc.Revoke(r.Context(), token); err != nil {
		h.writeError(WriteServiceError(w, err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *InvitationsHandler) writeError(err error) {
	if err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
