package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation statuses.
const (
	InvitationPending = "pending"
	InvitationSent    = "sent"
	InvitationRevoked = "revoked"
)

// Invitation is a single-recipient invite to fill out a form.
type Invitation struct {
	ID        int64      `json:"id"`
	FormID    int64      `json:"form_id"`
	Token     uuid.UUID  `json:"token"`
	Email     string     `json:"email"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}
