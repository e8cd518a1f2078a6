package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/formbase-inc/formbase-engine/pkg/apperrors"
	"github.com/formbase-inc/formbase-engine/pkg/database"
	"github.com/formbase-inc/formbase-engine/pkg/models"
)

// InvitationRepository provides data access for form invitations.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	GetByToken(ctx context.Context, token uuid.UUID) (*models.Invitation, error)
	ListByForm(ctx context.Context, formID int64) ([]*models.Invitation, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type invitationRepository struct {
	db *database.DB
}

func NewInvitationRepository(db *database.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

var _ InvitationRepository = (*invitationRepository)(nil)

func (r *invitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	if invitation.Token == uuid.Nil {
		invitation.Token = uuid.New()
	}
	if invitation.Status == "" {
		invitation.Status = models.InvitationPending
	}

	query := `
		INSERT INTO engine_invitations (form_id, token, email, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		invitation.FormID, invitation.Token, invitation.Email, invitation.Status).
		Scan(&invitation.ID, &invitation.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token uuid.UUID) (*models.Invitation, error) {
	query := `
		SELECT id, form_id, token, email, status, created_at, sent_at
		FROM engine_invitations
		WHERE token = $1`

	var inv models.Invitation
	err := r.db.QueryRow(ctx, query, token).
		Scan(&inv.ID, &inv.FormID, &inv.Token, &inv.Email, &inv.Status, &inv.CreatedAt, &inv.SentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invitation %s: %w", token, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return &inv, nil
}

func (r *invitationRepository) ListByForm(ctx context.Context, formID int64) ([]*models.Invitation, error) {
	query := `
		SELECT id, form_id, token, email, status, created_at, sent_at
		FROM engine_invitations
		WHERE form_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.FormID, &inv.Token, &inv.Email, &inv.Status, &inv.CreatedAt, &inv.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, &inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}

	return invitations, nil
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE engine_invitations
		SET status = $2, sent_at = CASE WHEN $2 = 'sent' THEN now() ELSE sent_at END
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update invitation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invitation %d: %w", id, apperrors.ErrNotFound)
	}

	return nil
}
