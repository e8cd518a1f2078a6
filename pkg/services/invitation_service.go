package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/apperrors"
	"github.com/formbase-inc/formbase-engine/pkg/models"
	"github.com/formbase-inc/formbase-engine/pkg/repositories"
)

// Mailer delivers invitation notifications. Actual delivery is outside the
// engine; implementations may log, enqueue, or call out to a provider.
type Mailer interface {
	SendInvitation(ctx context.Context, email string, form *models.Form, token uuid.UUID) error
}

// NewLogMailer returns a Mailer that only logs the would-be delivery.
func NewLogMailer(logger *zap.Logger) Mailer {
	return &logMailer{logger: logger}
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) SendInvitation(_ context.Context, email string, form *models.Form, token uuid.UUID) error {
	m.logger.Info("Invitation notification",
		zap.String("email", email),
		zap.Int64("form_id", form.ID),
		zap.String("token", token.String()))
	return nil
}

// InvitationService manages single-recipient invites to fill out a form.
type InvitationService interface {
	Invite(ctx context.Context, formID int64, email string) (*models.Invitation, error)
	ListByForm(ctx context.Context, formID int64) ([]*models.Invitation, error)
	Revoke(ctx context.Context, token uuid.UUID) error
}

type invitationService struct {
	invitationRepo repositories.InvitationRepository
	formRepo       repositories.FormRepository
	mailer         Mailer
	logger         *zap.Logger
}

// NewInvitationService creates an invitation service.
func NewInvitationService(
	invitationRepo repositories.InvitationRepository,
	formRepo repositories.FormRepository,
	mailer Mailer,
	logger *zap.Logger,
) InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		formRepo:       formRepo,
		mailer:         mailer,
		logger:         logger,
	}
}

var _ InvitationService = (*invitationService)(nil)

func (s *invitationService) Invite(ctx context.Context, formID int64, email string) (*models.Invitation, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email address is required", apperrors.ErrValidation)
	}

	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	invitation := &models.Invitation{
		FormID: formID,
		Email:  email,
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	// A failed notification leaves the invitation pending; it can be
	// re-sent later.
	if err := s.mailer.SendInvitation(ctx, email, form, invitation.Token); err != nil {
		s.logger.Warn("Failed to send invitation notification",
			zap.Int64("invitation_id", invitation.ID),
			zap.Error(err))
		return invitation, nil
	}

	if err := s.invitationRepo.UpdateStatus(ctx, invitation.ID, models.InvitationSent); err != nil {
		return nil, err
	}
	invitation.Status = models.InvitationSent

	return invitation, nil
}

func (s *invitationService) ListByForm(ctx context.Context, formID int64) ([]*models.Invitation, error) {
	return s.invitationRepo.ListByForm(ctx, formID)
}

func (s *invitationService) Revoke(ctx context.Context, token uuid.UUID) error {
	invitation, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	return s.invitationRepo.UpdateStatus(ctx, invitation.ID, models.InvitationRevoked)
}
