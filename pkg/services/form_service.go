package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/apperrors"
	"github.com/formbase-inc/formbase-engine/pkg/database"
	"github.com/formbase-inc/formbase-engine/pkg/dyntable"
	"github.com/formbase-inc/formbase-engine/pkg/models"
	"github.com/formbase-inc/formbase-engine/pkg/repositories"
)

// FormService manages form lifecycle: CRUD plus publishing, which
// synchronizes the form's submission table with its current field list.
type FormService interface {
	Create(ctx context.Context, name string, def models.FormDefinition) (*models.Form, error)
	Get(ctx context.Context, id int64) (*models.Form, error)
	List(ctx context.Context) ([]*models.Form, error)
	Update(ctx context.Context, id int64, name string, def models.FormDefinition) (*models.Form, error)
	Delete(ctx context.Context, id int64) error
	Publish(ctx context.Context, id int64) (*models.FormVersion, error)
}

type formService struct {
	formRepo     repositories.FormRepository
	versionRepo  repositories.FormVersionRepository
	synchronizer dyntable.Synchronizer
	db           *database.DB
	schemaName   string
	logger       *zap.Logger
}

// NewFormService creates a form service. schemaName is the PostgreSQL
// schema where submission tables live.
func NewFormService(
	formRepo repositories.FormRepository,
	versionRepo repositories.FormVersionRepository,
	synchronizer dyntable.Synchronizer,
	db *database.DB,
	schemaName string,
	logger *zap.Logger,
) FormService {
	return &formService{
		formRepo:     formRepo,
		versionRepo:  versionRepo,
		synchronizer: synchronizer,
		db:           db,
		schemaName:   schemaName,
		logger:       logger,
	}
}

var _ FormService = (*formService)(nil)

func (s *formService) Create(ctx context.Context, name string, def models.FormDefinition) (*models.Form, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: form name is required", apperrors.ErrValidation)
	}

	form := &models.Form{
		UniqueID:   newFormUniqueID(),
		Name:       name,
		Definition: def,
	}
	if err := s.formRepo.Create(ctx, form); err != nil {
		return nil, err
	}

	s.logger.Info("Created form",
		zap.Int64("form_id", form.ID),
		zap.String("unique_id", form.UniqueID))
	return form, nil
}

func (s *formService) Get(ctx context.Context, id int64) (*models.Form, error) {
	return s.formRepo.GetByID(ctx, id)
}

func (s *formService) List(ctx context.Context) ([]*models.Form, error) {
	return s.formRepo.List(ctx)
}

func (s *formService) Update(ctx context.Context, id int64, name string, def models.FormDefinition) (*models.Form, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: form name is required", apperrors.ErrValidation)
	}

	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	form.Name = name
	form.Definition = def
	if err := s.formRepo.Update(ctx, form); err != nil {
		return nil, err
	}

	return form, nil
}

// Delete removes a form, its versions and invitations (cascade), and its
// submission table when one was created.
func (s *formService) Delete(ctx context.Context, id int64) error {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if form.TableName != "" {
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s",
			dyntable.QualifiedTableName(s.schemaName, form.TableName))
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("drop submission table %s: %w", form.TableName, err)
		}
	}

	if err := s.formRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Deleted form", zap.Int64("form_id", id))
	return nil
}

// Publish snapshots the form's current definition as a new version and
// synchronizes the submission table with its field list. The table name is
// fixed at first publish; later publishes only ever add columns.
func (s *formService) Publish(ctx context.Context, id int64) (*models.FormVersion, error) {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(form.Definition.Components) == 0 {
		return nil, fmt.Errorf("%w: form %d has no fields to publish", apperrors.ErrValidation, id)
	}

	tableName := form.TableName
	if tableName == "" {
		tableName = form.SubmissionTableName()
	}

	if err := s.synchronizer.Synchronize(ctx, &form.Definition, s.schemaName, tableName); err != nil {
		return nil, err
	}

	count, err := s.versionRepo.CountByForm(ctx, id)
	if err != nil {
		return nil, err
	}
	version := &models.FormVersion{
		FormID:     id,
		Version:    fmt.Sprintf("v%d", count+1),
		Definition: form.Definition,
	}
	if err := s.versionRepo.Create(ctx, version); err != nil {
		return nil, err
	}

	if err := s.formRepo.SetPublished(ctx, id, tableName, version.Version); err != nil {
		return nil, err
	}

	s.logger.Info("Published form",
		zap.Int64("form_id", id),
		zap.String("version", version.Version),
		zap.String("table", tableName))
	return version, nil
}

// newFormUniqueID returns a short random identifier used in submission
// table names.
func newFormUniqueID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
