package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/apperrors"
	"github.com/formbase-inc/formbase-engine/pkg/dyntable"
	"github.com/formbase-inc/formbase-engine/pkg/models"
	"github.com/formbase-inc/formbase-engine/pkg/repositories"
)

// searchAliases maps caller-facing filter names onto the underlying system
// columns of every submission table.
var searchAliases = map[string]string{
	"responseDate": dyntable.ColumnSubmissionDate,
	"responseId":   dyntable.ColumnID,
}

// ResponseService accepts form submissions and serves paginated listings
// of them.
type ResponseService interface {
	Submit(ctx context.Context, formID int64, doc *models.FormDefinition) error
	List(ctx context.Context, formID int64, params models.SubmissionListParams) (*models.SubmissionPage, error)
	Columns(ctx context.Context, formID int64) ([]string, error)
}

type responseService struct {
	formRepo     repositories.FormRepository
	ingestor     dyntable.Ingestor
	querier      dyntable.Querier
	introspector dyntable.Introspector
	schemaName   string
	logger       *zap.Logger
}

// NewResponseService creates a response service.
func NewResponseService(
	formRepo repositories.FormRepository,
	ingestor dyntable.Ingestor,
	querier dyntable.Querier,
	introspector dyntable.Introspector,
	schemaName string,
	logger *zap.Logger,
) ResponseService {
	return &responseService{
		formRepo:     formRepo,
		ingestor:     ingestor,
		querier:      querier,
		introspector: introspector,
		schemaName:   schemaName,
		logger:       logger,
	}
}

var _ ResponseService = (*responseService)(nil)

func (s *responseService) Submit(ctx context.Context, formID int64, doc *models.FormDefinition) error {
	form, err := s.publishedForm(ctx, formID)
	if err != nil {
		return err
	}

	if err := s.ingestor.Insert(ctx, doc, s.schemaName, form.TableName, form.ID, form.CurrentVersion); err != nil {
		return err
	}

	s.logger.Info("Stored submission",
		zap.Int64("form_id", formID),
		zap.String("form_version", form.CurrentVersion))
	return nil
}

func (s *responseService) List(ctx context.Context, formID int64, params models.SubmissionListParams) (*models.SubmissionPage, error) {
	form, err := s.publishedForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	if len(params.Search) > 0 {
		mapped := make(map[string]string, len(params.Search))
		for field, value := range params.Search {
			if alias, ok := searchAliases[field]; ok {
				field = alias
			}
			mapped[field] = value
		}
		params.Search = mapped
	}
	if alias, ok := searchAliases[params.SortBy]; ok {
		params.SortBy = alias
	}

	rows, total, err := s.querier.Query(ctx, s.schemaName, form.TableName, params)
	if err != nil {
		return nil, err
	}

	size := params.PageSize
	if size <= 0 {
		size = len(rows)
		if size == 0 {
			size = 1
		}
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	page := params.Page
	if page < 0 {
		page = 0
	}

	return &models.SubmissionPage{
		Content:       rows,
		TotalElements: total,
		TotalPages:    totalPages,
		Page:          page,
		Size:          size,
	}, nil
}

func (s *responseService) Columns(ctx context.Context, formID int64) ([]string, error) {
	form, err := s.publishedForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	return s.introspector.ListColumns(ctx, s.schemaName, form.TableName)
}

// publishedForm loads a form and verifies its submission table exists.
func (s *responseService) publishedForm(ctx context.Context, formID int64) (*models.Form, error) {
	form, err := s.formRepo.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if form.TableName == "" {
		return nil, fmt.Errorf("%w: form %d has not been published", apperrors.ErrValidation, formID)
	}
	return form, nil
}
