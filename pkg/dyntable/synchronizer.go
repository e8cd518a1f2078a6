package dyntable

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/apperrors"
	"github.com/formbase-inc/formbase-engine/pkg/database"
	"github.com/formbase-inc/formbase-engine/pkg/logging"
	"github.com/formbase-inc/formbase-engine/pkg/models"
	sqlcheck "github.com/formbase-inc/formbase-engine/pkg/sql"
)

// formsTableRef is the engine's own forms table, target of the form_id
// foreign key on every submission table.
const formsTableRef = "public.engine_forms"

// Synchronizer reconciles a form definition with its submission table:
// creates the table on first publish, adds columns for new fields on later
// publishes. Columns are never dropped, renamed, or retyped.
type Synchronizer interface {
	Synchronize(ctx context.Context, def *models.FormDefinition, schemaName, tableName string) error
}

type synchronizer struct {
	db           *database.DB
	introspector Introspector
	logger       *zap.Logger
}

// NewSynchronizer creates a schema synchronizer. If logger is nil, a no-op
// logger is used.
func NewSynchronizer(db *database.DB, introspector Introspector, logger *zap.Logger) Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &synchronizer{db: db, introspector: introspector, logger: logger}
}

var _ Synchronizer = (*synchronizer)(nil)

func (s *synchronizer) Synchronize(ctx context.Context, def *models.FormDefinition, schemaName, tableName string) error {
	if def == nil {
		return fmt.Errorf("%w: form definition is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(schemaName) == "" {
		return fmt.Errorf("%w: schema name is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(tableName) == "" {
		return fmt.Errorf("%w: table name is required", apperrors.ErrValidation)
	}
	if err := validateFields(def.Components); err != nil {
		return err
	}

	exists, err := s.introspector.TableExists(ctx, schemaName, tableName)
	if err != nil {
		return err
	}

	if !exists {
		return s.createTable(ctx, def.Components, schemaName, tableName)
	}
	return s.addMissingColumns(ctx, def.Components, schemaName, tableName)
}

// validateFields rejects field descriptors that cannot define a column:
// no label or fieldName, no type, a reserved system column name, or a
// label that trips the SQL injection detector.
func validateFields(fields []models.FormField) error {
	names := ResolveColumnNames(fields)
	for i, f := range fields {
		if names[i] == "" {
			return fmt.Errorf("%w: field %d has neither label nor fieldName", apperrors.ErrValidation, i)
		}
		if strings.TrimSpace(f.Type) == "" {
			return fmt.Errorf("%w: field %q has no type", apperrors.ErrValidation, names[i])
		}
		if _, reserved := systemColumns[names[i]]; reserved {
			return fmt.Errorf("%w: field name %q is reserved", apperrors.ErrValidation, names[i])
		}
		if result := sqlcheck.CheckLabelForInjection(names[i]); result != nil {
			return fmt.Errorf("%w: %q (fingerprint %s)", apperrors.ErrUnsafeLabel, names[i], result.Fingerprint)
		}
	}
	return nil
}

// buildCreateTable synthesizes the CREATE TABLE statement for a form's
// first publish: surrogate key, one column per resolved field, the two
// system columns, and the form foreign key.
func buildCreateTable(fields []models.FormField, schemaName, tableName string) string {
	names := ResolveColumnNames(fields)

	cols := make([]string, 0, len(fields)+4)
	cols = append(cols, quoteIdent(ColumnID)+" BIGSERIAL PRIMARY KEY")
	for i, f := range fields {
		if names[i] == "" {
			continue
		}
		cols = append(cols, quoteIdent(names[i])+" "+ColumnTypeFor(f.Type))
	}
	cols = append(cols,
		quoteIdent(ColumnSubmissionDate)+" TIMESTAMP DEFAULT CURRENT_TIMESTAMP",
		quoteIdent(ColumnFormVersion)+" VARCHAR(255)",
		quoteIdent(ColumnFormID)+" BIGINT REFERENCES "+formsTableRef+" (id)",
	)

	return fmt.Sprintf("CREATE TABLE %s (%s)",
		QualifiedTableName(schemaName, tableName), strings.Join(cols, ", "))
}

func (s *synchronizer) createTable(ctx context.Context, fields []models.FormField, schemaName, tableName string) error {
	stmt := buildCreateTable(fields, schemaName, tableName)

	s.logger.Info("Creating submission table",
		zap.String("schema", schemaName),
		zap.String("table", tableName),
		zap.String("ddl", logging.SanitizeQuery(stmt)))

	if _, err := s.db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s.%s: %w", schemaName, tableName, err)
	}
	return nil
}

// addMissingColumns diffs the form's expected columns against the live
// column set and issues one ALTER TABLE per absent column. Each statement
// is independent; there is no surrounding transaction.
func (s *synchronizer) addMissingColumns(ctx context.Context, fields []models.FormField, schemaName, tableName string) error {
	existing, err := s.introspector.ExistingColumns(ctx, schemaName, tableName)
	if err != nil {
		return err
	}

	names := ResolveColumnNames(fields)
	tableRef := QualifiedTableName(schemaName, tableName)
	for i, f := range fields {
		if names[i] == "" {
			continue
		}
		if _, ok := existing[names[i]]; ok {
			continue
		}

		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			tableRef, quoteIdent(names[i]), ColumnTypeFor(f.Type))
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("add column %q to %s.%s: %w", names[i], schemaName, tableName, err)
		}

		s.logger.Info("Added column to submission table",
			zap.String("schema", schemaName),
			zap.String("table", tableName),
			zap.String("column", names[i]),
			zap.String("type", ColumnTypeFor(f.Type)))
	}

	return nil
}
