package dyntable

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/apperrors"
	"github.com/formbase-inc/formbase-engine/pkg/database"
	"github.com/formbase-inc/formbase-engine/pkg/jsonutil"
	"github.com/formbase-inc/formbase-engine/pkg/models"
)

// Ingestor maps a submitted response document into one row of the form's
// submission table. Synchronize must have run for the form's current
// version before submissions arrive.
type Ingestor interface {
	Insert(ctx context.Context, doc *models.FormDefinition, schemaName, tableName string, formID int64, formVersion string) error
}

type ingestor struct {
	db     *database.DB
	logger *zap.Logger
}

// NewIngestor creates a submission ingestor. If logger is nil, a no-op
// logger is used.
func NewIngestor(db *database.DB, logger *zap.Logger) Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ingestor{db: db, logger: logger}
}

var _ Ingestor = (*ingestor)(nil)

func (g *ingestor) Insert(ctx context.Context, doc *models.FormDefinition, schemaName, tableName string, formID int64, formVersion string) error {
	if doc == nil {
		return fmt.Errorf("%w: response document is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(schemaName) == "" {
		return fmt.Errorf("%w: schema name is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(tableName) == "" {
		return fmt.Errorf("%w: table name is required", apperrors.ErrValidation)
	}

	stmt, args, skipped := buildInsert(doc.Components, schemaName, tableName, formID, formVersion)
	if skipped > 0 {
		g.logger.Debug("Skipped incomplete fields in submission",
			zap.String("table", tableName),
			zap.Int("skipped", skipped))
	}

	if _, err := g.db.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert submission into %s.%s: %w", schemaName, tableName, err)
	}
	return nil
}

// buildInsert extracts the column→value pairs from a response document and
// synthesizes a parameterized INSERT. Name resolution runs over the full
// field list, in document order, so suffix assignment matches the schema
// pass; fields missing a name, value, or type are then dropped from the
// row rather than failing the submission. Returns the statement, its bound
// arguments, and the number of skipped fields.
func buildInsert(fields []models.FormField, schemaName, tableName string, formID int64, formVersion string) (string, []any, int) {
	names := ResolveColumnNames(fields)

	cols := make([]string, 0, len(fields)+2)
	args := make([]any, 0, len(fields)+2)
	skipped := 0
	for i, f := range fields {
		if names[i] == "" || f.Value == nil || strings.TrimSpace(f.Type) == "" {
			skipped++
			continue
		}
		cols = append(cols, quoteIdent(names[i]))
		args = append(args, jsonutil.FlattenValue(f.Value))
	}

	cols = append(cols, quoteIdent(ColumnFormID), quoteIdent(ColumnFormVersion))
	args = append(args, formID, formVersion)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QualifiedTableName(schemaName, tableName),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))
	return stmt, args, skipped
}
