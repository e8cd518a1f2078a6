package dyntable

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/formbase-inc/formbase-engine/pkg/models"
)

// System columns present on every submission table.
const (
	ColumnID             = "id"
	ColumnSubmissionDate = "submission_date"
	ColumnFormVersion    = "form_version"
	ColumnFormID         = "form_id"
)

// systemColumns are reserved and may not be claimed by user fields.
var systemColumns = map[string]struct{}{
	ColumnID:             {},
	ColumnSubmissionDate: {},
	ColumnFormVersion:    {},
	ColumnFormID:         {},
}

// ResolveColumnNames derives one storage column identifier per field,
// preserving input order. The candidate name is the field's label when
// non-blank, otherwise its fieldName. When a candidate collides with an
// earlier name in the same pass, the first free numeric suffix (_1, _2, ...)
// is appended in field-declaration order. Fields with neither label nor
// fieldName yield the empty string and do not consume a suffix.
//
// Schema synchronization and data ingestion must both go through this
// function with the field list in document order: suffix assignment depends
// on that order, and any divergence between the two passes silently writes
// values into the wrong columns.
func ResolveColumnNames(fields []models.FormField) []string {
	names := make([]string, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		candidate := strings.TrimSpace(f.Label)
		if candidate == "" {
			candidate = strings.TrimSpace(f.FieldName)
		}
		if candidate == "" {
			continue
		}
		name := candidate
		for n := 1; ; n++ {
			if _, dup := seen[name]; !dup {
				break
			}
			name = fmt.Sprintf("%s_%d", candidate, n)
		}
		seen[name] = struct{}{}
		names[i] = name
	}
	return names
}

// quoteIdent quote-escapes a derived identifier for safe embedding in DDL
// and DML text. Internal quotes are doubled, so labels with spaces, mixed
// case, or quote characters stay identifiers rather than becoming SQL.
func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// QualifiedTableName returns a quoted table reference, schema-qualified
// when schemaName is non-empty.
func QualifiedTableName(schemaName, tableName string) string {
	quoted := quoteIdent(tableName)
	if schemaName == "" {
		return quoted
	}
	return quoteIdent(schemaName) + "." + quoted
}
