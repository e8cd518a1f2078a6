package dyntable

import (
	"context"
	"fmt"

	"github.com/formbase-inc/formbase-engine/pkg/database"
)

// Introspector reads the live shape of a submission table from the
// PostgreSQL catalog.
type Introspector interface {
	// TableExists reports whether the table is present. A missing table is
	// not an error.
	TableExists(ctx context.Context, schemaName, tableName string) (bool, error)

	// ListColumns returns the table's column names in ordinal order. A
	// missing table yields an empty slice, not an error.
	ListColumns(ctx context.Context, schemaName, tableName string) ([]string, error)

	// ExistingColumns returns the column names as a set for diffing.
	ExistingColumns(ctx context.Context, schemaName, tableName string) (map[string]struct{}, error)
}

type introspector struct {
	db *database.DB
}

// NewIntrospector creates a catalog introspector over the engine database.
func NewIntrospector(db *database.DB) Introspector {
	return &introspector{db: db}
}

var _ Introspector = (*introspector)(nil)

func (in *introspector) TableExists(ctx context.Context, schemaName, tableName string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)`

	var exists bool
	if err := in.db.QueryRow(ctx, query, schemaName, tableName).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table existence: %w", err)
	}
	return exists, nil
}

func (in *introspector) ListColumns(ctx context.Context, schemaName, tableName string) ([]string, error) {
	const query = `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`

	rows, err := in.db.Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		columns = append(columns, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	return columns, nil
}

func (in *introspector) ExistingColumns(ctx context.Context, schemaName, tableName string) (map[string]struct{}, error) {
	columns, err := in.ListColumns(ctx, schemaName, tableName)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		set[name] = struct{}{}
	}
	return set, nil
}
