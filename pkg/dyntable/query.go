package dyntable

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/formbase-inc/formbase-engine/pkg/database"
	"github.com/formbase-inc/formbase-engine/pkg/models"
)

const defaultPageSize = 20

// Querier answers paginated, filtered, sorted listing requests against a
// submission table, returning row maps plus the total matching count.
type Querier interface {
	Query(ctx context.Context, schemaName, tableName string, params models.SubmissionListParams) ([]map[string]any, int64, error)
}

type querier struct {
	db     *database.DB
	logger *zap.Logger
}

// NewQuerier creates a submission querier. If logger is nil, a no-op
// logger is used.
func NewQuerier(db *database.DB, logger *zap.Logger) Querier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &querier{db: db, logger: logger}
}

var _ Querier = (*querier)(nil)

// searchPredicate classifies a search term's raw value and returns the
// predicate text plus its bound argument. Classification order matters:
// integers first, then yyyy-MM-dd dates, then substring — a date would
// otherwise be swallowed by the substring branch.
func searchPredicate(column, value string, argIdx int) (string, any) {
	col := quoteIdent(column)
	trimmed := strings.TrimSpace(value)

	if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		// Compare as text so integer terms also match numeric text columns.
		return fmt.Sprintf("%s::text = $%d", col, argIdx), trimmed
	}
	if _, err := time.Parse("2006-01-02", trimmed); err == nil {
		return fmt.Sprintf("DATE_TRUNC('day', %s)::date = $%d::date", col, argIdx), trimmed
	}
	return fmt.Sprintf("%s::text ILIKE $%d", col, argIdx), "%" + value + "%"
}

// buildWhere ANDs one predicate per search term. Terms are applied in
// sorted field order so the emitted SQL is deterministic.
func buildWhere(search map[string]string) (string, []any) {
	if len(search) == 0 {
		return "", nil
	}

	fields := make([]string, 0, len(search))
	for field := range search {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	conditions := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		predicate, arg := searchPredicate(field, search[field], len(args)+1)
		conditions = append(conditions, predicate)
		args = append(args, arg)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// orderByClause returns the ORDER BY fragment, or "" when no sort column
// was requested. Direction defaults to ascending unless DESC is named.
func orderByClause(sortBy, sortOrder string) string {
	if strings.TrimSpace(sortBy) == "" {
		return ""
	}
	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(sortOrder), "DESC") {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", quoteIdent(sortBy), direction)
}

func (q *querier) Query(ctx context.Context, schemaName, tableName string, params models.SubmissionListParams) ([]map[string]any, int64, error) {
	tableRef := QualifiedTableName(schemaName, tableName)
	where, args := buildWhere(params.Search)

	// Malformed pagination inputs clamp rather than error.
	page := params.Page
	if page < 0 {
		page = 0
	}
	size := params.PageSize
	if size <= 0 {
		size = defaultPageSize
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", tableRef, where)
	var total int64
	if err := q.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions in %s.%s: %w", schemaName, tableName, err)
	}

	selectArgs := append(append([]any{}, args...), size, page*size)
	selectQuery := fmt.Sprintf("SELECT * FROM %s%s%s LIMIT $%d OFFSET $%d",
		tableRef, where, orderByClause(params.SortBy, params.SortOrder),
		len(args)+1, len(args)+2)

	rows, err := q.db.Query(ctx, selectQuery, selectArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query submissions in %s.%s: %w", schemaName, tableName, err)
	}
	defer rows.Close()

	descriptions := rows.FieldDescriptions()
	results := make([]map[string]any, 0, size)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, 0, fmt.Errorf("read submission row: %w", err)
		}
		row := make(map[string]any, len(descriptions))
		for i, desc := range descriptions {
			row[desc.Name] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate submissions: %w", err)
	}

	return results, total, nil
}
