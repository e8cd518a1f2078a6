// Package dyntable derives and evolves PostgreSQL tables from user-authored
// form definitions, maps submission documents into rows of those tables, and
// answers paginated queries against them. Every table and column identifier
// it emits comes from untrusted input and is therefore quote-sanitized; every
// data literal is a bound parameter.
package dyntable

import "strings"

// FieldType is the closed vocabulary of form field types.
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeNumber
	FieldTypeDateTime
)

// ParseFieldType maps a field's declared type string onto the closed
// vocabulary. Unknown and future types fold into FieldTypeText so that no
// field type can fail schema creation.
func ParseFieldType(fieldType string) FieldType {
	switch strings.ToLower(strings.TrimSpace(fieldType)) {
	case "number":
		return FieldTypeNumber
	case "datetime", "time":
		return FieldTypeDateTime
	default:
		return FieldTypeText
	}
}

// ColumnType returns the PostgreSQL column type for the field type.
func (t FieldType) ColumnType() string {
	switch t {
	case FieldTypeNumber:
		return "BIGINT"
	case FieldTypeDateTime:
		return "TIMESTAMP"
	default:
		return "VARCHAR(255)"
	}
}

// ColumnTypeFor is the one-step mapping from a declared field type string
// to a storage column type. Total over all strings.
func ColumnTypeFor(fieldType string) string {
	return ParseFieldType(fieldType).ColumnType()
}
