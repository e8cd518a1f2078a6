package models

import (
	"regexp"
	"strings"
	"time"
)

// FormField is one entry from a form definition's component tree.
// In a blank definition Value is absent; in a submission document it
// carries the submitted value.
type FormField struct {
	Label     string `json:"label,omitempty"`
	FieldName string `json:"fieldName,omitempty"`
	Key       string `json:"key,omitempty"`
	Type      string `json:"type,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// FormDefinition is the user-authored document describing a form's fields.
// The same shape carries submission documents, with Value populated.
type FormDefinition struct {
	Components []FormField `json:"components"`
}

// Form is a user-authored form with its current definition.
type Form struct {
	ID             int64          `json:"id"`
	UniqueID       string         `json:"unique_id"`
	Name           string         `json:"name"`
	Definition     FormDefinition `json:"definition"`
	CurrentVersion string         `json:"current_version,omitempty"`
	TableName      string         `json:"table_name,omitempty"` // fixed at first publish
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// FormVersion is a per-publish snapshot of a form's definition.
type FormVersion struct {
	ID         int64          `json:"id"`
	FormID     int64          `json:"form_id"`
	Version    string         `json:"version"`
	Definition FormDefinition `json:"definition"`
	CreatedAt  time.Time      `json:"created_at"`
}

var tableNameUnsafe = regexp.MustCompile(`[^a-z0-9_]+`)

// SubmissionTableName derives the deterministic name of the form's
// submission table: the form name lowercased with runs of unsafe
// characters collapsed to underscores, followed by the form's unique id
// and a "_submission" suffix. The table is never renamed once created,
// so a later rename of the form does not move its submissions.
func (f *Form) SubmissionTableName() string {
	name := strings.ToLower(strings.TrimSpace(f.Name))
	name = tableNameUnsafe.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "form"
	}
	return name + "_" + f.UniqueID + "_submission"
}
