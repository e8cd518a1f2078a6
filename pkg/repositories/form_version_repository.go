package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/formbase-inc/formbase-engine/pkg/apperrors"
	"github.com/formbase-inc/formbase-engine/pkg/database"
	"github.com/formbase-inc/formbase-engine/pkg/models"
)

// FormVersionRepository provides data access for per-publish form snapshots.
type FormVersionRepository interface {
	Create(ctx context.Context, version *models.FormVersion) error
	GetByVersion(ctx context.Context, formID int64, version string) (*models.FormVersion, error)
	ListByForm(ctx context.Context, formID int64) ([]*models.FormVersion, error)
	CountByForm(ctx context.Context, formID int64) (int, error)
}

type formVersionRepository struct {
	db *database.DB
}

func NewFormVersionRepository(db *database.DB) FormVersionRepository {
	return &formVersionRepository{db: db}
}

var _ FormVersionRepository = (*formVersionRepository)(nil)

func (r *formVersionRepository) Create(ctx context.Context, version *models.FormVersion) error {
	definition, err := json.Marshal(version.Definition)
	if err != nil {
		return fmt.Errorf("failed to marshal version definition: %w", err)
	}

	query := `
		INSERT INTO engine_form_versions (form_id, version, definition)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query, version.FormID, version.Version, definition).
		Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create form version: %w", err)
	}

	return nil
}

func (r *formVersionRepository) GetByVersion(ctx context.Context, formID int64, version string) (*models.FormVersion, error) {
	query := `
		SELECT id, form_id, version, definition, created_at
		FROM engine_form_versions
		WHERE form_id = $1 AND version = $2`

	fv, err := scanFormVersion(r.db.QueryRow(ctx, query, formID, version))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("form %d version %s: %w", formID, version, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get form version: %w", err)
	}

	return fv, nil
}

func (r *formVersionRepository) ListByForm(ctx context.Context, formID int64) ([]*models.FormVersion, error) {
	query := `
		SELECT id, form_id, version, definition, created_at
		FROM engine_form_versions
		WHERE form_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list form versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.FormVersion
	for rows.Next() {
		fv, err := scanFormVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form version: %w", err)
		}
		versions = append(versions, fv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate form versions: %w", err)
	}

	return versions, nil
}

func (r *formVersionRepository) CountByForm(ctx context.Context, formID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM engine_form_versions WHERE form_id = $1`, formID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count form versions: %w", err)
	}
	return count, nil
}

func scanFormVersion(row pgx.Row) (*models.FormVersion, error) {
	var fv models.FormVersion
	var definition []byte
	if err := row.Scan(&fv.ID, &fv.FormID, &fv.Version, &definition, &fv.CreatedAt); err != nil {
		return nil, err
	}

	if len(definition) > 0 {
		if err := json.Unmarshal(definition, &fv.Definition); err != nil {
			return nil, fmt.Errorf("failed to unmarshal version definition: %w", err)
		}
	}

	return &fv, nil
}
