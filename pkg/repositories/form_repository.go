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

// FormRepository provides data access for forms.
type FormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	GetByID(ctx context.Context, id int64) (*models.Form, error)
	List(ctx context.Context) ([]*models.Form, error)
	Update(ctx context.Context, form *models.Form) error
	SetPublished(ctx context.Context, id int64, tableName, version string) error
	Delete(ctx context.Context, id int64) error
}

type formRepository struct {
	db *database.DB
}

func NewFormRepository(db *database.DB) FormRepository {
	return &formRepository{db: db}
}

var _ FormRepository = (*formRepository)(nil)

const formColumns = `id, unique_id, name, definition, COALESCE(table_name, ''), COALESCE(current_version, ''), created_at, updated_at`

func (r *formRepository) Create(ctx context.Context, form *models.Form) error {
	definition, err := json.Marshal(form.Definition)
	if err != nil {
		return fmt.Errorf("failed to marshal form definition: %w", err)
	}

	query := `
		INSERT INTO engine_forms (unique_id, name, definition)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query, form.UniqueID, form.Name, definition).
		Scan(&form.ID, &form.CreatedAt, &form.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create form: %w", err)
	}

	return nil
}

func (r *formRepository) GetByID(ctx context.Context, id int64) (*models.Form, error) {
	query := fmt.Sprintf(`SELECT %s FROM engine_forms WHERE id = $1`, formColumns)

	form, err := scanForm(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("form %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	return form, nil
}

func (r *formRepository) List(ctx context.Context) ([]*models.Form, error) {
	query := fmt.Sprintf(`SELECT %s FROM engine_forms ORDER BY created_at DESC`, formColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	defer rows.Close()

	var forms []*models.Form
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		forms = append(forms, form)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate forms: %w", err)
	}

	return forms, nil
}

func (r *formRepository) Update(ctx context.Context, form *models.Form) error {
	definition, err := json.Marshal(form.Definition)
	if err != nil {
		return fmt.Errorf("failed to marshal form definition: %w", err)
	}

	query := `
		UPDATE engine_forms
		SET name = $2, definition = $3, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err = r.db.QueryRow(ctx, query, form.ID, form.Name, definition).Scan(&form.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("form %d: %w", form.ID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to update form: %w", err)
	}

	return nil
}

func (r *formRepository) SetPublished(ctx context.Context, id int64, tableName, version string) error {
	query := `
		UPDATE engine_forms
		SET table_name = $2, current_version = $3, updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, tableName, version)
	if err != nil {
		return fmt.Errorf("failed to mark form published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("form %d: %w", id, apperrors.ErrNotFound)
	}

	return nil
}

func (r *formRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM engine_forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("form %d: %w", id, apperrors.ErrNotFound)
	}

	return nil
}

func scanForm(row pgx.Row) (*models.Form, error) {
	var form models.Form
	var definition []byte
	err := row.Scan(&form.ID, &form.UniqueID, &form.Name, &definition,
		&form.TableName, &form.CurrentVersion, &form.CreatedAt, &form.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(definition) > 0 {
		if err := json.Unmarshal(definition, &form.Definition); err != nil {
			return nil, fmt.Errorf("failed to unmarshal form definition: %w", err)
		}
	}

	return &form, nil
}
