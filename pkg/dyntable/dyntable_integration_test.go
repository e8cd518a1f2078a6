package dyntable

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formbase-inc/formbase-engine/pkg/models"
	"github.com/formbase-inc/formbase-engine/pkg/testhelpers"
)

// createTestForm inserts a row into engine_forms so the form_id foreign key
// on the submission table has a target.
func createTestForm(t *testing.T, testDB *testhelpers.TestDB, uniqueID string) int64 {
	t.Helper()

	var id int64
	err := testDB.DB.QueryRow(context.Background(),
		`INSERT INTO engine_forms (unique_id, name, definition) VALUES ($1, $2, '{}') RETURNING id`,
		uniqueID, "Test Form "+uniqueID).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestSubmissionTableLifecycle(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	formID := createTestForm(t, testDB, "lifecycle01")
	tableName := "lifecycle_test_submission"

	intro := NewIntrospector(testDB.DB)
	sync := NewSynchronizer(testDB.DB, intro, nil)
	ing := NewIngestor(testDB.DB, nil)
	q := NewQuerier(testDB.DB, nil)

	def := &models.FormDefinition{Components: []models.FormField{
		{Label: "Text Field", Type: "text"},
		{Label: "Count", Type: "number"},
		{Label: "Visited At", Type: "datetime"},
	}}

	require.NoError(t, sync.Synchronize(ctx, def, "public", tableName))

	columns, err := intro.ListColumns(ctx, "public", tableName)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"id", "Text Field", "Count", "Visited At",
		"submission_date", "form_version", "form_id",
	}, columns)

	// Republishing the same definition is a no-op.
	require.NoError(t, sync.Synchronize(ctx, def, "public", tableName))
	after, err := intro.ListColumns(ctx, "public", tableName)
	require.NoError(t, err)
	assert.Equal(t, columns, after)

	// A new field on a later version becomes an added column; existing
	// columns keep their positions.
	def.Components = append(def.Components, models.FormField{Label: "Notes", Type: "text"})
	require.NoError(t, sync.Synchronize(ctx, def, "public", tableName))
	after, err = intro.ListColumns(ctx, "public", tableName)
	require.NoError(t, err)
	assert.Equal(t, append(columns, "Notes"), after)

	// Submissions round-trip, including multi-value fields stored as
	// comma-joined text.
	doc := &models.FormDefinition{Components: []models.FormField{
		{Label: "Text Field", Type: "text", Value: "hello"},
		{Label: "Count", Type: "number", Value: float64(3)},
		{Label: "Visited At", Type: "datetime"},
		{Label: "Notes", Type: "text", Value: []any{"A", "B"}},
	}}
	require.NoError(t, ing.Insert(ctx, doc, "public", tableName, formID, "v1"))

	rows, total, err := q.Query(ctx, "public", tableName, models.SubmissionListParams{
		Search: map[string]string{"Text Field": "hell"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "hello", rows[0]["Text Field"])
	assert.Equal(t, int64(3), rows[0]["Count"])
	assert.Equal(t, "A,B", rows[0]["Notes"])
	assert.Equal(t, "v1", rows[0]["form_version"])
	assert.Equal(t, formID, rows[0]["form_id"])
	assert.Nil(t, rows[0]["Visited At"])
	assert.NotNil(t, rows[0]["submission_date"])
}

func TestQueryPagination(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	formID := createTestForm(t, testDB, "paging0001")
	tableName := "paging_test_submission"

	intro := NewIntrospector(testDB.DB)
	sync := NewSynchronizer(testDB.DB, intro, nil)
	ing := NewIngestor(testDB.DB, nil)
	q := NewQuerier(testDB.DB, nil)

	def := &models.FormDefinition{Components: []models.FormField{
		{Label: "Seq", Type: "number"},
	}}
	require.NoError(t, sync.Synchronize(ctx, def, "public", tableName))

	for i := 0; i < 25; i++ {
		doc := &models.FormDefinition{Components: []models.FormField{
			{Label: "Seq", Type: "number", Value: float64(i)},
		}}
		require.NoError(t, ing.Insert(ctx, doc, "public", tableName, formID, "v1"))
	}

	// Last page of 25 rows at size 10 holds the remaining 5.
	rows, total, err := q.Query(ctx, "public", tableName, models.SubmissionListParams{
		SortBy:    "Seq",
		SortOrder: "ASC",
		Page:      2,
		PageSize:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	require.Len(t, rows, 5)
	assert.Equal(t, int64(20), rows[0]["Seq"])
	assert.Equal(t, int64(24), rows[4]["Seq"])

	// Exact integer search matches one row.
	rows, total, err = q.Query(ctx, "public", tableName, models.SubmissionListParams{
		Search: map[string]string{"Seq": "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0]["Seq"])

	// Negative page clamps to the first page.
	rows, _, err = q.Query(ctx, "public", tableName, models.SubmissionListParams{
		SortBy:   "Seq",
		Page:     -3,
		PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, int64(0), rows[0]["Seq"])
}

func TestQueryDateSearch(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	formID := createTestForm(t, testDB, "datesrch01")
	tableName := "datesearch_test_submission"

	intro := NewIntrospector(testDB.DB)
	sync := NewSynchronizer(testDB.DB, intro, nil)
	ing := NewIngestor(testDB.DB, nil)
	q := NewQuerier(testDB.DB, nil)

	def := &models.FormDefinition{Components: []models.FormField{
		{Label: "Appointment", Type: "datetime"},
	}}
	require.NoError(t, sync.Synchronize(ctx, def, "public", tableName))

	for _, ts := range []string{
		"2024-04-11 08:30:00",
		"2024-04-11 17:45:00",
		"2024-04-12 09:00:00",
	} {
		doc := &models.FormDefinition{Components: []models.FormField{
			{Label: "Appointment", Type: "datetime", Value: ts},
		}}
		require.NoError(t, ing.Insert(ctx, doc, "public", tableName, formID, "v1"))
	}

	// A yyyy-MM-dd term matches every timestamp within the day.
	_, total, err := q.Query(ctx, "public", tableName, models.SubmissionListParams{
		Search: map[string]string{"Appointment": "2024-04-11"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestIntrospectorMissingTable(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	intro := NewIntrospector(testDB.DB)

	exists, err := intro.TableExists(ctx, "public", "no_such_table_submission")
	require.NoError(t, err)
	assert.False(t, exists)

	columns, err := intro.ListColumns(ctx, "public", "no_such_table_submission")
	require.NoError(t, err)
	assert.Empty(t, columns)
}

func TestSynchronizeManyForms(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	intro := NewIntrospector(testDB.DB)
	sync := NewSynchronizer(testDB.DB, intro, nil)

	// Distinct forms with overlapping labels get independent tables.
	for i := 0; i < 3; i++ {
		def := &models.FormDefinition{Components: []models.FormField{
			{Label: "Name", Type: "text"},
		}}
		tableName := fmt.Sprintf("many_forms_%d_submission", i)
		require.NoError(t, sync.Synchronize(ctx, def, "public", tableName))

		exists, err := intro.TableExists(ctx, "public", tableName)
		require.NoError(t, err)
		assert.True(t, exists)
	}
}
