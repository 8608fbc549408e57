package sheetmanager

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	srvconfig "github.com/gridbase/sheetsrv/internal/sheetsrv/config"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

func TestMain(m *testing.M) {
	if err := srvconfig.LoadConfig(""); err != nil {
		os.Exit(1)
	}
	if err := db.Init(context.Background()); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// newTestContext returns a connection-scoped context under a fresh
// tenant, plus a cleanup func that removes the tenant and its subtree.
func newTestContext(t *testing.T) (context.Context, func()) {
	t.Helper()
	ctx := log.Logger.WithContext(context.Background())
	ctx, err := db.ConnCtx(ctx)
	require.NoError(t, err)

	tenantID := sheetcommon.NewTenantId()
	require.NotEmpty(t, tenantID)
	require.NoError(t, db.DB(ctx).CreateTenant(ctx, tenantID))
	ctx = sheetcommon.SetTenantIdInContext(ctx, tenantID)

	return ctx, func() {
		db.DB(ctx).DeleteTenant(ctx, tenantID)
		db.DB(ctx).Close(ctx)
	}
}

// newTestTable builds schema -> table and returns the table.
func newTestTable(t *testing.T, ctx context.Context, schemaName, tableName string) *models.Table {
	t.Helper()
	schema, err := CreateSchema(ctx, &SchemaRequest{Name: schemaName})
	require.NoError(t, err)
	table, err := CreateTable(ctx, schema.ID, &TableRequest{Name: tableName})
	require.NoError(t, err)
	return table
}

func newTestField(t *testing.T, ctx context.Context, tableID uuid.UUID, name string, fieldType models.FieldType) *models.Field {
	t.Helper()
	field, err := CreateField(ctx, tableID, &FieldRequest{Name: name, Type: string(fieldType)})
	require.NoError(t, err)
	return field
}

func TestCreateTableDefaultsSlug(t *testing.T) {
	ctx, cleanup := newTestContext(t)
	defer cleanup()

	schema, err := CreateSchema(ctx, &SchemaRequest{Name: "Workbook"})
	require.NoError(t, err)

	table, err := CreateTable(ctx, schema.ID, &TableRequest{Name: "Café Ação!!!"})
	require.NoError(t, err)
	assert.Equal(t, "cafe_acao", table.Slug)

	// supplied slugs are normalized the same way
	table2, err := CreateTable(ctx, schema.ID, &TableRequest{Name: "Other", Slug: "My Slug"})
	require.NoError(t, err)
	assert.Equal(t, "my_slug", table2.Slug)

	// duplicate slug under the same schema conflicts
	_, err = CreateTable(ctx, schema.ID, &TableRequest{Name: "Third", Slug: "CAFE_ACAO"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateFieldRejectsUnknownType(t *testing.T) {
	ctx, cleanup := newTestContext(t)
	defer cleanup()

	table := newTestTable(t, ctx, "Types", "Grid")

	_, err := CreateField(ctx, table.ID, &FieldRequest{Name: "Bad", Type: "decimal"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidType)

	field, err := CreateField(ctx, table.ID, &FieldRequest{
		Name: "Status",
		Type: "select",
		Config: map[string]any{
			"options": []any{"open", "closed"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, table.SchemaID, field.SchemaID)

	// options must be strings
	_, err = CreateField(ctx, table.ID, &FieldRequest{
		Name: "Broken",
		Type: "select",
		Config: map[string]any{
			"options": []any{1, 2},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestUpsertCellCrossTableRejected(t *testing.T) {
	ctx, cleanup := newTestContext(t)
	defer cleanup()

	tableA := newTestTable(t, ctx, "Cross", "A")
	tableB, err := CreateTable(ctx, tableA.SchemaID, &TableRequest{Name: "B"})
	require.NoError(t, err)

	fieldA := newTestField(t, ctx, tableA.ID, "Name", models.FieldTypeText)
	recordB, err := CreateRecord(ctx, tableB.ID, &RecordRequest{})
	require.NoError(t, err)

	_, err = UpsertCell(ctx, recordB.ID, fieldA.ID, "value")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectionRoundTrip(t *testing.T) {
	ctx, cleanup := newTestContext(t)
	defer cleanup()

	table := newTestTable(t, ctx, "RoundTrip", "Data")
	amount := newTestField(t, ctx, table.ID, "Amount", models.FieldTypeNumber)
	active := newTestField(t, ctx, table.ID, "Active", models.FieldTypeBool)
	meta := newTestField(t, ctx, table.ID, "Meta", models.FieldTypeJSON)
	note := newTestField(t, ctx, table.ID, "Note", models.FieldTypeText)

	record, err := CreateRecord(ctx, table.ID, &RecordRequest{})
	require.NoError(t, err)

	_, err = UpsertCell(ctx, record.ID, amount.ID, float64(42))
	require.NoError(t, err)
	_, err = UpsertCell(ctx, record.ID, active.ID, "sim")
	require.NoError(t, err)
	_, err = UpsertCell(ctx, record.ID, meta.ID, map[string]any{"k": "v"})
	require.NoError(t, err)
	// note is never written; it must be absent from the projection

	page, err := ListRecords(ctx, table.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Rows, 1)

	row := page.Rows[0]
	assert.Equal(t, record.ID, row.ID)
	assert.Equal(t, float64(42), row.Cells["amount"])
	assert.Equal(t, true, row.Cells["active"])
	assert.JSONEq(t, `{"k":"v"}`, string(row.Cells["meta"].(jsoniter.RawMessage)))
	_, present := row.Cells[note.Slug]
	assert.False(t, present)
}

func TestProjectionClearedCellIsNull(t *testing.T) {
	ctx, cleanup := newTestContext(t)
	defer cleanup()

	table := newTestTable(t, ctx, "Clearing", "Data")
	note := newTestField(t, ctx, table.ID, "Note", models.FieldTypeText)
	record, err := CreateRecord(ctx, table.ID, &RecordRequest{})
	require.NoError(t, err)

	_, err = UpsertCell(ctx, record.ID, note.ID, "something")
	require.NoError(t, err)
	_, err = UpsertCell(ctx, record.ID, note.ID, "")
	require.NoError(t, err)

	page, err := ListRecords(ctx, table.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)

	value, present := page.Rows[0].Cells["note"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestListRecordsPaginationTotals(t *testing.T) {
	ctx, cleanup := newTestContext(t)
	defer cleanup()

	table := newTestTable(t, ctx, "Pages", "Data")
	const n = 5
	for i := 0; i < n; i++ {
		_, err := CreateRecord(ctx, table.ID, &RecordRequest{})
		require.NoError(t, err)
	}

	seen := 0
	for page := 1; ; page++ {
		result, err := ListRecords(ctx, table.ID, page, 2)
		require.NoError(t, err)
		assert.Equal(t, n, result.Total)
		if len(result.Rows) == 0 {
			break
		}
		seen += len(result.Rows)
	}
	assert.Equal(t, n, seen)

	// a foreign table id is NotFound, not an empty page
	_, err := ListRecords(ctx, uuid.New(), 1, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBatchUpdateCellsPartialFailure(t *testing.T) {
	ctx, cleanup := newTestContext(t)
	defer cleanup()

	table := newTestTable(t, ctx, "Batch", "Data")
	amount := newTestField(t, ctx, table.ID, "Amount", models.FieldTypeNumber)
	record, err := CreateRecord(ctx, table.ID, &RecordRequest{})
	require.NoError(t, err)

	updates := []CellUpdate{
		{RecordID: record.ID, FieldID: amount.ID, Value: float64(1)},
		{RecordID: record.ID, FieldID: uuid.New(), Value: float64(2)},
		{RecordID: record.ID, FieldID: amount.ID, Value: float64(3)},
	}
	results, err := BatchUpdateCells(ctx, updates)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Ok)
	assert.False(t, results[1].Ok)
	assert.Equal(t, "field not found", results[1].Message)
	assert.True(t, results[2].Ok)

	// the valid writes landed; last write wins
	page, perr := ListRecords(ctx, table.ID, 1, 10)
	require.NoError(t, perr)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, float64(3), page.Rows[0].Cells["amount"])
}

func TestBatchUpdateCellsBounds(t *testing.T) {
	ctx, cleanup := newTestContext(t)
	defer cleanup()

	_, err := BatchUpdateCells(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	oversized := make([]CellUpdate, MaxBatchSize+1)
	for i := range oversized {
		oversized[i] = CellUpdate{RecordID: uuid.New(), FieldID: uuid.New()}
	}
	_, err = BatchUpdateCells(ctx, oversized)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBatchValidationErrorsAreItemized(t *testing.T) {
	ctx, cleanup := newTestContext(t)
	defer cleanup()

	table := newTestTable(t, ctx, "Itemized", "Data")
	amount := newTestField(t, ctx, table.ID, "Amount", models.FieldTypeNumber)
	record, err := CreateRecord(ctx, table.ID, &RecordRequest{})
	require.NoError(t, err)

	results, err := BatchUpdateCells(ctx, []CellUpdate{
		{RecordID: record.ID, FieldID: amount.ID, Value: "not a number"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Ok)
	assert.NotEmpty(t, results[0].Message)
}
