package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	srvconfig "github.com/gridbase/sheetsrv/internal/sheetsrv/config"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dberror"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

func TestMain(m *testing.M) {
	if err := srvconfig.LoadConfig(""); err != nil {
		os.Exit(1)
	}
	if err := Init(context.Background()); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newDb(c ...context.Context) context.Context {
	var parent context.Context
	if len(c) > 0 {
		parent = c[0]
	} else {
		parent = context.Background()
	}
	ctx, err := ConnCtx(parent)
	if err != nil {
		panic(err)
	}
	return ctx
}

// newTenant provisions a fresh tenant and returns a context scoped to
// it. The caller owns cleanup through the returned tenant id.
func newTenant(t *testing.T, ctx context.Context) (context.Context, sheetcommon.TenantId) {
	t.Helper()
	tenantID := sheetcommon.NewTenantId()
	require.NotEmpty(t, tenantID)
	require.NoError(t, DB(ctx).CreateTenant(ctx, tenantID))
	return sheetcommon.SetTenantIdInContext(ctx, tenantID), tenantID
}

func emptyConfig() pgtype.JSONB {
	return pgtype.JSONB{Bytes: []byte(`{}`), Status: pgtype.Present}
}

func TestCreateTenant(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	tenantID := sheetcommon.TenantId("TTEST1")

	err := DB(ctx).CreateTenant(ctx, tenantID)
	assert.NoError(t, err)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	err = DB(ctx).CreateTenant(ctx, tenantID)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	tenant, err := DB(ctx).GetTenant(ctx, tenantID)
	assert.NoError(t, err)
	assert.Equal(t, tenantID, tenant.TenantID)
}

func TestCreateSchemaCaseInsensitiveConflict(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx, tenantID := newTenant(t, ctx)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	schema := &models.Schema{Name: "Sales Pipeline"}
	require.NoError(t, DB(ctx).CreateSchema(ctx, schema))
	assert.NotEqual(t, uuid.Nil, schema.ID)

	dup := &models.Schema{Name: "SALES PIPELINE"}
	err := DB(ctx).CreateSchema(ctx, dup)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	schemas, err := DB(ctx).ListSchemas(ctx)
	assert.NoError(t, err)
	assert.Len(t, schemas, 1)
}

func TestCreateTableSlugConflict(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx, tenantID := newTenant(t, ctx)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	schema := &models.Schema{Name: "CRM"}
	require.NoError(t, DB(ctx).CreateSchema(ctx, schema))

	table := &models.Table{SchemaID: schema.ID, Name: "Contacts", Slug: "contacts"}
	require.NoError(t, DB(ctx).CreateTable(ctx, table))

	dup := &models.Table{SchemaID: schema.ID, Name: "Other", Slug: "CONTACTS"}
	err := DB(ctx).CreateTable(ctx, dup)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	// unknown schema is indistinguishable from a foreign one
	orphan := &models.Table{SchemaID: uuid.New(), Name: "Orphan", Slug: "orphan"}
	err = DB(ctx).CreateTable(ctx, orphan)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestCreateFieldPropagatesSchemaID(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx, tenantID := newTenant(t, ctx)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	schema := &models.Schema{Name: "Inventory"}
	require.NoError(t, DB(ctx).CreateSchema(ctx, schema))
	table := &models.Table{SchemaID: schema.ID, Name: "Items", Slug: "items"}
	require.NoError(t, DB(ctx).CreateTable(ctx, table))

	field := &models.Field{
		TableID: table.ID,
		Name:    "Unit Price",
		Slug:    "unit_price",
		Type:    models.FieldTypeNumber,
		Config:  emptyConfig(),
	}
	require.NoError(t, DB(ctx).CreateField(ctx, field))
	assert.Equal(t, table.SchemaID, field.SchemaID)

	dup := &models.Field{
		TableID: table.ID,
		Name:    "Another",
		Slug:    "UNIT_PRICE",
		Type:    models.FieldTypeText,
		Config:  emptyConfig(),
	}
	err := DB(ctx).CreateField(ctx, dup)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	fields, err := DB(ctx).ListFields(ctx, table.ID)
	assert.NoError(t, err)
	assert.Len(t, fields, 1)
}

func TestUpdateAndDeleteField(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx, tenantID := newTenant(t, ctx)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	schema := &models.Schema{Name: "Projects"}
	require.NoError(t, DB(ctx).CreateSchema(ctx, schema))
	table := &models.Table{SchemaID: schema.ID, Name: "Tasks", Slug: "tasks"}
	require.NoError(t, DB(ctx).CreateTable(ctx, table))

	status := &models.Field{
		TableID: table.ID, Name: "Status", Slug: "status",
		Type: models.FieldTypeSelect, Config: emptyConfig(),
	}
	require.NoError(t, DB(ctx).CreateField(ctx, status))
	due := &models.Field{
		TableID: table.ID, Name: "Due", Slug: "due",
		Type: models.FieldTypeDate, Config: emptyConfig(),
	}
	require.NoError(t, DB(ctx).CreateField(ctx, due))

	// renaming onto another field's slug conflicts
	due.Slug = "STATUS"
	err := DB(ctx).UpdateField(ctx, due)
	assert.Error(t, err)
	assert.ErrorIs(t, err, dberror.ErrAlreadyExists)

	// keeping its own slug does not
	due.Slug = "due"
	due.Name = "Due Date"
	assert.NoError(t, DB(ctx).UpdateField(ctx, due))

	got, err := DB(ctx).GetField(ctx, due.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Due Date", got.Name)

	assert.NoError(t, DB(ctx).DeleteField(ctx, table.ID, due.ID))
	_, err = DB(ctx).GetField(ctx, due.ID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	err = DB(ctx).DeleteField(ctx, table.ID, due.ID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}

func TestUpsertCellAtMostOne(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx, tenantID := newTenant(t, ctx)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	schema := &models.Schema{Name: "Finance"}
	require.NoError(t, DB(ctx).CreateSchema(ctx, schema))
	table := &models.Table{SchemaID: schema.ID, Name: "Deals", Slug: "deals"}
	require.NoError(t, DB(ctx).CreateTable(ctx, table))
	amount := &models.Field{
		TableID: table.ID, Name: "Amount", Slug: "amount",
		Type: models.FieldTypeNumber, Config: emptyConfig(),
	}
	require.NoError(t, DB(ctx).CreateField(ctx, amount))
	record := &models.Record{TableID: table.ID}
	require.NoError(t, DB(ctx).CreateRecord(ctx, record))

	firstUpdatedAt := record.UpdatedAt

	write := func(n float64) *models.Cell {
		cell := &models.Cell{
			SchemaID: table.SchemaID,
			TableID:  table.ID,
			RecordID: record.ID,
			FieldID:  amount.ID,
			Value:    models.CellValue{Number: &n},
		}
		require.NoError(t, DB(ctx).UpsertCell(ctx, cell))
		return cell
	}
	write(100)
	write(250)

	count, err := DB(ctx).CountCellsForPair(ctx, record.ID, amount.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	cells, err := DB(ctx).ListCellsForRecords(ctx, table.ID, []uuid.UUID{record.ID})
	assert.NoError(t, err)
	require.Len(t, cells, 1)
	require.NotNil(t, cells[0].Value.Number)
	assert.Equal(t, float64(250), *cells[0].Value.Number)

	got, err := DB(ctx).GetRecord(ctx, record.ID)
	assert.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(firstUpdatedAt) || got.UpdatedAt.Equal(firstUpdatedAt))

	// clearing keeps the row with all slots null
	cleared := &models.Cell{
		SchemaID: table.SchemaID,
		TableID:  table.ID,
		RecordID: record.ID,
		FieldID:  amount.ID,
	}
	require.NoError(t, DB(ctx).UpsertCell(ctx, cleared))
	cells, err = DB(ctx).ListCellsForRecords(ctx, table.ID, []uuid.UUID{record.ID})
	assert.NoError(t, err)
	require.Len(t, cells, 1)
	assert.True(t, cells[0].Value.IsEmpty())
}

func TestListRecordsPagination(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx, tenantID := newTenant(t, ctx)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	schema := &models.Schema{Name: "Paging"}
	require.NoError(t, DB(ctx).CreateSchema(ctx, schema))
	table := &models.Table{SchemaID: schema.ID, Name: "Rows", Slug: "rows"}
	require.NoError(t, DB(ctx).CreateTable(ctx, table))

	const n = 7
	for i := 0; i < n; i++ {
		record := &models.Record{TableID: table.ID}
		require.NoError(t, DB(ctx).CreateRecord(ctx, record))
	}

	total, err := DB(ctx).CountRecords(ctx, table.ID)
	assert.NoError(t, err)
	assert.Equal(t, n, total)

	seen := 0
	for offset := 0; ; offset += 3 {
		page, err := DB(ctx).ListRecords(ctx, table.ID, 3, offset)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		seen += len(page)
	}
	assert.Equal(t, total, seen)
}

func TestTenantIsolation(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctxA, tenantA := newTenant(t, ctx)
	defer DB(ctx).DeleteTenant(ctx, tenantA)
	ctxB, tenantB := newTenant(t, ctx)
	defer DB(ctx).DeleteTenant(ctx, tenantB)

	schema := &models.Schema{Name: "Private"}
	require.NoError(t, DB(ctxA).CreateSchema(ctxA, schema))
	table := &models.Table{SchemaID: schema.ID, Name: "Secrets", Slug: "secrets"}
	require.NoError(t, DB(ctxA).CreateTable(ctxA, table))
	record := &models.Record{TableID: table.ID}
	require.NoError(t, DB(ctxA).CreateRecord(ctxA, record))

	// raw ids from tenant A resolve to nothing under tenant B
	_, err := DB(ctxB).GetSchema(ctxB, schema.ID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
	_, err = DB(ctxB).GetTable(ctxB, table.ID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
	_, err = DB(ctxB).GetRecord(ctxB, record.ID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)

	schemas, err := DB(ctxB).ListSchemas(ctxB)
	assert.NoError(t, err)
	assert.Empty(t, schemas)
}

func TestViewLifecycle(t *testing.T) {
	ctx := log.Logger.WithContext(context.Background())
	ctx = newDb(ctx)
	defer DB(ctx).Close(ctx)

	ctx, tenantID := newTenant(t, ctx)
	defer DB(ctx).DeleteTenant(ctx, tenantID)

	schema := &models.Schema{Name: "Views"}
	require.NoError(t, DB(ctx).CreateSchema(ctx, schema))
	table := &models.Table{SchemaID: schema.ID, Name: "Grid", Slug: "grid"}
	require.NoError(t, DB(ctx).CreateTable(ctx, table))

	view := &models.View{TableID: table.ID, Name: "Default", Config: emptyConfig()}
	require.NoError(t, DB(ctx).CreateView(ctx, view))

	got, err := DB(ctx).GetView(ctx, view.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Default", got.Name)

	views, err := DB(ctx).ListViews(ctx, table.ID)
	assert.NoError(t, err)
	assert.Len(t, views, 1)

	assert.NoError(t, DB(ctx).DeleteView(ctx, view.ID))
	err = DB(ctx).DeleteView(ctx, view.ID)
	assert.ErrorIs(t, err, dberror.ErrNotFound)
}
