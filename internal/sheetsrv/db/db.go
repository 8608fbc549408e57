package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dbmanager"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/postgresql"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

// RegistryManager owns the metadata levels: tenants, schemas, tables,
// fields, and saved views. All operations are tenant scoped through the
// context.
type RegistryManager interface {
	// Tenant
	CreateTenant(ctx context.Context, tenantID sheetcommon.TenantId) apperrors.Error
	GetTenant(ctx context.Context, tenantID sheetcommon.TenantId) (*models.Tenant, apperrors.Error)
	DeleteTenant(ctx context.Context, tenantID sheetcommon.TenantId) apperrors.Error

	// Schema
	CreateSchema(ctx context.Context, schema *models.Schema) apperrors.Error
	GetSchema(ctx context.Context, schemaID uuid.UUID) (*models.Schema, apperrors.Error)
	ListSchemas(ctx context.Context) ([]*models.Schema, apperrors.Error)

	// Table
	CreateTable(ctx context.Context, table *models.Table) apperrors.Error
	GetTable(ctx context.Context, tableID uuid.UUID) (*models.Table, apperrors.Error)
	ListTables(ctx context.Context, schemaID uuid.UUID) ([]*models.Table, apperrors.Error)

	// Field
	CreateField(ctx context.Context, field *models.Field) apperrors.Error
	GetField(ctx context.Context, fieldID uuid.UUID) (*models.Field, apperrors.Error)
	GetFieldsByIDs(ctx context.Context, fieldIDs []uuid.UUID) ([]*models.Field, apperrors.Error)
	ListFields(ctx context.Context, tableID uuid.UUID) ([]*models.Field, apperrors.Error)
	UpdateField(ctx context.Context, field *models.Field) apperrors.Error
	DeleteField(ctx context.Context, tableID, fieldID uuid.UUID) apperrors.Error

	// View
	CreateView(ctx context.Context, view *models.View) apperrors.Error
	GetView(ctx context.Context, viewID uuid.UUID) (*models.View, apperrors.Error)
	ListViews(ctx context.Context, tableID uuid.UUID) ([]*models.View, apperrors.Error)
	DeleteView(ctx context.Context, viewID uuid.UUID) apperrors.Error
}

// DataManager owns record rows and their cells.
type DataManager interface {
	// Record
	CreateRecord(ctx context.Context, record *models.Record) apperrors.Error
	GetRecord(ctx context.Context, recordID uuid.UUID) (*models.Record, apperrors.Error)
	GetRecordsByIDs(ctx context.Context, recordIDs []uuid.UUID) ([]*models.Record, apperrors.Error)
	UpdateRecordTitle(ctx context.Context, recordID uuid.UUID, title *string) (*models.Record, apperrors.Error)
	TouchRecord(ctx context.Context, recordID uuid.UUID) apperrors.Error
	ListRecords(ctx context.Context, tableID uuid.UUID, limit, offset int) ([]*models.Record, apperrors.Error)
	CountRecords(ctx context.Context, tableID uuid.UUID) (int, apperrors.Error)

	// Cell
	UpsertCell(ctx context.Context, cell *models.Cell) apperrors.Error
	BatchUpsertCells(ctx context.Context, cells []*models.Cell) apperrors.Error
	ListCellsForRecords(ctx context.Context, tableID uuid.UUID, recordIDs []uuid.UUID) ([]*models.Cell, apperrors.Error)
	CountCellsForPair(ctx context.Context, recordID, fieldID uuid.UUID) (int, apperrors.Error)
}

type ConnectionManager interface {
	AddScope(ctx context.Context, scope, value string) error
	DropScope(ctx context.Context, scope string) error
	DropAllScopes(ctx context.Context) error

	// Close the connection to the database.
	Close(ctx context.Context)
}

type DB_ interface {
	RegistryManager
	DataManager
	ConnectionManager
}

const (
	Scope_TenantId string = "sheetsrv.curr_tenantid"
)

var configuredScopes = []string{
	Scope_TenantId,
}

var pool dbmanager.ScopedDb

// Init creates the connection pool. Must be called once after config is
// loaded and before any Conn/ConnCtx use.
func Init(ctx context.Context) error {
	pg := dbmanager.NewScopedDb(ctx, "postgresql", configuredScopes)
	if pg == nil {
		return ErrNoConnection
	}
	pool = pg
	return nil
}

var ErrNoConnection = apperrors.New("unable to create db pool")

func Conn(ctx context.Context) dbmanager.ScopedConn {
	if pool != nil {
		conn, err := pool.Conn(ctx)
		if err == nil {
			return conn
		}
		log.Ctx(ctx).Error().Err(err).Msg("unable to get db connection")
	}
	return nil
}

type ctxDbKeyType string

const ctxDbKey ctxDbKeyType = "SheetsDb"

// ConnCtx obtains a scoped connection and stores it in the context for
// the rest of the request to use through DB.
func ConnCtx(ctx context.Context) (context.Context, error) {
	conn := Conn(ctx)
	if conn == nil {
		return ctx, ErrNoConnection
	}
	return context.WithValue(ctx, ctxDbKey, conn), nil
}

type sheetsDb struct {
	RegistryManager
	DataManager
	ConnectionManager
}

func DB(ctx context.Context) DB_ {
	if conn, ok := ctx.Value(ctxDbKey).(dbmanager.ScopedConn); ok {
		rm, dm, cm := postgresql.NewSheetStore(conn)
		return &sheetsDb{
			RegistryManager:   rm,
			DataManager:       dm,
			ConnectionManager: cm,
		}
	}
	log.Ctx(ctx).Error().Msg("unable to get db connection from context")
	return nil
}
