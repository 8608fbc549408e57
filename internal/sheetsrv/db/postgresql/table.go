package postgresql

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dberror"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
)

// CreateTable creates a table under table.SchemaID. The parent schema is
// re-validated inside the transaction so the ownership check and the
// insert observe the same state.
func (rm *registryManager) CreateTable(ctx context.Context, table *models.Table) (err apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}

	tx, errdb := rm.conn().BeginTx(ctx, &sql.TxOptions{})
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to start transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var schemaExists bool
	errdb = tx.QueryRowContext(ctx,
		`SELECT true FROM schemas WHERE id = $1 AND tenant_id = $2;`,
		table.SchemaID, tenantID).Scan(&schemaExists)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("schema_id", table.SchemaID.String()).Msg("schema not found")
			return dberror.ErrNotFound.Msg("schema not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to check schema")
		return dberror.ErrDatabase.Err(errdb)
	}

	tableID := table.ID
	if tableID == uuid.Nil {
		tableID = uuid.New()
	}

	query := `
		INSERT INTO tables (id, tenant_id, schema_id, name, slug, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (schema_id, lower(slug)) DO NOTHING
		RETURNING id, created_at;
	`
	errdb = tx.QueryRowContext(ctx, query, tableID, tenantID, table.SchemaID, table.Name, table.Slug, table.Description).
		Scan(&table.ID, &table.CreatedAt)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("slug", table.Slug).Msg("table slug already exists")
			return dberror.ErrAlreadyExists.Msg("table slug already exists")
		}
		if pgErr, ok := errdb.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			log.Ctx(ctx).Info().Str("schema_id", table.SchemaID.String()).Msg("schema not found")
			return dberror.ErrNotFound.Msg("schema not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Str("slug", table.Slug).Msg("failed to insert table")
		return dberror.ErrDatabase.Err(errdb)
	}
	table.TenantID = tenantID

	if errdb := tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

func (rm *registryManager) GetTable(ctx context.Context, tableID uuid.UUID) (*models.Table, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, tenant_id, schema_id, name, slug, COALESCE(description, ''), created_at
		FROM tables
		WHERE id = $1 AND tenant_id = $2;
	`
	table := &models.Table{}
	errdb := rm.conn().QueryRowContext(ctx, query, tableID, tenantID).
		Scan(&table.ID, &table.TenantID, &table.SchemaID, &table.Name, &table.Slug, &table.Description, &table.CreatedAt)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Msg("table not found")
			return nil, dberror.ErrNotFound.Msg("table not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to retrieve table")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return table, nil
}

// ListTables returns the schema's tables ordered by creation time, then
// name.
func (rm *registryManager) ListTables(ctx context.Context, schemaID uuid.UUID) ([]*models.Table, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, tenant_id, schema_id, name, slug, COALESCE(description, ''), created_at
		FROM tables
		WHERE schema_id = $1 AND tenant_id = $2
		ORDER BY created_at ASC, name ASC;
	`
	rows, errdb := rm.conn().QueryContext(ctx, query, schemaID, tenantID)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to list tables")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var tables []*models.Table
	for rows.Next() {
		table := &models.Table{}
		if errdb := rows.Scan(&table.ID, &table.TenantID, &table.SchemaID, &table.Name, &table.Slug, &table.Description, &table.CreatedAt); errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to scan table")
			return nil, dberror.ErrDatabase.Err(errdb)
		}
		tables = append(tables, table)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return tables, nil
}
