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

// CreateSchema inserts a new schema for the tenant in the context. The
// insert relies on the lower(name) unique index, so a name differing
// only in case from an existing schema reports ErrAlreadyExists.
func (rm *registryManager) CreateSchema(ctx context.Context, schema *models.Schema) apperrors.Error {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}
	schemaID := schema.ID
	if schemaID == uuid.Nil {
		schemaID = uuid.New()
	}

	query := `
		INSERT INTO schemas (id, tenant_id, name, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, lower(name)) DO NOTHING
		RETURNING id, created_at;
	`
	errdb := rm.conn().QueryRowContext(ctx, query, schemaID, tenantID, schema.Name, schema.Description).
		Scan(&schema.ID, &schema.CreatedAt)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("name", schema.Name).Msg("schema name already exists")
			return dberror.ErrAlreadyExists.Msg("schema name already exists")
		}
		if pgErr, ok := errdb.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			log.Ctx(ctx).Error().Str("tenant_id", string(tenantID)).Msg("unknown tenant")
			return dberror.ErrInvalidInput.Msg("unknown tenant")
		}
		log.Ctx(ctx).Error().Err(errdb).Str("name", schema.Name).Msg("failed to insert schema")
		return dberror.ErrDatabase.Err(errdb)
	}
	schema.TenantID = tenantID
	return nil
}

func (rm *registryManager) GetSchema(ctx context.Context, schemaID uuid.UUID) (*models.Schema, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, tenant_id, name, COALESCE(description, ''), created_at
		FROM schemas
		WHERE id = $1 AND tenant_id = $2;
	`
	schema := &models.Schema{}
	errdb := rm.conn().QueryRowContext(ctx, query, schemaID, tenantID).
		Scan(&schema.ID, &schema.TenantID, &schema.Name, &schema.Description, &schema.CreatedAt)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Msg("schema not found")
			return nil, dberror.ErrNotFound.Msg("schema not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to retrieve schema")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return schema, nil
}

// ListSchemas returns the tenant's schemas ordered by creation time,
// then name.
func (rm *registryManager) ListSchemas(ctx context.Context) ([]*models.Schema, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, tenant_id, name, COALESCE(description, ''), created_at
		FROM schemas
		WHERE tenant_id = $1
		ORDER BY created_at ASC, name ASC;
	`
	rows, errdb := rm.conn().QueryContext(ctx, query, tenantID)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to list schemas")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var schemas []*models.Schema
	for rows.Next() {
		schema := &models.Schema{}
		if errdb := rows.Scan(&schema.ID, &schema.TenantID, &schema.Name, &schema.Description, &schema.CreatedAt); errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to scan schema")
			return nil, dberror.ErrDatabase.Err(errdb)
		}
		schemas = append(schemas, schema)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return schemas, nil
}
