package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dberror"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

// CreateTenant provisions a tenant row. Returns ErrAlreadyExists if the
// tenant ID is taken.
func (rm *registryManager) CreateTenant(ctx context.Context, tenantID sheetcommon.TenantId) apperrors.Error {
	if tenantID == "" {
		return dberror.ErrMissingTenantID
	}

	query := `
		INSERT INTO tenants (tenant_id)
		VALUES ($1)
		ON CONFLICT (tenant_id) DO NOTHING
		RETURNING tenant_id;
	`
	var inserted sheetcommon.TenantId
	err := rm.conn().QueryRowContext(ctx, query, tenantID).Scan(&inserted)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("tenant_id", string(tenantID)).Msg("tenant already exists")
			return dberror.ErrAlreadyExists.Msg("tenant already exists")
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to insert tenant")
		return dberror.ErrDatabase.Err(err)
	}
	return nil
}

func (rm *registryManager) GetTenant(ctx context.Context, tenantID sheetcommon.TenantId) (*models.Tenant, apperrors.Error) {
	query := `
		SELECT tenant_id, created_at
		FROM tenants
		WHERE tenant_id = $1;
	`
	tenant := &models.Tenant{}
	err := rm.conn().QueryRowContext(ctx, query, tenantID).Scan(&tenant.TenantID, &tenant.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("tenant not found")
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to retrieve tenant")
		return nil, dberror.ErrDatabase.Err(err)
	}
	return tenant, nil
}

// DeleteTenant removes the tenant and, through cascading constraints,
// all of its schemas, tables, fields, records, and cells.
func (rm *registryManager) DeleteTenant(ctx context.Context, tenantID sheetcommon.TenantId) apperrors.Error {
	query := `
		DELETE FROM tenants
		WHERE tenant_id = $1;
	`
	result, err := rm.conn().ExecContext(ctx, query, tenantID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to delete tenant")
		return dberror.ErrDatabase.Err(err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		log.Ctx(ctx).Info().Str("tenant_id", string(tenantID)).Msg("tenant not found")
	}
	return nil
}
