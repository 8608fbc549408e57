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

// CreateView saves a presentation config under view.TableID. The owning
// table is checked inside the transaction so a view can never land in
// another tenant's table.
func (rm *registryManager) CreateView(ctx context.Context, view *models.View) (err apperrors.Error) {
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

	var tableExists bool
	errdb = tx.QueryRowContext(ctx,
		`SELECT true FROM tables WHERE id = $1 AND tenant_id = $2;`,
		view.TableID, tenantID).Scan(&tableExists)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("table_id", view.TableID.String()).Msg("table not found")
			return dberror.ErrNotFound.Msg("table not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to check table")
		return dberror.ErrDatabase.Err(errdb)
	}

	viewID := view.ID
	if viewID == uuid.Nil {
		viewID = uuid.New()
	}

	query := `
		INSERT INTO views (id, tenant_id, table_id, name, config)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at;
	`
	errdb = tx.QueryRowContext(ctx, query, viewID, tenantID, view.TableID, view.Name, view.Config).
		Scan(&view.ID, &view.CreatedAt)
	if errdb != nil {
		if pgErr, ok := errdb.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			log.Ctx(ctx).Info().Str("table_id", view.TableID.String()).Msg("table not found")
			return dberror.ErrNotFound.Msg("table not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Str("name", view.Name).Msg("failed to insert view")
		return dberror.ErrDatabase.Err(errdb)
	}
	view.TenantID = tenantID

	if errdb := tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

func (rm *registryManager) GetView(ctx context.Context, viewID uuid.UUID) (*models.View, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, tenant_id, table_id, name, config, created_at
		FROM views
		WHERE id = $1 AND tenant_id = $2;
	`
	view := &models.View{}
	errdb := rm.conn().QueryRowContext(ctx, query, viewID, tenantID).
		Scan(&view.ID, &view.TenantID, &view.TableID, &view.Name, &view.Config, &view.CreatedAt)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Msg("view not found")
			return nil, dberror.ErrNotFound.Msg("view not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to retrieve view")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return view, nil
}

func (rm *registryManager) ListViews(ctx context.Context, tableID uuid.UUID) ([]*models.View, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, tenant_id, table_id, name, config, created_at
		FROM views
		WHERE table_id = $1 AND tenant_id = $2
		ORDER BY created_at ASC, name ASC;
	`
	rows, errdb := rm.conn().QueryContext(ctx, query, tableID, tenantID)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to list views")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var views []*models.View
	for rows.Next() {
		view := &models.View{}
		if errdb := rows.Scan(&view.ID, &view.TenantID, &view.TableID, &view.Name, &view.Config, &view.CreatedAt); errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to scan view")
			return nil, dberror.ErrDatabase.Err(errdb)
		}
		views = append(views, view)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return views, nil
}

func (rm *registryManager) DeleteView(ctx context.Context, viewID uuid.UUID) apperrors.Error {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}

	var deletedID uuid.UUID
	errdb := rm.conn().QueryRowContext(ctx,
		`DELETE FROM views WHERE id = $1 AND tenant_id = $2 RETURNING id;`,
		viewID, tenantID).Scan(&deletedID)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Msg("view not found")
			return dberror.ErrNotFound.Msg("view not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to delete view")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}
