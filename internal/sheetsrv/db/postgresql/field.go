package postgresql

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dberror"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
)

const fieldColumns = `id, tenant_id, schema_id, table_id, name, slug, type, required, config, "order", created_at`

// CreateField inserts a field under field.TableID. The owning table is
// looked up inside the transaction to resolve schema_id and to confirm
// tenant ownership; the slug uniqueness check rides on the
// lower(slug) unique index.
func (rm *registryManager) CreateField(ctx context.Context, field *models.Field) (err apperrors.Error) {
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

	var schemaID uuid.UUID
	errdb = tx.QueryRowContext(ctx,
		`SELECT schema_id FROM tables WHERE id = $1 AND tenant_id = $2;`,
		field.TableID, tenantID).Scan(&schemaID)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("table_id", field.TableID.String()).Msg("table not found")
			return dberror.ErrNotFound.Msg("table not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to resolve owning table")
		return dberror.ErrDatabase.Err(errdb)
	}
	// schema_id is copied from the owning table and never changes.
	field.SchemaID = schemaID

	fieldID := field.ID
	if fieldID == uuid.Nil {
		fieldID = uuid.New()
	}

	query := `
		INSERT INTO fields (id, tenant_id, schema_id, table_id, name, slug, type, required, config, "order")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (table_id, lower(slug)) DO NOTHING
		RETURNING id, created_at;
	`
	errdb = tx.QueryRowContext(ctx, query,
		fieldID, tenantID, field.SchemaID, field.TableID,
		field.Name, field.Slug, field.Type, field.Required, field.Config, field.Order).
		Scan(&field.ID, &field.CreatedAt)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("slug", field.Slug).Msg("field slug already exists")
			return dberror.ErrAlreadyExists.Msg("field slug already exists")
		}
		if pgErr, ok := errdb.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			log.Ctx(ctx).Info().Str("table_id", field.TableID.String()).Msg("table not found")
			return dberror.ErrNotFound.Msg("table not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Str("slug", field.Slug).Msg("failed to insert field")
		return dberror.ErrDatabase.Err(errdb)
	}
	field.TenantID = tenantID

	if errdb := tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

func (rm *registryManager) GetField(ctx context.Context, fieldID uuid.UUID) (*models.Field, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + fieldColumns + `
		FROM fields
		WHERE id = $1 AND tenant_id = $2;
	`
	field := &models.Field{}
	errdb := scanField(rm.conn().QueryRowContext(ctx, query, fieldID, tenantID), field)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Msg("field not found")
			return nil, dberror.ErrNotFound.Msg("field not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to retrieve field")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return field, nil
}

// GetFieldsByIDs bulk-loads fields by id within the tenant. Missing ids
// are simply absent from the result; callers decide how to treat them.
func (rm *registryManager) GetFieldsByIDs(ctx context.Context, fieldIDs []uuid.UUID) ([]*models.Field, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(fieldIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + fieldColumns + `
		FROM fields
		WHERE tenant_id = $1 AND id = any($2::uuid[]);
	`
	rows, errdb := rm.conn().QueryContext(ctx, query, tenantID, pq.Array(fieldIDs))
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to load fields")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var fields []*models.Field
	for rows.Next() {
		field := &models.Field{}
		if errdb := scanField(rows, field); errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to scan field")
			return nil, dberror.ErrDatabase.Err(errdb)
		}
		fields = append(fields, field)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return fields, nil
}

// ListFields returns the table's fields ordered by the declared order,
// then creation time.
func (rm *registryManager) ListFields(ctx context.Context, tableID uuid.UUID) ([]*models.Field, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + fieldColumns + `
		FROM fields
		WHERE table_id = $1 AND tenant_id = $2
		ORDER BY "order" ASC, created_at ASC;
	`
	rows, errdb := rm.conn().QueryContext(ctx, query, tableID, tenantID)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to list fields")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var fields []*models.Field
	for rows.Next() {
		field := &models.Field{}
		if errdb := scanField(rows, field); errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to scan field")
			return nil, dberror.ErrDatabase.Err(errdb)
		}
		fields = append(fields, field)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return fields, nil
}

// UpdateField rewrites the mutable attributes of a field. The slug
// conflict check excludes the field itself; the unique index is the
// backstop for concurrent updates.
func (rm *registryManager) UpdateField(ctx context.Context, field *models.Field) (err apperrors.Error) {
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

	var conflict bool
	errdb = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM fields
			WHERE tenant_id = $1 AND table_id = $2 AND id <> $3 AND lower(slug) = lower($4)
		);
	`, tenantID, field.TableID, field.ID, field.Slug).Scan(&conflict)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to check field slug")
		return dberror.ErrDatabase.Err(errdb)
	}
	if conflict {
		log.Ctx(ctx).Info().Str("slug", field.Slug).Msg("field slug already exists")
		return dberror.ErrAlreadyExists.Msg("field slug already exists")
	}

	query := `
		UPDATE fields
		SET name = $4, slug = $5, type = $6, required = $7, config = $8, "order" = $9
		WHERE tenant_id = $1 AND table_id = $2 AND id = $3
		RETURNING created_at;
	`
	errdb = tx.QueryRowContext(ctx, query,
		tenantID, field.TableID, field.ID,
		field.Name, field.Slug, field.Type, field.Required, field.Config, field.Order).
		Scan(&field.CreatedAt)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Msg("field not found")
			return dberror.ErrNotFound.Msg("field not found")
		}
		if pgErr, ok := errdb.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return dberror.ErrAlreadyExists.Msg("field slug already exists")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to update field")
		return dberror.ErrDatabase.Err(errdb)
	}
	field.TenantID = tenantID

	if errdb := tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// DeleteField removes the field and its cells in one transaction.
func (rm *registryManager) DeleteField(ctx context.Context, tableID, fieldID uuid.UUID) (err apperrors.Error) {
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

	_, errdb = tx.ExecContext(ctx,
		`DELETE FROM cells WHERE tenant_id = $1 AND table_id = $2 AND field_id = $3;`,
		tenantID, tableID, fieldID)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to delete field cells")
		return dberror.ErrDatabase.Err(errdb)
	}

	var deletedID uuid.UUID
	errdb = tx.QueryRowContext(ctx,
		`DELETE FROM fields WHERE tenant_id = $1 AND table_id = $2 AND id = $3 RETURNING id;`,
		tenantID, tableID, fieldID).Scan(&deletedID)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Msg("field not found")
			return dberror.ErrNotFound.Msg("field not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to delete field")
		return dberror.ErrDatabase.Err(errdb)
	}

	if errdb := tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanField(row rowScanner, field *models.Field) error {
	return row.Scan(
		&field.ID, &field.TenantID, &field.SchemaID, &field.TableID,
		&field.Name, &field.Slug, &field.Type, &field.Required,
		&field.Config, &field.Order, &field.CreatedAt)
}
