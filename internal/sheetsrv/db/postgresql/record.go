package postgresql

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dberror"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
)

const recordColumns = `id, tenant_id, schema_id, table_id, title, created_at, updated_at`

// CreateRecord inserts a row under record.TableID. The owning table is
// looked up inside the transaction to resolve schema_id and to confirm
// tenant ownership.
func (dm *dataManager) CreateRecord(ctx context.Context, record *models.Record) (err apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}

	tx, errdb := dm.conn().BeginTx(ctx, &sql.TxOptions{})
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
		record.TableID, tenantID).Scan(&schemaID)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Str("table_id", record.TableID.String()).Msg("table not found")
			return dberror.ErrNotFound.Msg("table not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to resolve owning table")
		return dberror.ErrDatabase.Err(errdb)
	}
	record.SchemaID = schemaID

	recordID := record.ID
	if recordID == uuid.Nil {
		recordID = uuid.New()
	}

	query := `
		INSERT INTO records (id, tenant_id, schema_id, table_id, title)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;
	`
	errdb = tx.QueryRowContext(ctx, query, recordID, tenantID, record.SchemaID, record.TableID, record.Title).
		Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to insert record")
		return dberror.ErrDatabase.Err(errdb)
	}
	record.TenantID = tenantID

	if errdb := tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

func (dm *dataManager) GetRecord(ctx context.Context, recordID uuid.UUID) (*models.Record, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE id = $1 AND tenant_id = $2;
	`
	record := &models.Record{}
	errdb := scanRecord(dm.conn().QueryRowContext(ctx, query, recordID, tenantID), record)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Msg("record not found")
			return nil, dberror.ErrNotFound.Msg("record not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to retrieve record")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return record, nil
}

// GetRecordsByIDs bulk-loads records by id within the tenant. Missing
// ids are absent from the result.
func (dm *dataManager) GetRecordsByIDs(ctx context.Context, recordIDs []uuid.UUID) ([]*models.Record, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(recordIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE tenant_id = $1 AND id = any($2::uuid[]);
	`
	rows, errdb := dm.conn().QueryContext(ctx, query, tenantID, pq.Array(recordIDs))
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to load records")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record := &models.Record{}
		if errdb := scanRecord(rows, record); errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to scan record")
			return nil, dberror.ErrDatabase.Err(errdb)
		}
		records = append(records, record)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return records, nil
}

// UpdateRecordTitle replaces the record's display title. A nil title
// clears it. The row's updated_at is left alone; only cell writes
// advance it.
func (dm *dataManager) UpdateRecordTitle(ctx context.Context, recordID uuid.UUID, title *string) (*models.Record, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE records
		SET title = $3
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + recordColumns + `;
	`
	record := &models.Record{}
	errdb := scanRecord(dm.conn().QueryRowContext(ctx, query, recordID, tenantID, title), record)
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			log.Ctx(ctx).Info().Msg("record not found")
			return nil, dberror.ErrNotFound.Msg("record not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to update record title")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return record, nil
}

// TouchRecord advances updated_at after a cell write.
func (dm *dataManager) TouchRecord(ctx context.Context, recordID uuid.UUID) apperrors.Error {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}

	result, errdb := dm.conn().ExecContext(ctx,
		`UPDATE records SET updated_at = now() WHERE id = $1 AND tenant_id = $2;`,
		recordID, tenantID)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to touch record")
		return dberror.ErrDatabase.Err(errdb)
	}
	if rows, errdb := result.RowsAffected(); errdb == nil && rows == 0 {
		return dberror.ErrNotFound.Msg("record not found")
	}
	return nil
}

// ListRecords pages the table's records, newest first. The id tiebreak
// keeps the order stable for rows created in the same instant.
func (dm *dataManager) ListRecords(ctx context.Context, tableID uuid.UUID, limit, offset int) ([]*models.Record, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE table_id = $1 AND tenant_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4;
	`
	rows, errdb := dm.conn().QueryContext(ctx, query, tableID, tenantID, limit, offset)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to list records")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record := &models.Record{}
		if errdb := scanRecord(rows, record); errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to scan record")
			return nil, dberror.ErrDatabase.Err(errdb)
		}
		records = append(records, record)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return records, nil
}

func (dm *dataManager) CountRecords(ctx context.Context, tableID uuid.UUID) (int, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	errdb := dm.conn().QueryRowContext(ctx,
		`SELECT count(*) FROM records WHERE table_id = $1 AND tenant_id = $2;`,
		tableID, tenantID).Scan(&count)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to count records")
		return 0, dberror.ErrDatabase.Err(errdb)
	}
	return count, nil
}

func scanRecord(row rowScanner, record *models.Record) error {
	return row.Scan(
		&record.ID, &record.TenantID, &record.SchemaID, &record.TableID,
		&record.Title, &record.CreatedAt, &record.UpdatedAt)
}
