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
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

// The typed slots are cast on the way in so the narrow columns accept
// the driver's string/float parameters, and rendered back as text and
// float8 on the way out so scanning stays unambiguous.
const (
	cellUpsertQuery = `
		INSERT INTO cells (tenant_id, schema_id, table_id, record_id, field_id, text, number, bool, date, json)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9::date, $10::jsonb)
		ON CONFLICT (record_id, field_id) DO UPDATE
		SET text = excluded.text,
		    number = excluded.number,
		    bool = excluded.bool,
		    date = excluded.date,
		    json = excluded.json,
		    updated_at = now()
		RETURNING updated_at;
	`
	cellSelectColumns = `tenant_id, schema_id, table_id, record_id, field_id, text, number::float8, bool, date::text, json::text, updated_at`
)

// UpsertCell writes one cell and advances the owning record's
// updated_at in the same transaction.
func (dm *dataManager) UpsertCell(ctx context.Context, cell *models.Cell) (err apperrors.Error) {
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

	if err = upsertCellTx(ctx, tx, tenantID, cell); err != nil {
		return err
	}

	_, errdb = tx.ExecContext(ctx,
		`UPDATE records SET updated_at = now() WHERE id = $1 AND tenant_id = $2;`,
		cell.RecordID, tenantID)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to touch record")
		return dberror.ErrDatabase.Err(errdb)
	}

	if errdb := tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// BatchUpsertCells applies the writes in one transaction and touches
// each distinct record once. Either every write lands or none do.
func (dm *dataManager) BatchUpsertCells(ctx context.Context, cells []*models.Cell) (err apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return err
	}
	if len(cells) == 0 {
		return nil
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

	touched := make(map[uuid.UUID]struct{}, len(cells))
	for _, cell := range cells {
		if err = upsertCellTx(ctx, tx, tenantID, cell); err != nil {
			return err
		}
		touched[cell.RecordID] = struct{}{}
	}

	recordIDs := make([]uuid.UUID, 0, len(touched))
	for id := range touched {
		recordIDs = append(recordIDs, id)
	}
	_, errdb = tx.ExecContext(ctx,
		`UPDATE records SET updated_at = now() WHERE tenant_id = $1 AND id = any($2::uuid[]);`,
		tenantID, pq.Array(recordIDs))
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to touch records")
		return dberror.ErrDatabase.Err(errdb)
	}

	if errdb := tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

func upsertCellTx(ctx context.Context, tx *sql.Tx, tenantID sheetcommon.TenantId, cell *models.Cell) apperrors.Error {
	errdb := tx.QueryRowContext(ctx, cellUpsertQuery,
		tenantID, cell.SchemaID, cell.TableID, cell.RecordID, cell.FieldID,
		cell.Value.Text, cell.Value.Number, cell.Value.Bool, cell.Value.Date, cell.Value.JSON).
		Scan(&cell.UpdatedAt)
	if errdb != nil {
		if pgErr, ok := errdb.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			log.Ctx(ctx).Info().
				Str("record_id", cell.RecordID.String()).
				Str("field_id", cell.FieldID.String()).
				Msg("record or field not found")
			return dberror.ErrNotFound.Msg("record or field not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to upsert cell")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// ListCellsForRecords loads every cell belonging to the given records of
// one table, for projection into wide rows.
func (dm *dataManager) ListCellsForRecords(ctx context.Context, tableID uuid.UUID, recordIDs []uuid.UUID) ([]*models.Cell, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(recordIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + cellSelectColumns + `
		FROM cells
		WHERE tenant_id = $1 AND table_id = $2 AND record_id = any($3::uuid[]);
	`
	rows, errdb := dm.conn().QueryContext(ctx, query, tenantID, tableID, pq.Array(recordIDs))
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to list cells")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var cells []*models.Cell
	for rows.Next() {
		cell := &models.Cell{}
		errdb := rows.Scan(
			&cell.TenantID, &cell.SchemaID, &cell.TableID, &cell.RecordID, &cell.FieldID,
			&cell.Value.Text, &cell.Value.Number, &cell.Value.Bool, &cell.Value.Date, &cell.Value.JSON,
			&cell.UpdatedAt)
		if errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to scan cell")
			return nil, dberror.ErrDatabase.Err(errdb)
		}
		cells = append(cells, cell)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return cells, nil
}

// CountCellsForPair reports how many cell rows exist for one
// (record, field) pair. The primary key caps it at one.
func (dm *dataManager) CountCellsForPair(ctx context.Context, recordID, fieldID uuid.UUID) (int, apperrors.Error) {
	tenantID, err := tenantIdFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	errdb := dm.conn().QueryRowContext(ctx,
		`SELECT count(*) FROM cells WHERE tenant_id = $1 AND record_id = $2 AND field_id = $3;`,
		tenantID, recordID, fieldID).Scan(&count)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to count cells")
		return 0, dberror.ErrDatabase.Err(errdb)
	}
	return count, nil
}
