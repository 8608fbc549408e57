package sheetmanager

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
)

// MaxBatchSize bounds a single batch of cell updates.
const MaxBatchSize = 200

type CellUpdate struct {
	RecordID uuid.UUID `json:"record_id" validate:"required"`
	FieldID  uuid.UUID `json:"field_id" validate:"required"`
	Value    any       `json:"value"`
}

type CellUpdateResult struct {
	RecordID uuid.UUID `json:"record_id"`
	FieldID  uuid.UUID `json:"field_id"`
	Ok       bool      `json:"ok"`
	Message  string    `json:"message,omitempty"`
}

// BatchUpdateCells applies up to MaxBatchSize cell writes. Items are
// validated individually; failures are reported per item and never
// abort the rest. The valid writes land in one transaction, so only an
// infrastructure fault rolls the batch back.
func BatchUpdateCells(ctx context.Context, updates []CellUpdate) ([]CellUpdateResult, apperrors.Error) {
	if len(updates) == 0 {
		return nil, ErrInvalidRequest.Msg("batch must contain at least one update")
	}
	if len(updates) > MaxBatchSize {
		return nil, ErrInvalidRequest.Msg("batch exceeds the maximum of 200 updates")
	}

	store := db.DB(ctx)

	fieldIDs := make([]uuid.UUID, 0, len(updates))
	recordIDs := make([]uuid.UUID, 0, len(updates))
	seenFields := make(map[uuid.UUID]struct{}, len(updates))
	seenRecords := make(map[uuid.UUID]struct{}, len(updates))
	for _, update := range updates {
		if _, ok := seenFields[update.FieldID]; !ok && update.FieldID != uuid.Nil {
			seenFields[update.FieldID] = struct{}{}
			fieldIDs = append(fieldIDs, update.FieldID)
		}
		if _, ok := seenRecords[update.RecordID]; !ok && update.RecordID != uuid.Nil {
			seenRecords[update.RecordID] = struct{}{}
			recordIDs = append(recordIDs, update.RecordID)
		}
	}

	fields, dberr := store.GetFieldsByIDs(ctx, fieldIDs)
	if dberr != nil {
		return nil, storeError(dberr)
	}
	records, dberr := store.GetRecordsByIDs(ctx, recordIDs)
	if dberr != nil {
		return nil, storeError(dberr)
	}
	fieldsByID := make(map[uuid.UUID]*models.Field, len(fields))
	for _, field := range fields {
		fieldsByID[field.ID] = field
	}
	recordsByID := make(map[uuid.UUID]*models.Record, len(records))
	for _, record := range records {
		recordsByID[record.ID] = record
	}

	results := make([]CellUpdateResult, len(updates))
	var cells []*models.Cell
	var applied []int
	for i, update := range updates {
		results[i] = CellUpdateResult{RecordID: update.RecordID, FieldID: update.FieldID}

		field := fieldsByID[update.FieldID]
		if field == nil {
			results[i].Message = "field not found"
			continue
		}
		record := recordsByID[update.RecordID]
		if record == nil {
			results[i].Message = "record not found"
			continue
		}
		if record.TableID != field.TableID || record.SchemaID != field.SchemaID {
			results[i].Message = "record and field belong to different tables"
			continue
		}

		value, err := NormalizeCellValue(field.Type, update.Value)
		if err != nil {
			results[i].Message = err.Error()
			continue
		}

		cells = append(cells, &models.Cell{
			SchemaID: field.SchemaID,
			TableID:  field.TableID,
			RecordID: record.ID,
			FieldID:  field.ID,
			Value:    value,
		})
		applied = append(applied, i)
	}

	if len(cells) > 0 {
		if dberr := store.BatchUpsertCells(ctx, cells); dberr != nil {
			return nil, storeError(dberr)
		}
	}
	for _, i := range applied {
		results[i].Ok = true
	}
	return results, nil
}
