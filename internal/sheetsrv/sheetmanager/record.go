package sheetmanager

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
)

type RecordRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,max=512"`
}

// CreateRecord inserts an empty row into the table. Values arrive later
// through cell upserts.
func CreateRecord(ctx context.Context, tableID uuid.UUID, req *RecordRequest) (*models.Record, apperrors.Error) {
	record := &models.Record{
		TableID: tableID,
		Title:   req.Title,
	}
	if err := db.DB(ctx).CreateRecord(ctx, record); err != nil {
		return nil, storeError(err)
	}
	return record, nil
}

// PatchRecordTitle replaces the record's display title; nil clears it.
func PatchRecordTitle(ctx context.Context, recordID uuid.UUID, title *string) (*models.Record, apperrors.Error) {
	record, err := db.DB(ctx).UpdateRecordTitle(ctx, recordID, title)
	if err != nil {
		return nil, storeError(err)
	}
	return record, nil
}

// UpsertCell writes one value to a (record, field) pair. The field and
// record are resolved within the tenant and must belong to the same
// table before the value is normalized and stored; last writer wins on
// concurrent upserts of the same pair.
func UpsertCell(ctx context.Context, recordID, fieldID uuid.UUID, rawValue any) (*models.Cell, apperrors.Error) {
	field, dberr := db.DB(ctx).GetField(ctx, fieldID)
	if dberr != nil {
		return nil, storeError(dberr)
	}
	record, dberr := db.DB(ctx).GetRecord(ctx, recordID)
	if dberr != nil {
		return nil, storeError(dberr)
	}
	if record.TableID != field.TableID || record.SchemaID != field.SchemaID {
		return nil, ErrNotFound.Msg("record and field belong to different tables")
	}

	value, err := NormalizeCellValue(field.Type, rawValue)
	if err != nil {
		return nil, err
	}

	cell := &models.Cell{
		SchemaID: field.SchemaID,
		TableID:  field.TableID,
		RecordID: record.ID,
		FieldID:  field.ID,
		Value:    value,
	}
	if dberr := db.DB(ctx).UpsertCell(ctx, cell); dberr != nil {
		return nil, storeError(dberr)
	}
	return cell, nil
}
