package sheetmanager

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	srvconfig "github.com/gridbase/sheetsrv/internal/sheetsrv/config"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/models"
)

const DefaultPageSize = 50

// RecordRow is one wide, projected row. Cells maps field slug to the
// typed value from the slot matching the field's declared type; fields
// with no cell for the record are absent from the map, a cleared cell
// appears as an explicit null.
type RecordRow struct {
	ID        uuid.UUID      `json:"id"`
	Title     *string        `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Cells     map[string]any `json:"cells"`
}

// RecordPage is one page of projected rows. Total counts every record
// in the table regardless of pagination.
type RecordPage struct {
	Rows     []*RecordRow `json:"rows"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

// ListRecords pages the table's records newest-first and pivots their
// narrow cells into wide rows keyed by field slug.
func ListRecords(ctx context.Context, tableID uuid.UUID, page, pageSize int) (*RecordPage, apperrors.Error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if max := srvconfig.Config().MaxPageSize; pageSize > max {
		pageSize = max
	}

	store := db.DB(ctx)

	// Resolving the table up front turns a foreign or missing table
	// into NotFound instead of an empty page.
	if _, dberr := store.GetTable(ctx, tableID); dberr != nil {
		return nil, storeError(dberr)
	}

	total, dberr := store.CountRecords(ctx, tableID)
	if dberr != nil {
		return nil, storeError(dberr)
	}

	offset := (page - 1) * pageSize
	records, dberr := store.ListRecords(ctx, tableID, pageSize, offset)
	if dberr != nil {
		return nil, storeError(dberr)
	}

	fields, dberr := store.ListFields(ctx, tableID)
	if dberr != nil {
		return nil, storeError(dberr)
	}
	fieldsByID := make(map[uuid.UUID]*models.Field, len(fields))
	for _, field := range fields {
		fieldsByID[field.ID] = field
	}

	recordIDs := make([]uuid.UUID, 0, len(records))
	rowsByID := make(map[uuid.UUID]*RecordRow, len(records))
	rows := make([]*RecordRow, 0, len(records))
	for _, record := range records {
		row := &RecordRow{
			ID:        record.ID,
			Title:     record.Title,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
			Cells:     map[string]any{},
		}
		rows = append(rows, row)
		rowsByID[record.ID] = row
		recordIDs = append(recordIDs, record.ID)
	}

	cells, dberr := store.ListCellsForRecords(ctx, tableID, recordIDs)
	if dberr != nil {
		return nil, storeError(dberr)
	}
	for _, cell := range cells {
		row := rowsByID[cell.RecordID]
		field := fieldsByID[cell.FieldID]
		if row == nil || field == nil {
			continue
		}
		row.Cells[field.Slug] = projectValue(field.Type, cell.Value)
	}

	return &RecordPage{
		Rows:     rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// projectValue picks the slot matching the field's declared type. Slots
// left over from an earlier type are ignored; a cleared cell projects
// as nil.
func projectValue(fieldType models.FieldType, value models.CellValue) any {
	switch fieldType {
	case models.FieldTypeNumber:
		if value.Number != nil {
			return *value.Number
		}
	case models.FieldTypeBool:
		if value.Bool != nil {
			return *value.Bool
		}
	case models.FieldTypeDate:
		if value.Date != nil {
			return *value.Date
		}
	case models.FieldTypeJSON:
		if value.JSON != nil {
			return jsoniter.RawMessage(*value.JSON)
		}
	default:
		if value.Text != nil {
			return *value.Text
		}
	}
	return nil
}
