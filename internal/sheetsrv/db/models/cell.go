package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

/*
   Column   |           Type           | Nullable | Default
------------+--------------------------+----------+---------
 tenant_id  | character varying(10)    | not null |
 schema_id  | uuid                     | not null |
 table_id   | uuid                     | not null |
 record_id  | uuid                     | not null |
 field_id   | uuid                     | not null |
 text       | text                     |          |
 number     | numeric                  |          |
 bool       | boolean                  |          |
 date       | date                     |          |
 json       | jsonb                    |          |
 updated_at | timestamp with time zone | not null | now()
Indexes:
    "cells_pkey" PRIMARY KEY, btree (record_id, field_id)
    "cells_field_id_idx" btree (field_id)
Foreign-key constraints:
    "cells_record_id_fkey" FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
    "cells_field_id_fkey" FOREIGN KEY (field_id) REFERENCES fields(id) ON DELETE CASCADE
*/

// CellValue is the tagged five-slot union stored per cell. At most one
// slot is non-nil, selected by the owning field's declared type; a
// cleared cell has all slots nil but keeps its row.
type CellValue struct {
	Text   *string  `db:"text"`
	Number *float64 `db:"number"`
	Bool   *bool    `db:"bool"`
	Date   *string  `db:"date"`
	JSON   *string  `db:"json"`
}

// IsEmpty reports whether no slot is populated.
func (v CellValue) IsEmpty() bool {
	return v.Text == nil && v.Number == nil && v.Bool == nil && v.Date == nil && v.JSON == nil
}

// Cell is the stored value of one field for one record. Exactly one cell
// row may exist per (record_id, field_id).
type Cell struct {
	TenantID  sheetcommon.TenantId `db:"tenant_id"`
	SchemaID  uuid.UUID            `db:"schema_id"`
	TableID   uuid.UUID            `db:"table_id"`
	RecordID  uuid.UUID            `db:"record_id"`
	FieldID   uuid.UUID            `db:"field_id"`
	Value     CellValue            `db:""`
	UpdatedAt time.Time            `db:"updated_at"`
}
