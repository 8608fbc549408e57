package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"

	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

/*
   Column   |           Type           | Nullable | Default
------------+--------------------------+----------+--------------------
 id         | uuid                     | not null | gen_random_uuid()
 tenant_id  | character varying(10)    | not null |
 schema_id  | uuid                     | not null |
 table_id   | uuid                     | not null |
 name       | character varying(128)   | not null |
 slug       | character varying(64)    | not null |
 type       | character varying(16)    | not null |
 required   | boolean                  | not null | false
 config     | jsonb                    | not null | '{}'::jsonb
 "order"    | integer                  | not null | 0
 created_at | timestamp with time zone | not null | now()
Indexes:
    "fields_pkey" PRIMARY KEY, btree (id)
    "fields_table_lower_slug_ux" UNIQUE, btree (table_id, lower(slug))
Foreign-key constraints:
    "fields_table_id_fkey" FOREIGN KEY (table_id) REFERENCES tables(id) ON DELETE CASCADE
*/

// FieldType is the declared value kind of a field. It selects which of
// the cell value slots is populated.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeBool        FieldType = "bool"
	FieldTypeDate        FieldType = "date"
	FieldTypeJSON        FieldType = "json"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multi_select"
	FieldTypeLink        FieldType = "link"
)

// IsValid reports whether t is in the supported set.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeBool, FieldTypeDate,
		FieldTypeJSON, FieldTypeSelect, FieldTypeMultiSelect, FieldTypeLink:
		return true
	}
	return false
}

// Field is a typed column definition within a table. SchemaID is copied
// from the owning table at creation and never changes.
type Field struct {
	ID        uuid.UUID            `db:"id"`
	TenantID  sheetcommon.TenantId `db:"tenant_id"`
	SchemaID  uuid.UUID            `db:"schema_id"`
	TableID   uuid.UUID            `db:"table_id"`
	Name      string               `db:"name"`
	Slug      string               `db:"slug"`
	Type      FieldType            `db:"type"`
	Required  bool                 `db:"required"`
	Config    pgtype.JSONB         `db:"config"`
	Order     int                  `db:"order"`
	CreatedAt time.Time            `db:"created_at"`
}
