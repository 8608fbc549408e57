package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

/*
   Column    |           Type           | Nullable | Default
-------------+--------------------------+----------+--------------------
 id          | uuid                     | not null | gen_random_uuid()
 tenant_id   | character varying(10)    | not null |
 schema_id   | uuid                     | not null |
 name        | character varying(128)   | not null |
 slug        | character varying(64)    | not null |
 description | character varying(1024)  |          |
 created_at  | timestamp with time zone | not null | now()
Indexes:
    "tables_pkey" PRIMARY KEY, btree (id)
    "tables_schema_lower_slug_ux" UNIQUE, btree (schema_id, lower(slug))
Foreign-key constraints:
    "tables_schema_id_fkey" FOREIGN KEY (schema_id) REFERENCES schemas(id) ON DELETE CASCADE
*/

// Table is a named collection of fields and records within a schema,
// analogous to a sheet. The owning schema is never reassigned.
type Table struct {
	ID          uuid.UUID            `db:"id"`
	TenantID    sheetcommon.TenantId `db:"tenant_id"`
	SchemaID    uuid.UUID            `db:"schema_id"`
	Name        string               `db:"name"`
	Slug        string               `db:"slug"`
	Description string               `db:"description"`
	CreatedAt   time.Time            `db:"created_at"`
}
