package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

/*
   Column   |           Type           | Nullable | Default
------------+--------------------------+----------+--------------------
 id         | uuid                     | not null | gen_random_uuid()
 tenant_id  | character varying(10)    | not null |
 schema_id  | uuid                     | not null |
 table_id   | uuid                     | not null |
 title      | text                     |          |
 created_at | timestamp with time zone | not null | now()
 updated_at | timestamp with time zone | not null | now()
Indexes:
    "records_pkey" PRIMARY KEY, btree (id)
    "records_table_created_at_idx" btree (table_id, created_at DESC)
Foreign-key constraints:
    "records_table_id_fkey" FOREIGN KEY (table_id) REFERENCES tables(id) ON DELETE CASCADE
*/

// Record is one row of user data in a table. UpdatedAt advances whenever
// any of its cells change.
type Record struct {
	ID        uuid.UUID            `db:"id"`
	TenantID  sheetcommon.TenantId `db:"tenant_id"`
	SchemaID  uuid.UUID            `db:"schema_id"`
	TableID   uuid.UUID            `db:"table_id"`
	Title     *string              `db:"title"`
	CreatedAt time.Time            `db:"created_at"`
	UpdatedAt time.Time            `db:"updated_at"`
}
