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
 table_id   | uuid                     | not null |
 name       | character varying(128)   | not null |
 config     | jsonb                    | not null | '{}'::jsonb
 created_at | timestamp with time zone | not null | now()
Indexes:
    "views_pkey" PRIMARY KEY, btree (id)
    "views_table_id_idx" btree (table_id)
Foreign-key constraints:
    "views_table_id_fkey" FOREIGN KEY (table_id) REFERENCES tables(id) ON DELETE CASCADE
*/

// View is a saved per-table presentation config. The config blob is
// opaque to the engine; nothing is evaluated server side.
type View struct {
	ID        uuid.UUID            `db:"id"`
	TenantID  sheetcommon.TenantId `db:"tenant_id"`
	TableID   uuid.UUID            `db:"table_id"`
	Name      string               `db:"name"`
	Config    pgtype.JSONB         `db:"config"`
	CreatedAt time.Time            `db:"created_at"`
}
