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
 name        | character varying(128)   | not null |
 description | character varying(1024)  |          |
 created_at  | timestamp with time zone | not null | now()
Indexes:
    "schemas_pkey" PRIMARY KEY, btree (id)
    "schemas_tenant_lower_name_ux" UNIQUE, btree (tenant_id, lower(name))
*/

// Schema is a tenant-owned namespace grouping tables, analogous to a
// workbook.
type Schema struct {
	ID          uuid.UUID            `db:"id"`
	TenantID    sheetcommon.TenantId `db:"tenant_id"`
	Name        string               `db:"name"`
	Description string               `db:"description"`
	CreatedAt   time.Time            `db:"created_at"`
}
