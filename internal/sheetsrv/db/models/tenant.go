package models

import (
	"time"

	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

/*
   Column   |           Type           | Nullable | Default
------------+--------------------------+----------+---------
 tenant_id  | character varying(10)    | not null |
 created_at | timestamp with time zone | not null | now()
Indexes:
    "tenants_pkey" PRIMARY KEY, btree (tenant_id)
*/

type Tenant struct {
	TenantID  sheetcommon.TenantId `db:"tenant_id"`
	CreatedAt time.Time            `db:"created_at"`
}
