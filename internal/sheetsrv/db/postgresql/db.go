// Package postgresql implements the sheet store over PostgreSQL with
// raw SQL. Every statement filters by the tenant resolved from the
// request context.
package postgresql

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/gridbase/sheetsrv/internal/common/apperrors"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dberror"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dbmanager"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

type registryManager struct {
	c dbmanager.ScopedConn
}

type dataManager struct {
	c dbmanager.ScopedConn
}

type connectionManager struct {
	c dbmanager.ScopedConn
}

func NewSheetStore(c dbmanager.ScopedConn) (*registryManager, *dataManager, *connectionManager) {
	return &registryManager{c: c}, &dataManager{c: c}, &connectionManager{c: c}
}

func (rm *registryManager) conn() *sql.Conn {
	return rm.c.Conn()
}

func (dm *dataManager) conn() *sql.Conn {
	return dm.c.Conn()
}

func tenantIdFromContext(ctx context.Context) (sheetcommon.TenantId, apperrors.Error) {
	tenantID := sheetcommon.TenantIdFromContext(ctx)
	if tenantID == "" {
		log.Ctx(ctx).Error().Msg("missing tenant ID in context")
		return "", dberror.ErrMissingTenantID
	}
	return tenantID, nil
}

func (cm *connectionManager) AddScope(ctx context.Context, scope, value string) error {
	return cm.c.AddScope(ctx, scope, value)
}

func (cm *connectionManager) DropScope(ctx context.Context, scope string) error {
	return cm.c.DropScope(ctx, scope)
}

func (cm *connectionManager) DropAllScopes(ctx context.Context) error {
	return cm.c.DropAllScopes(ctx)
}

func (cm *connectionManager) Close(ctx context.Context) {
	cm.c.Close(ctx)
}
