// Package sheetcommon provides context management utilities shared by
// the sheet service layers. Every store call resolves the tenant from
// the request context set here.
package sheetcommon

import (
	"context"
)

// TenantId identifies a tenant. It is opaque to the engine; all queries
// and writes are filtered by it.
type TenantId string

type ctxKeyType string

const ctxTenantIdKey ctxKeyType = "SheetTenantId"

// SetTenantIdInContext sets the tenant ID in the provided context.
func SetTenantIdInContext(ctx context.Context, tenantId TenantId) context.Context {
	return context.WithValue(ctx, ctxTenantIdKey, tenantId)
}

// TenantIdFromContext retrieves the tenant ID from the provided context.
func TenantIdFromContext(ctx context.Context) TenantId {
	if tenantId, ok := ctx.Value(ctxTenantIdKey).(TenantId); ok {
		return tenantId
	}
	return ""
}
