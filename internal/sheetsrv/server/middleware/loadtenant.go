package middleware

import (
	"net/http"
	"regexp"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
	srvconfig "github.com/gridbase/sheetsrv/internal/sheetsrv/config"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

// Tenant ids are short uppercase tokens; the column is varchar(10).
var tenantIdPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// LoadTenantContext resolves the caller's tenant from the X-Tenant-ID
// header and stores it in the request context. Tenant identity is never
// read from the request body. In single user mode a missing header
// falls back to the configured default tenant.
func LoadTenantContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenantID := r.Header.Get("X-Tenant-ID")
		if tenantID == "" && srvconfig.Config().SingleUserMode {
			tenantID = srvconfig.Config().DefaultTenantID
		}
		if !tenantIdPattern.MatchString(tenantID) {
			httpx.ErrInvalidTenantId().Send(w)
			return
		}

		ctx = sheetcommon.SetTenantIdInContext(ctx, sheetcommon.TenantId(tenantID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
