package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

// LoadScopedDB checks out a pooled connection for the request, pins the
// tenant scope on it, and releases it when the request finishes.
func LoadScopedDB(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := db.ConnCtx(r.Context())
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("unable to get db connection")
			httpx.ErrApplicationError("unable to reach data store").Send(w)
			return
		}
		defer db.DB(ctx).Close(ctx)

		if tenantID := sheetcommon.TenantIdFromContext(ctx); tenantID != "" {
			if err := db.DB(ctx).AddScope(ctx, db.Scope_TenantId, string(tenantID)); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("unable to set tenant scope")
				httpx.ErrApplicationError("unable to reach data store").Send(w)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
