package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/gridbase/sheetsrv/internal/common/httpx"
	"github.com/gridbase/sheetsrv/internal/common/logtrace"
	commonmiddleware "github.com/gridbase/sheetsrv/internal/common/middleware"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/apis"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/config"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/server/middleware"
)

type SheetServer struct {
	Router *chi.Mux
}

func CreateNewServer() (*SheetServer, error) {
	s := &SheetServer{}
	s.Router = chi.NewRouter()
	return s, nil
}

func (s *SheetServer) MountHandlers() {
	s.Router.Use(commonmiddleware.RequestLogger)
	s.Router.Use(commonmiddleware.PanicHandler)
	if config.Config().HandleCORS {
		s.Router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-Tenant-ID"},
			MaxAge:         300,
		}))
	}
	s.Router.Get("/version", s.getVersion)
	s.Router.Route("/", s.mountResourceHandlers)
	if logtrace.IsTraceEnabled() {
		walkFunc := func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
			fmt.Printf("%s %s\n", method, route)
			return nil
		}
		if err := chi.Walk(s.Router, walkFunc); err != nil {
			fmt.Printf("Logging err: %s\n", err.Error())
		}
	}
}

func (s *SheetServer) mountResourceHandlers(r chi.Router) {
	r.Use(middleware.LoadTenantContext)
	r.Use(middleware.LoadScopedDB)
	apis.Router(r)
}

type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	ApiVersion    string `json:"apiVersion"`
}

func (s *SheetServer) getVersion(w http.ResponseWriter, r *http.Request) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	rsp := &GetVersionRsp{
		ServerVersion: "Sheet Server: 0.1.0",
		ApiVersion:    "v1alpha1",
	}
	httpx.SendJsonRsp(w, http.StatusOK, rsp)
}
