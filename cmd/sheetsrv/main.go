package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/gridbase/sheetsrv/internal/common/logtrace"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/config"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/db/dberror"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/server"
	"github.com/gridbase/sheetsrv/internal/sheetsrv/sheetcommon"
)

func init() {
	logtrace.InitLogger()
}

type cmdoptions struct {
	configFile *string
}

func main() {
	slog := log.With().Str("state", "init").Logger()
	opt := parseFlags()

	slog.Info().Str("config_file", *opt.configFile).Msg("loading config file")
	if err := config.LoadConfig(*opt.configFile); err != nil {
		slog.Error().Str("config_file", *opt.configFile).Err(err).Msg("unable to load config file")
		os.Exit(1)
	}
	if config.Config().ServerPort == "" {
		slog.Error().Msg("server port not defined")
		os.Exit(1)
	}

	if err := db.Init(context.Background()); err != nil {
		slog.Error().Err(err).Msg("unable to create db pool")
		os.Exit(1)
	}

	if config.Config().SingleUserMode {
		slog.Info().Msg("single user mode enabled")
		if err := createDefaultTenant(); err != nil {
			slog.Error().Err(err).Msg("unable to create default tenant")
			os.Exit(1)
		}
	}

	s, err := server.CreateNewServer()
	if err != nil {
		slog.Error().Err(err).Msg("unable to create server")
		os.Exit(1)
	}
	s.MountHandlers()

	slog.Info().Str("port", config.Config().ServerPort).Msg("starting server")
	if err := http.ListenAndServe(":"+config.Config().ServerPort, s.Router); err != nil {
		slog.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func createDefaultTenant() error {
	ctx, err := db.ConnCtx(context.Background())
	if err != nil {
		return err
	}
	defer db.DB(ctx).Close(ctx)
	tenantID := sheetcommon.TenantId(config.Config().DefaultTenantID)
	if err := db.DB(ctx).CreateTenant(ctx, tenantID); err != nil {
		if !err.Is(dberror.ErrAlreadyExists) {
			return err
		}
	}
	return nil
}

func parseFlags() cmdoptions {
	var opt cmdoptions
	opt.configFile = flag.String("config", "", "Path to the config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}
