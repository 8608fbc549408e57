// Package dbmanager manages the PostgreSQL connection pool and the
// per-request scoped connections handed to the store layer.
package dbmanager

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"
)

type ScopedDb interface {
	// Conn returns a new connection to the database.
	Conn(ctx context.Context) (ScopedConn, error)
	// Stats returns the number of connection requests and returns.
	Stats() (requests, returns uint64)
}

type ScopedConn interface {
	// AddScope sets the given session scope on the connection.
	AddScope(ctx context.Context, scope, value string) error
	// DropScope resets the given scope on the connection.
	DropScope(ctx context.Context, scope string) error
	// DropAllScopes resets all configured scopes.
	DropAllScopes(ctx context.Context) error
	// Conn returns the underlying connection.
	Conn() *sql.Conn
	// Close drops all scopes and returns the connection to the pool.
	Close(ctx context.Context)
}

func NewScopedDb(ctx context.Context, dbtype string, configuredScopes []string) ScopedDb {
	switch dbtype {
	case "postgresql":
		db, err := NewPostgresqlDb(configuredScopes)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to create PostgreSQL DB")
			return nil
		}
		return db
	}
	return nil
}
