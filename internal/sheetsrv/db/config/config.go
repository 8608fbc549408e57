package config

import (
	"fmt"
	"os"

	srvconfig "github.com/gridbase/sheetsrv/internal/sheetsrv/config"
)

// SheetsDsn builds the Postgres connection string from the server
// configuration. SHEETSRV_DB_PASSWORD overrides the configured password
// so secrets can stay out of config files.
func SheetsDsn() string {
	c := srvconfig.Config().DB
	password := c.Password
	if env := os.Getenv("SHEETSRV_DB_PASSWORD"); env != "" {
		password = env
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, password, c.Name, c.SSLMode)
}
