package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	SSLMode  string `toml:"ssl_mode"`
}

type ConfigParam struct {
	ServerPort      string   `toml:"server_port"`
	HandleCORS      bool     `toml:"handle_cors"`
	MaxPageSize     int      `toml:"max_page_size"`
	SingleUserMode  bool     `toml:"single_user_mode"`
	DefaultTenantID string   `toml:"default_tenant_id"`
	DB              DBConfig `toml:"db"`
}

var cfg *ConfigParam

func Config() *ConfigParam {
	return cfg
}

// LoadConfig reads the TOML config file; an empty filename loads
// defaults suitable for local development.
func LoadConfig(filename string) error {
	if filename == "" {
		cfg = defaultConfig()
		return nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	var cp ConfigParam
	if _, err := toml.Decode(string(content), &cp); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}
	applyDefaults(&cp)
	cfg = &cp
	return nil
}

func defaultConfig() *ConfigParam {
	c := &ConfigParam{}
	applyDefaults(c)
	return c
}

func applyDefaults(c *ConfigParam) {
	if c.ServerPort == "" {
		c.ServerPort = "8170"
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 200
	}
	if c.DB.Host == "" {
		c.DB.Host = "localhost"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.DB.Name == "" {
		c.DB.Name = "sheetsrv"
	}
	if c.DB.User == "" {
		c.DB.User = "sheets_api"
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}
	if c.SingleUserMode && c.DefaultTenantID == "" {
		c.DefaultTenantID = "T00000"
	}
}

func init() {
	cfg = defaultConfig()
}
