// Package config loads the synchronizer configuration.
//
// Sources are layered: built-in defaults, then an optional YAML file
// (CONFIG_PATH or ./config.yaml), then environment variables. When
// KSM_CONFIG_BASE64 is set and the Authentik credentials are still missing,
// they are read from a Keeper Secrets Manager record.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"keepersecurity.com/ksm-catalog-sync/authentik"
	"keepersecurity.com/ksm-catalog-sync/internal/logging"
	"keepersecurity.com/ksm-catalog-sync/provider"
)

const (
	SinkHttp   = "http"
	SinkYaml   = "yaml"
	SinkMemory = "memory"
)

type Config struct {
	Authentik authentik.EndpointParameters `koanf:"authentik"`
	Sync      SyncConfig                   `koanf:"sync"`
	Catalog   CatalogConfig                `koanf:"catalog"`
	Server    ServerConfig                 `koanf:"server"`
	Keeper    KeeperConfig                 `koanf:"ksm"`
	Logging   logging.Config               `koanf:"logging"`
}

type SyncConfig struct {
	Frequency time.Duration `koanf:"frequency" validate:"min=1s"`
	Timeout   time.Duration `koanf:"timeout" validate:"min=0"`
	MaxPages  int           `koanf:"max_pages" validate:"min=1"`
}

type CatalogConfig struct {
	// Sink is http, yaml or memory (dry run).
	Sink  string `koanf:"sink" validate:"required,oneof=http yaml memory"`
	Url   string `koanf:"url" validate:"required_if=Sink http,omitempty,url"`
	Token string `koanf:"token"`
	Path  string `koanf:"path" validate:"required_if=Sink yaml"`
}

type ServerConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"required_if=Enabled true"`
}

type KeeperConfig struct {
	ConfigBase64 string `koanf:"config_base64"`
	RecordUid    string `koanf:"record_uid"`
}

func defaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			Frequency: provider.DefaultRefreshPeriod,
			Timeout:   provider.DefaultRefreshLimit,
			MaxPages:  authentik.DefaultMaxPages,
		},
		Catalog: CatalogConfig{
			Sink: SinkYaml,
			Path: "catalog-info.yaml",
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() (err error) {
	if err = validate.Struct(c); err != nil {
		err = fmt.Errorf("invalid configuration: %w", err)
	}
	return
}
