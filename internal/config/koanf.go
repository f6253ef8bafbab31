package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/catalog-sync/config.yaml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

// Load reads the configuration. path overrides the config file lookup when not empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := resolveKeeperSecrets(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var envMappings = map[string]string{
	"authentik_url":     "authentik.url",
	"authentik_token":   "authentik.token",
	"sync_frequency":    "sync.frequency",
	"sync_timeout":      "sync.timeout",
	"sync_max_pages":    "sync.max_pages",
	"catalog_sink":      "catalog.sink",
	"catalog_url":       "catalog.url",
	"catalog_token":     "catalog.token",
	"catalog_path":      "catalog.path",
	"server_enabled":    "server.enabled",
	"server_addr":       "server.addr",
	"ksm_config_base64": "ksm.config_base64",
	"ksm_record_uid":    "ksm.record_uid",
	"log_level":         "logging.level",
	"log_format":        "logging.format",
	"log_caller":        "logging.caller",
}

// envTransformFunc maps known environment variables to config paths and
// drops everything else: AUTHENTIK_URL -> authentik.url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
