// SPDX-License-Identifier: AGPL-3.0-or-later

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

// DefaultConfigPaths lists the paths where a config file is searched for,
// in priority order. The first one found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/yt-sheets-orchestrator/config.yaml",
}

// ConfigPathEnvVar overrides the config file search with an explicit path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces the environment variables this program reads, so an
// unrelated WORKER_NAME in the shell can't leak in by accident... except
// that spec.md mandates the bare names WORKER_NAME, SPREADSHEET_ID, and
// SERVICE_ACCOUNT_FILE with no prefix, so envPrefix stays empty and the
// transform below maps those three flat names explicitly.
const envPrefix = ""

// Load builds a Config by layering, lowest to highest priority: built-in
// defaults, an optional YAML config file, then environment variables. The
// result is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
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

// flatEnvVars maps the spec-mandated flat environment variable names to
// their koanf path, since every other setting uses SECTION_FIELD style.
var flatEnvVars = map[string]string{
	"WORKER_NAME":          "worker_name",
	"SPREADSHEET_ID":       "spreadsheet_id",
	"SERVICE_ACCOUNT_FILE": "service_account_file",
}

// envTransformFunc maps GATEWAY_BASE_INTERVAL -> gateway.base_interval,
// with the three flat, unprefixed spec variables handled as exceptions.
func envTransformFunc(key string) string {
	if path, ok := flatEnvVars[key]; ok {
		return path
	}

	lower := strings.ToLower(key)
	for _, section := range []string{
		"gateway", "registry", "election", "orchestrator", "rate_cache", "http", "logging",
	} {
		prefix := section + "_"
		if strings.HasPrefix(lower, prefix) {
			return section + "." + strings.TrimPrefix(lower, prefix)
		}
	}
	return lower
}
