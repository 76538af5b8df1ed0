// Package config loads the autoparse command configuration from a YAML or
// JSON file and AUTOPARSE_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AUTOPARSE_"

// Source kinds.
const (
	SourceFile  = "file"
	SourceRedis = "redis"
)

// Config is the runtime configuration of the autoparse command.
type Config struct {
	LogLevel string `json:"log_level" mapstructure:"log_level"`

	// Schema source
	Source     string   `json:"source" mapstructure:"source"`
	SchemaDir  string   `json:"schema_dir" mapstructure:"schema_dir"`
	SchemaBase string   `json:"schema_base" mapstructure:"schema_base"`
	Preload    []string `json:"preload" mapstructure:"preload"`

	HTTP  HTTPConfig  `json:"http" mapstructure:"http"`
	Redis RedisConfig `json:"redis" mapstructure:"redis"`
	MCP   MCPConfig   `json:"mcp" mapstructure:"mcp"`
}

type HTTPConfig struct {
	Addr            string        `json:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Addr     string        `json:"addr" mapstructure:"addr"`
	Password string        `json:"password" mapstructure:"password"`
	DB       int           `json:"db" mapstructure:"db"`
	Prefix   string        `json:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `json:"ttl" mapstructure:"ttl"`
}

type MCPConfig struct {
	Transport string `json:"transport" mapstructure:"transport"`
	Port      int    `json:"port" mapstructure:"port"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		LogLevel:  "info",
		Source:    SourceFile,
		SchemaDir: "schemas",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "autoparse:schema:",
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Port:      8081,
		},
	}
}

// envKeys maps environment variables (without EnvPrefix) to config paths.
var envKeys = map[string][]string{
	"LOG_LEVEL":             {"log_level"},
	"SOURCE":                {"source"},
	"SCHEMA_DIR":            {"schema_dir"},
	"SCHEMA_BASE":           {"schema_base"},
	"PRELOAD":               {"preload"},
	"HTTP_ADDR":             {"http", "addr"},
	"HTTP_SHUTDOWN_TIMEOUT": {"http", "shutdown_timeout"},
	"REDIS_ADDR":            {"redis", "addr"},
	"REDIS_PASSWORD":        {"redis", "password"},
	"REDIS_DB":              {"redis", "db"},
	"REDIS_PREFIX":          {"redis", "prefix"},
	"REDIS_TTL":             {"redis", "ttl"},
	"MCP_TRANSPORT":         {"mcp", "transport"},
	"MCP_PORT":              {"mcp", "port"},
}

// Load reads the YAML or JSON file at path over the defaults and applies
// AUTOPARSE_* environment overrides. An empty path, or a path that does not
// exist, yields the defaults plus the environment.
func Load(path string) (Config, error) {
	raw := make(map[string]any)
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		default:
			if raw, err = parse(path, data); err != nil {
				return Config{}, err
			}
		}
	}
	overlayEnv(raw, os.LookupEnv)
	return decode(raw)
}

func parse(path string, data []byte) (map[string]any, error) {
	raw := make(map[string]any)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return raw, nil
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	return raw, nil
}

func overlayEnv(raw map[string]any, lookup func(string) (string, bool)) {
	for name, path := range envKeys {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		node := raw
		for _, key := range path[:len(path)-1] {
			child, ok := node[key].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[key] = child
			}
			node = child
		}
		node[path[len(path)-1]] = v
	}
}

func decode(raw map[string]any) (Config, error) {
	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
