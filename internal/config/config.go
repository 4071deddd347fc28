package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"stickler/engine"
)

// Config is the process-wide configuration: HTTP server settings plus
// comparison defaults. RecallWithFD and DocumentNonMatches reach the
// engine through EngineOptions; SchemaDir and DefaultMatchThreshold are
// loaded but not read by schema decoding or the engine.
type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	SchemaDir             string
	DefaultMatchThreshold float64
	RecallWithFD          bool
	DocumentNonMatches    bool
}

// fileConfig mirrors Config's TOML-exchangeable fields; field names are
// lowercased by BurntSushi/toml's default key-matching.
type fileConfig struct {
	Host                  string
	Port                  int
	AllowOrigins          []string `toml:"allow_origins"`
	LogLevel              string   `toml:"log_level"`
	MaxUploadMB           int      `toml:"max_upload_mb"`
	LogFile               string   `toml:"log_file"`
	SchemaDir             string   `toml:"schema_dir"`
	DefaultMatchThreshold float64  `toml:"default_match_threshold"`
	RecallWithFD          bool     `toml:"recall_with_fd"`
	DocumentNonMatches    bool     `toml:"document_non_matches"`
}

// Load builds a Config from, in increasing priority: the built-in
// defaults, a TOML file at path (if path is non-empty and exists), and
// environment variables. This mirrors the teacher's plain-env Load but
// adds a file layer so a deployment can check in a base config and only
// override a handful of values with env vars per host.
func Load(path string) Config {
	cfg := Config{
		Host:                  "127.0.0.1",
		Port:                  8082,
		AllowOrigins:          []string{"*"},
		LogLevel:              "info",
		MaxUploadMB:           256,
		LogFile:               "logs/stickler.log",
		SchemaDir:             "schemas",
		DefaultMatchThreshold: 0.7,
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			var fc fileConfig
			if _, decErr := toml.DecodeFile(path, &fc); decErr == nil {
				applyFile(&cfg, fc)
			}
		}
	}

	cfg.Host = getenv("HOST", cfg.Host)
	if v, ok := getenvInt("PORT"); ok {
		cfg.Port = v
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		cfg.AllowOrigins = strings.Split(v, ",")
	}
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	if v, ok := getenvInt("MAX_UPLOAD_MB"); ok {
		cfg.MaxUploadMB = v
	}
	cfg.LogFile = getenv("LOG_FILE", cfg.LogFile)
	cfg.SchemaDir = getenv("SCHEMA_DIR", cfg.SchemaDir)
	if v, ok := getenvFloat("DEFAULT_MATCH_THRESHOLD"); ok {
		cfg.DefaultMatchThreshold = v
	}
	if v, ok := getenvBool("RECALL_WITH_FD"); ok {
		cfg.RecallWithFD = v
	}
	if v, ok := getenvBool("DOCUMENT_NON_MATCHES"); ok {
		cfg.DocumentNonMatches = v
	}

	return cfg
}

func applyFile(cfg *Config, fc fileConfig) {
	if fc.Host != "" {
		cfg.Host = fc.Host
	}
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if len(fc.AllowOrigins) > 0 {
		cfg.AllowOrigins = fc.AllowOrigins
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.MaxUploadMB != 0 {
		cfg.MaxUploadMB = fc.MaxUploadMB
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.SchemaDir != "" {
		cfg.SchemaDir = fc.SchemaDir
	}
	if fc.DefaultMatchThreshold != 0 {
		cfg.DefaultMatchThreshold = fc.DefaultMatchThreshold
	}
	cfg.RecallWithFD = fc.RecallWithFD
	cfg.DocumentNonMatches = fc.DocumentNonMatches
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// EngineOptions translates the process-wide comparison defaults into
// engine.Options for callers (the CLI batch-compare path) that don't
// take per-request options from an HTTP body.
func (c Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.RecallWithFD = c.RecallWithFD
	opts.DocumentNonMatches = c.DocumentNonMatches
	return opts
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string) (int, bool) {
	v := os.Getenv(k)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func getenvFloat(k string) (float64, bool) {
	v := os.Getenv(k)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	return f, err == nil
}

func getenvBool(k string) (bool, bool) {
	v := os.Getenv(k)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	return b, err == nil
}
