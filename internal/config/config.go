// Package config holds runtime settings for the VeloCards CLI.
//
// Sources are layered, later ones winning: built-in defaults, then a JSON
// config file, then VELOCARDS_* environment variables, then command-line
// flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/velocards/velocards-cli/internal/timex"
)

// Defaults.
const (
	DefaultAPIBaseURL   = "https://api.velocards.com/api/v1"
	DefaultWebBaseURL   = "https://app.velocards.com"
	DefaultPollInterval = 30 * time.Second
)

// Environment variable names.
const (
	EnvAPIBaseURL = "VELOCARDS_API_URL"
	EnvWebBaseURL = "VELOCARDS_WEB_URL"
	EnvDataDir    = "VELOCARDS_DATA_DIR"
	EnvConfigFile = "VELOCARDS_CONFIG"
	EnvDebug      = "VELOCARDS_DEBUG"
)

// Config holds runtime settings for the CLI.
type Config struct {
	// APIBaseURL is the root of the VeloCards API, including the version
	// prefix.
	APIBaseURL string

	// WebBaseURL is the root of the VeloCards web dashboard. Relative
	// page paths (email verification, and so on) resolve against it; the
	// API host serves no web pages.
	WebBaseURL string

	// DataDir holds the token file and the offline cache database.
	// Defaults to ~/.velocards.
	DataDir string

	// PollInterval is how often the dashboard refreshes itself.
	PollInterval time.Duration

	// Debug enables verbose logging to the log file in DataDir.
	Debug bool
}

func (c *Config) loadDefaults() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	c.APIBaseURL = DefaultAPIBaseURL
	c.WebBaseURL = DefaultWebBaseURL
	c.DataDir = filepath.Join(home, ".velocards")
	c.PollInterval = DefaultPollInterval
	return nil
}

// jsonConfig is the config-file shape. timex.Duration accepts intervals
// as strings like "30s" or as integer nanoseconds.
type jsonConfig struct {
	APIBaseURL   string         `json:"api_base_url"`
	WebBaseURL   string         `json:"web_base_url"`
	DataDir      string         `json:"data_dir"`
	PollInterval timex.Duration `json:"poll_interval"`
	Debug        *bool          `json:"debug"`
}

// loadJSON overlays cfg with values from the JSON file at path. A missing
// file is fine when explicit is false (the default location is optional);
// a path the user named must exist.
func (c *Config) loadJSON(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.APIBaseURL != "" {
		c.APIBaseURL = jc.APIBaseURL
	}
	if jc.WebBaseURL != "" {
		c.WebBaseURL = jc.WebBaseURL
	}
	if jc.DataDir != "" {
		c.DataDir = jc.DataDir
	}
	if jc.PollInterval.Duration > 0 {
		c.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.Debug != nil {
		c.Debug = *jc.Debug
	}
	return nil
}

func (c *Config) loadEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIBaseURL); ok && v != "" {
		c.APIBaseURL = v
	}
	if v, ok := lookup(EnvWebBaseURL); ok && v != "" {
		c.WebBaseURL = v
	}
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	if v, ok := lookup(EnvDebug); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// Load builds the effective configuration from args (flags without the
// program name, usually os.Args[1:]) over the process environment.
func Load(args []string) (*Config, error) {
	return load(args, os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	if err := cfg.loadDefaults(); err != nil {
		return nil, err
	}

	// The config file path itself can come from the environment or a flag;
	// a pre-pass over the flags finds it before the real parse.
	configFile, explicit := filepath.Join(cfg.DataDir, "config.json"), false
	if v, ok := lookup(EnvConfigFile); ok && v != "" {
		configFile, explicit = v, true
	}
	if v := peekFlag(args, "config"); v != "" {
		configFile, explicit = v, true
	}
	if err := cfg.loadJSON(configFile, explicit); err != nil {
		return nil, err
	}

	cfg.loadEnv(lookup)

	fs := flag.NewFlagSet("velocards", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String("config", "", "path to config file")
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "VeloCards API base URL")
	fs.StringVar(&cfg.WebBaseURL, "web", cfg.WebBaseURL, "VeloCards web dashboard base URL")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the token file and offline cache")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "verbose logging")
	poll := fs.Duration("poll", cfg.PollInterval, "dashboard refresh interval")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	cfg.PollInterval = *poll

	return cfg, nil
}

// peekFlag extracts the value of -name or --name from args without a full
// flag parse, supporting both "-name value" and "-name=value".
func peekFlag(args []string, name string) string {
	for i, a := range args {
		a = strings.TrimPrefix(a, "-")
		a = strings.TrimPrefix(a, "-")
		if a == name {
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		}
		if v, found := strings.CutPrefix(a, name+"="); found {
			return v
		}
	}
	return ""
}
