// Package config loads maglinkctl's YAML configuration, generalizing the
// teacher's internal/config.Load (YAML-unmarshal, sane defaults, then
// env-var overrides) down to the handful of settings a magic-link issuer
// needs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is maglinkctl's full configuration.
type Config struct {
	App struct {
		Env string `yaml:"env"`
	} `yaml:"app"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	Token struct {
		TTL              time.Duration `yaml:"ttl"`
		ParamName        string        `yaml:"param_name"`
		MaxClockSkewSecs int64         `yaml:"max_clock_skew_seconds"`
	} `yaml:"token"`

	RateLimit struct {
		Enabled bool          `yaml:"enabled"`
		Max     int64         `yaml:"max"`
		Window  time.Duration `yaml:"window"`
	} `yaml:"rate_limit"`

	Redis struct {
		Addr   string `yaml:"addr"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`

	Audit struct {
		Driver string `yaml:"driver"` // "log" | "postgres"
		DSN    string `yaml:"dsn"`
		Table  string `yaml:"table"`
	} `yaml:"audit"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads path as YAML, applies defaults, then env overrides.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Token.TTL == 0 {
		c.Token.TTL = 15 * time.Minute
	}
	if c.Token.ParamName == "" {
		c.Token.ParamName = "ml"
	}
	if c.Token.MaxClockSkewSecs == 0 {
		c.Token.MaxClockSkewSecs = 120
	}
	if c.RateLimit.Max == 0 {
		c.RateLimit.Max = 5
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "ml:issue:"
	}
	if c.Audit.Driver == "" {
		c.Audit.Driver = "log"
	}
	if c.Audit.Table == "" {
		c.Audit.Table = "magiclink_audit_log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.applyEnvOverrides()
	return &c, nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("METRICS_ADDR"); ok {
		c.Metrics.Addr = v
	}
	if v, ok := os.LookupEnv("TOKEN_TTL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Token.TTL = d
		}
	}
	if v, ok := os.LookupEnv("TOKEN_PARAM_NAME"); ok {
		c.Token.ParamName = v
	}
	if v, ok := os.LookupEnv("TOKEN_MAX_CLOCK_SKEW_SECONDS"); ok {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Token.MaxClockSkewSecs = i
		}
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RateLimit.Enabled = b
		}
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_MAX"); ok {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.RateLimit.Max = i
		}
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_WINDOW"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.RateLimit.Window = d
		}
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("REDIS_PREFIX"); ok {
		c.Redis.Prefix = v
	}
	if v, ok := os.LookupEnv("AUDIT_DRIVER"); ok {
		c.Audit.Driver = v
	}
	if v, ok := os.LookupEnv("AUDIT_DSN"); ok {
		c.Audit.DSN = v
	}
	if v, ok := os.LookupEnv("AUDIT_TABLE"); ok {
		c.Audit.Table = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}
