// Package config resolves runtime settings: built-in defaults, then an
// optional YAML file named by SPORTBUDDY_CONFIG, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile     = "SPORTBUDDY_CONFIG"
	EnvPort           = "PORT"
	EnvReplyDelayMin  = "SPORTBUDDY_REPLY_DELAY_MIN"
	EnvReplyDelayMax  = "SPORTBUDDY_REPLY_DELAY_MAX"
	EnvSessionTTL     = "SPORTBUDDY_SESSION_TTL"
	EnvAllowedOrigins = "SPORTBUDDY_ALLOWED_ORIGINS"
	EnvSeed           = "SPORTBUDDY_SEED"
)

type Config struct {
	Port string `yaml:"port"`
	// Auto-replies arrive after a random delay in [ReplyDelayMin, ReplyDelayMax].
	ReplyDelayMin  time.Duration `yaml:"reply_delay_min"`
	ReplyDelayMax  time.Duration `yaml:"reply_delay_max"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	// Seed fixes the content generator's random source. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Port:          "8080",
		ReplyDelayMin: 1500 * time.Millisecond,
		ReplyDelayMax: 2500 * time.Millisecond,
		SessionTTL:    24 * time.Hour,
	}
}

// Load resolves the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom resolves the configuration using getenv for lookups.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv(EnvConfigFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if v := getenv(EnvPort); v != "" {
		cfg.Port = v
	}
	if err := durationFromEnv(getenv, EnvReplyDelayMin, &cfg.ReplyDelayMin); err != nil {
		return cfg, err
	}
	if err := durationFromEnv(getenv, EnvReplyDelayMax, &cfg.ReplyDelayMax); err != nil {
		return cfg, err
	}
	if err := durationFromEnv(getenv, EnvSessionTTL, &cfg.SessionTTL); err != nil {
		return cfg, err
	}
	if v := getenv(EnvAllowedOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}
	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q: %w", EnvSeed, v, err)
		}
		cfg.Seed = seed
	}

	return cfg, cfg.Validate()
}

// Validate reports settings the server cannot run with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.ReplyDelayMin < 0 || c.ReplyDelayMax < 0 {
		return fmt.Errorf("reply delays must not be negative")
	}
	if c.ReplyDelayMax == 0 {
		return fmt.Errorf("reply delay max must be positive")
	}
	if c.ReplyDelayMin > c.ReplyDelayMax {
		return fmt.Errorf("reply delay min %v exceeds max %v", c.ReplyDelayMin, c.ReplyDelayMax)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

func durationFromEnv(getenv func(string) string, key string, dst *time.Duration) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
