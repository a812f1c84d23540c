// Package config loads server settings from defaults, an optional YAML file
// and CHOREBOARD_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CHOREBOARD"

type Config struct {
	Port              string        `mapstructure:"port"`
	DBPath            string        `mapstructure:"db_path"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	MaxPendingPerUser int           `mapstructure:"max_pending_per_user"`
	// TrustedProxies lists the IPs or CIDR prefixes of reverse proxies whose
	// X-Forwarded-For header is believed.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "choreboard.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("session_ttl", 30*24*time.Hour)
	v.SetDefault("max_pending_per_user", 5)
	v.SetDefault("trusted_proxies", []string{})
}

// Load reads the configuration. path may be empty; a missing file is not an
// error and leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	if c.DBPath == "" {
		return errors.New("config: db_path is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.MaxPendingPerUser < 1 {
		return fmt.Errorf("config: max_pending_per_user must be at least 1, got %d", c.MaxPendingPerUser)
	}
	for _, p := range c.TrustedProxies {
		if !validProxy(p) {
			return fmt.Errorf("config: trusted_proxies entry %q is not an IP or CIDR prefix", p)
		}
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}
