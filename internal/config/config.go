// Package config resolves the flags and optional TOML file that
// configure the fingerprintd serve command, flags winning over the
// file whenever both set the same field.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds everything the serve command needs to start listening.
type Config struct {
	Addr        string `toml:"addr"`
	MetricsAddr string `toml:"metrics_addr"`
	CertFile    string `toml:"cert"`
	KeyFile     string `toml:"key"`
	LogFile     string `toml:"log_file"`
	Development bool   `toml:"development"`
}

// Default returns the zero-value config's reasonable starting point.
func Default() Config {
	return Config{
		Addr:        ":8443",
		MetricsAddr: ":9090",
	}
}

// Load reads path as a TOML file and overlays non-zero fields onto
// base. A missing path is not an error: it simply returns base
// unchanged, matching caddy's "no config file is fine" behavior.
func Load(base Config, path string) (Config, error) {
	if path == "" {
		return base, nil
	}

	var file Config
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, fmt.Errorf("reading config file %s: %w", path, err)
	}

	merged := base
	if file.Addr != "" {
		merged.Addr = file.Addr
	}
	if file.MetricsAddr != "" {
		merged.MetricsAddr = file.MetricsAddr
	}
	if file.CertFile != "" {
		merged.CertFile = file.CertFile
	}
	if file.KeyFile != "" {
		merged.KeyFile = file.KeyFile
	}
	if file.LogFile != "" {
		merged.LogFile = file.LogFile
	}
	if file.Development {
		merged.Development = true
	}
	return merged, nil
}

// ApplyFlags overlays every non-empty string flag, and Development when
// true, onto cfg, giving flags the final say over the config file. A
// flag left at its zero value does not override cfg.
func ApplyFlags(cfg Config, flags Flags) Config {
	if flags.Addr != "" {
		cfg.Addr = flags.Addr
	}
	if flags.MetricsAddr != "" {
		cfg.MetricsAddr = flags.MetricsAddr
	}
	if flags.CertFile != "" {
		cfg.CertFile = flags.CertFile
	}
	if flags.KeyFile != "" {
		cfg.KeyFile = flags.KeyFile
	}
	if flags.LogFile != "" {
		cfg.LogFile = flags.LogFile
	}
	if flags.Development {
		cfg.Development = true
	}
	return cfg
}

// Flags mirrors the subset of cmd/fingerprintd's pflag.FlagSet that
// overrides a Config. Kept separate from *pflag.FlagSet so this
// package stays testable without a live flag set.
type Flags struct {
	Addr        string
	MetricsAddr string
	CertFile    string
	KeyFile     string
	LogFile     string
	Development bool
}
