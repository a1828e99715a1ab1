package config

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// LoadFile decodes the TOML file at path over cfg. A missing file is not an
// error. Keys the file sets replace the values already in cfg; keys it omits
// leave them alone.
func LoadFile(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat config: %w", err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	return nil
}

// ApplyEnv overrides cfg from BEYONDWORDS_* variables in environ. A nil
// environ reads the process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the file at path,
// then the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if err := LoadFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg, nil); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
