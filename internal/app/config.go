package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dalkeystore/internal/store"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home             string `mapstructure:"home" yaml:"home"`                           // state directory, e.g. $HOME/.dalkeystore
	LogLevel         string `mapstructure:"log_level" yaml:"log_level"`                 // debug, info, warn, error
	LockMemory       bool   `mapstructure:"lock_memory" yaml:"lock_memory"`             // mlock key buffers
	MaxKeyMemory     int    `mapstructure:"max_key_memory" yaml:"max_key_memory"`       // byte budget for key buffers, 0 = none
	DuplicateTickets bool   `mapstructure:"duplicate_tickets" yaml:"duplicate_tickets"` // allow several contexts per ticket
	SnapshotFile     string `mapstructure:"snapshot_file" yaml:"snapshot_file"`         // defaults to <home>/keystore.snap
	Passphrase       string `mapstructure:"passphrase" yaml:"-"`                        // never written back to disk
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"home":              "home",
	"log-level":         "log_level",
	"lock-memory":       "lock_memory",
	"max-key-memory":    "max_key_memory",
	"duplicate-tickets": "duplicate_tickets",
	"snapshot":          "snapshot_file",
	"passphrase":        "passphrase",
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	home := ".dalkeystore"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".dalkeystore")
	}
	return map[string]any{
		"home":              home,
		"log_level":         "info",
		"lock_memory":       false,
		"max_key_memory":    0,
		"duplicate_tickets": false,
		"snapshot_file":     "",
		"passphrase":        "",
	}
}

// ConfigPath returns the location of dalkeystore.yaml for the user or the
// whole system.
func ConfigPath(system bool) (string, error) {
	var dir string
	if system {
		switch runtime.GOOS {
		case "windows":
			dir = filepath.Join(os.Getenv("ProgramData"), "dalkeystore")
		default:
			dir = "/etc/dalkeystore"
		}
	} else {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		dir = filepath.Join(base, "dalkeystore")
	}
	return filepath.Join(dir, "dalkeystore.yaml"), nil
}

// LoadConfig layers defaults, the config file, DALKEYSTORE_* environment
// variables and the flags set on cmd, in increasing precedence. explicit,
// when non-empty, names the config file to use instead of searching.
func LoadConfig(cmd *cobra.Command, explicit string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("dalkeystore")
		v.SetConfigType("yaml")
		if p, err := ConfigPath(false); err == nil {
			v.AddConfigPath(filepath.Dir(p))
		}
		if p, err := ConfigPath(true); err == nil {
			v.AddConfigPath(filepath.Dir(p))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless the caller named one.
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("dalkeystore")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if c.SnapshotFile == "" {
		c.SnapshotFile = filepath.Join(c.Home, store.DefaultSnapshotFile)
	}
	return c, nil
}

// WriteConfigFile renders c as YAML to path, creating its directory.
func WriteConfigFile(c Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0o600)
}

// YAML renders c the way WriteConfigFile stores it.
func (c Config) YAML() ([]byte, error) { return yaml.Marshal(c) }
