// Package config provides configuration management for deckpilot with Viper
// integration. The config file is the preferences store: every other
// component reads and writes operator preferences through it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// File permission constants
const (
	dirPerm  = 0755
	filePerm = 0644
)

// Mode designates the replication role of this instance.
type Mode string

const (
	ModeStandalone Mode = "standalone"
	ModePrimary    Mode = "primary"
	ModeBackup     Mode = "backup"
)

// Config represents the complete configuration for deckpilot.
type Config struct {
	Mode        Mode              `mapstructure:"mode" yaml:"mode" json:"mode"`
	Displays    DisplaysConfig    `mapstructure:"displays" yaml:"displays" json:"displays"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server" json:"server"`
	Replication ReplicationConfig `mapstructure:"replication" yaml:"replication" json:"replication"`
	Presets     []Preset          `mapstructure:"presets" yaml:"presets" json:"presets"`
	Control     ControlConfig     `mapstructure:"control" yaml:"control" json:"control"`
	History     HistoryConfig     `mapstructure:"history" yaml:"history" json:"history"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// DisplaysConfig selects physical displays by numeric identifier. Identifiers
// are re-resolved against attached displays on every open; they are not
// assumed stable across reboots.
type DisplaysConfig struct {
	Presentation int `mapstructure:"presentation" yaml:"presentation" json:"presentation"`
	Notes        int `mapstructure:"notes" yaml:"notes" json:"notes"`
}

// ServerConfig holds the ports of the two HTTP surfaces.
type ServerConfig struct {
	ControlPort  int `mapstructure:"control_port" yaml:"control_port" json:"control_port"`
	SettingsPort int `mapstructure:"settings_port" yaml:"settings_port" json:"settings_port"`
}

// ReplicationConfig lists backup hosts mirrored to when Mode is primary.
type ReplicationConfig struct {
	Backups []string `mapstructure:"backups" yaml:"backups" json:"backups"`
	Port    int      `mapstructure:"port" yaml:"port" json:"port"`
}

// Preset is a named deck URL bound to one of the three preset slots.
type Preset struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	URL  string `mapstructure:"url" yaml:"url" json:"url"`
}

// ControlConfig restricts which source addresses may issue commands.
// An empty list allows everyone.
type ControlConfig struct {
	AllowedIPs []string `mapstructure:"allowed_ips" yaml:"allowed_ips" json:"allowed_ips"`
}

// HistoryConfig holds the open-history store settings.
type HistoryConfig struct {
	Path       string `mapstructure:"path" yaml:"path" json:"path"`
	MaxEntries int    `mapstructure:"max_entries" yaml:"max_entries" json:"max_entries"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

var (
	mu       sync.RWMutex
	current  *Config
	v        *viper.Viper
	onChange []func(*Config)
)

// Load reads (creating if absent) the config file and starts watching it for
// changes. Safe to call once at startup.
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	if err := os.MkdirAll(configDir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	vp := viper.New()
	vp.SetConfigName("config")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(configDir)
	setDefaults(vp)

	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// First run: write defaults and the matching JSON schema.
		if err := vp.SafeWriteConfigAs(filepath.Join(configDir, "config.yaml")); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		if err := GenerateSchemaFile(); err != nil {
			// Schema is a convenience for editors; not fatal.
			fmt.Fprintf(os.Stderr, "deckpilot: schema generation failed: %v\n", err)
		}
	}

	cfg := new(Config)
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	mu.Lock()
	current = cfg
	v = vp
	mu.Unlock()

	vp.OnConfigChange(func(_ fsnotify.Event) {
		reload()
	})
	vp.WatchConfig()

	return cfg, nil
}

func reload() {
	mu.Lock()
	vp := v
	mu.Unlock()
	if vp == nil {
		return
	}

	cfg := new(Config)
	if err := vp.Unmarshal(cfg); err != nil {
		return
	}
	if err := Validate(cfg); err != nil {
		return
	}

	mu.Lock()
	current = cfg
	subs := append([]func(*Config){}, onChange...)
	mu.Unlock()

	for _, fn := range subs {
		fn(cfg)
	}
}

// Get returns the current configuration, loading defaults if Load was never
// called (tests).
func Get() *Config {
	mu.RLock()
	cfg := current
	mu.RUnlock()
	if cfg != nil {
		return cfg
	}
	return DefaultConfig()
}

// OnChange registers a callback invoked after every successful reload or
// Apply.
func OnChange(fn func(*Config)) {
	mu.Lock()
	onChange = append(onChange, fn)
	mu.Unlock()
}

// Snapshot returns the full preference map as persisted.
func Snapshot() map[string]any {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		vp := viper.New()
		setDefaults(vp)
		return vp.AllSettings()
	}
	return v.AllSettings()
}

// Apply merges a partial preference update, validates the result, persists
// it, and notifies subscribers. Unknown keys are rejected by validation of
// the unmarshaled result only insofar as they collide with known types;
// missing keys keep their current values.
//
// The update merges into viper's config layer, never the override layer:
// an override (viper.Set) would shadow later hand edits of the same keys in
// config.yaml and break the file watcher until restart.
func Apply(partial map[string]any) (*Config, error) {
	mu.Lock()
	vp := v
	mu.Unlock()
	if vp == nil {
		return nil, fmt.Errorf("config not loaded")
	}

	if err := vp.MergeConfigMap(nestKeys(partial)); err != nil {
		return nil, fmt.Errorf("failed to merge preferences: %w", err)
	}

	cfg := new(Config)
	if err := vp.Unmarshal(cfg); err != nil {
		_ = vp.ReadInConfig()
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		// Drop the rejected merge by re-reading the untouched file.
		_ = vp.ReadInConfig()
		return nil, err
	}
	if err := vp.WriteConfig(); err != nil {
		return nil, fmt.Errorf("failed to persist config: %w", err)
	}

	mu.Lock()
	current = cfg
	subs := append([]func(*Config){}, onChange...)
	mu.Unlock()

	for _, fn := range subs {
		fn(cfg)
	}
	return cfg, nil
}

// nestKeys expands dotted preference keys ("displays.notes") into the nested
// map shape MergeConfigMap expects.
func nestKeys(partial map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range partial {
		parts := strings.Split(key, ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[p] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = value
	}
	return out
}

// GetConfigFile returns the path of the active config file.
func GetConfigFile() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
