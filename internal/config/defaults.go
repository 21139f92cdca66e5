// Package config provides default configuration values for deckpilot.
package config

import "github.com/spf13/viper"

// Default configuration constants
const (
	DefaultControlPort     = 8080
	DefaultSettingsPort    = 8081
	DefaultReplicationPort = 8080

	defaultMaxHistoryEntries = 200

	// PresetSlots is the number of named preset URLs an operator can bind.
	PresetSlots = 3
)

// DefaultConfig returns the default configuration values for deckpilot.
func DefaultConfig() *Config {
	return &Config{
		Mode: ModeStandalone,
		Displays: DisplaysConfig{
			Presentation: 0,
			Notes:        1,
		},
		Server: ServerConfig{
			ControlPort:  DefaultControlPort,
			SettingsPort: DefaultSettingsPort,
		},
		Replication: ReplicationConfig{
			Backups: nil,
			Port:    DefaultReplicationPort,
		},
		Presets: make([]Preset, PresetSlots),
		Control: ControlConfig{},
		History: HistoryConfig{
			Path:       defaultHistoryPath(),
			MaxEntries: defaultMaxHistoryEntries,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultHistoryPath() string {
	p, err := GetDatabaseFile()
	if err != nil {
		return ""
	}
	return p
}

func setDefaults(vp *viper.Viper) {
	d := DefaultConfig()
	vp.SetDefault("mode", string(d.Mode))
	vp.SetDefault("displays.presentation", d.Displays.Presentation)
	vp.SetDefault("displays.notes", d.Displays.Notes)
	vp.SetDefault("server.control_port", d.Server.ControlPort)
	vp.SetDefault("server.settings_port", d.Server.SettingsPort)
	vp.SetDefault("replication.backups", d.Replication.Backups)
	vp.SetDefault("replication.port", d.Replication.Port)
	vp.SetDefault("presets", d.Presets)
	vp.SetDefault("control.allowed_ips", d.Control.AllowedIPs)
	vp.SetDefault("history.path", d.History.Path)
	vp.SetDefault("history.max_entries", d.History.MaxEntries)
	vp.SetDefault("logging.level", d.Logging.Level)
	vp.SetDefault("logging.format", d.Logging.Format)
}
