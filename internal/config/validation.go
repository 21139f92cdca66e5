package config

import (
	"fmt"
	"net"
)

// Validate checks configuration consistency. Called on load, reload, and
// every preference update; an invalid update is rejected without touching
// the active config.
func Validate(cfg *Config) error {
	switch cfg.Mode {
	case ModeStandalone, ModePrimary, ModeBackup:
	default:
		return fmt.Errorf("mode must be one of standalone, primary, backup (got %q)", cfg.Mode)
	}

	if err := validatePort("server.control_port", cfg.Server.ControlPort); err != nil {
		return err
	}
	if err := validatePort("server.settings_port", cfg.Server.SettingsPort); err != nil {
		return err
	}
	if err := validatePort("replication.port", cfg.Replication.Port); err != nil {
		return err
	}
	if cfg.Server.ControlPort == cfg.Server.SettingsPort {
		return fmt.Errorf("control and settings ports must differ (both %d)", cfg.Server.ControlPort)
	}

	if cfg.Displays.Presentation < 0 || cfg.Displays.Notes < 0 {
		return fmt.Errorf("display identifiers must be >= 0")
	}

	if len(cfg.Presets) > PresetSlots {
		return fmt.Errorf("at most %d presets are supported (got %d)", PresetSlots, len(cfg.Presets))
	}

	if cfg.Mode == ModePrimary && len(cfg.Replication.Backups) == 0 {
		return fmt.Errorf("primary mode requires at least one backup host")
	}

	for _, ip := range cfg.Control.AllowedIPs {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("control.allowed_ips entry %q is not a valid IP", ip)
		}
	}

	if cfg.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must be >= 0")
	}

	return nil
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535 (got %d)", name, port)
	}
	return nil
}
