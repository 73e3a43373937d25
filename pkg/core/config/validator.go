package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

var validLogLevels = map[string]bool{
	"ERROR":   true,
	"WARN":    true,
	"WARNING": true,
	"INFO":    true,
	"DEBUG":   true,
}

// Validate performs structural validation of resolved settings.
func Validate(s *Settings) error {
	if s == nil {
		return fmt.Errorf("settings are nil")
	}

	if strings.TrimSpace(s.Home) == "" {
		return fmt.Errorf("home cannot be empty")
	}

	if err := validateLocalConfigFile(s.LocalConfigFile); err != nil {
		return fmt.Errorf("local config file: %w", err)
	}

	if !validLogLevels[strings.ToUpper(strings.TrimSpace(s.LogLevel))] {
		return fmt.Errorf("log level must be one of ERROR, WARN, INFO or DEBUG, got %q", s.LogLevel)
	}

	if s.MaxCommandHistory < 1 {
		return fmt.Errorf("max command history must be positive, got %d", s.MaxCommandHistory)
	}

	return nil
}

func validateLocalConfigFile(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}

	if filepath.Base(name) != name {
		return fmt.Errorf("%q must be a file name, not a path", name)
	}

	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return nil
	default:
		return fmt.Errorf("%q must have a .yaml or .yml extension", name)
	}
}
