package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sources are the inputs Resolve reads besides the flags.
type Sources struct {
	// LookupEnv reads an environment variable. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// UserHomeDir returns the operator's home directory. Defaults to
	// os.UserHomeDir.
	UserHomeDir func() (string, error)
}

// Resolve builds the settings: non-empty fields of flags win over the
// environment, which wins over the defaults. The result is validated.
//
// Example:
//
//	settings, err := config.Resolve(flags, config.Sources{})
//	if err != nil {
//	    return err
//	}
func Resolve(flags Settings, sources Sources) (*Settings, error) {
	lookup := sources.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	homeDir := sources.UserHomeDir
	if homeDir == nil {
		homeDir = os.UserHomeDir
	}

	s := flags
	fromEnv(&s.Home, lookup, EnvHome)
	fromEnv(&s.LogLevel, lookup, EnvLogLevel)
	fromEnv(&s.Kubeconfig, lookup, EnvKubeconfig)
	if err := fromEnvInt(&s.MaxCommandHistory, lookup, EnvMaxCommandHistory); err != nil {
		return nil, err
	}

	if s.Home == "" {
		home, err := homeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		setDefaults(&s, home)
	} else {
		setDefaults(&s, "")
	}

	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func fromEnvInt(field *int, lookup func(string) (string, bool), name string) error {
	if *field != 0 {
		return nil
	}
	v, ok := lookup(name)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*field = n
	return nil
}

func fromEnv(field *string, lookup func(string) (string, bool), name string) {
	if *field != "" {
		return
	}
	if v, ok := lookup(name); ok && v != "" {
		*field = v
	}
}
