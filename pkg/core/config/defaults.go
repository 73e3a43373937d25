package config

import "path/filepath"

const (
	// DefaultHomeDirName is the home directory name below the user's home.
	DefaultHomeDirName = ".solo"

	// DefaultLocalConfigFile is the default local config file name.
	DefaultLocalConfigFile = "local-config.yaml"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "INFO"

	// DefaultMaxCommandHistory is the default remote config history size.
	DefaultMaxCommandHistory = 50
)

// Environment variables read by Resolve.
const (
	EnvHome       = "SOLO_HOME"
	EnvLogLevel   = "SOLO_LOG_LEVEL"
	EnvKubeconfig = "KUBECONFIG"

	EnvMaxCommandHistory = "SOLO_REMOTE_CONFIG_MAX_COMMAND_IN_HISTORY"
)

// setDefaults applies default values to unset fields. userHome is the
// operator's home directory.
func setDefaults(s *Settings, userHome string) {
	if s.Home == "" {
		s.Home = filepath.Join(userHome, DefaultHomeDirName)
	}
	if s.LocalConfigFile == "" {
		s.LocalConfigFile = DefaultLocalConfigFile
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.MaxCommandHistory == 0 {
		s.MaxCommandHistory = DefaultMaxCommandHistory
	}
}
