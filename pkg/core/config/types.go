// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides the settings of the solo CLI itself.
//
// Settings are resolved once at startup from command-line flags, the
// environment and built-in defaults, in that order of precedence.
package config

import "path/filepath"

// Settings is the resolved CLI configuration.
type Settings struct {
	// Home is the solo home directory holding the local config.
	//
	// Environment: SOLO_HOME. Default: ~/.solo
	Home string

	// LocalConfigFile is the file name of the local config inside Home.
	LocalConfigFile string

	// LogLevel is one of ERROR, WARN, INFO or DEBUG.
	//
	// Environment: SOLO_LOG_LEVEL. Default: INFO
	LogLevel string

	// Kubeconfig is the kubeconfig path. Empty uses the client-go default
	// loading rules.
	//
	// Environment: KUBECONFIG
	Kubeconfig string

	// MetricsOutput is a file the engine metrics are written to on exit,
	// in the Prometheus text format. Empty disables the export.
	MetricsOutput string

	// MaxCommandHistory is the number of commands kept in the remote
	// config history. Older entries are dropped first.
	//
	// Environment: SOLO_REMOTE_CONFIG_MAX_COMMAND_IN_HISTORY. Default: 50
	MaxCommandHistory int
}

// LocalConfigPath returns the full path of the local config file.
func (s *Settings) LocalConfigPath() string {
	return filepath.Join(s.Home, s.LocalConfigFile)
}
