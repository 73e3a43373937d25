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

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hiero-solo/pkg/app"
	"hiero-solo/pkg/core/config"
)

// cli carries the state shared by the commands of one invocation.
type cli struct {
	opts  app.Options
	flags config.Settings
	app   *app.Context
}

func newRootCmd(opts app.Options) *cobra.Command {
	c := &cli{opts: opts}

	cmd := &cobra.Command{
		Use:   "solo",
		Short: "Inspect and migrate solo configuration",
		Long: `Inspect and migrate solo configuration.

Product configs are layered from bundled defaults and SOLO_<PRODUCT>_*
environment variables. The local config lives in the solo home directory.
The remote config of a deployment is stored in a ConfigMap of every
cluster the deployment spans.

Settings are loaded from:
1. Command-line flags (highest priority)
2. Environment variables
3. Default values (lowest priority)`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.app.WriteMetrics()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.flags.Home, "home", "",
		"Solo home directory holding the local config (env: SOLO_HOME)")
	flags.StringVar(&c.flags.LocalConfigFile, "local-config-file", "",
		"File name of the local config inside the home directory")
	flags.StringVar(&c.flags.LogLevel, "log-level", "",
		"Log level: ERROR, WARN, INFO or DEBUG (env: SOLO_LOG_LEVEL)")
	flags.StringVar(&c.flags.Kubeconfig, "kubeconfig", "",
		"Path to kubeconfig file (env: KUBECONFIG)")
	flags.StringVar(&c.flags.MetricsOutput, "metrics-out", "",
		"Write engine metrics to this file in the Prometheus text format on exit")
	flags.IntVar(&c.flags.MaxCommandHistory, "max-command-history", 0,
		"Commands kept in the remote config history (env: SOLO_REMOTE_CONFIG_MAX_COMMAND_IN_HISTORY)")

	cmd.AddCommand(c.newConfigCmd())
	cmd.AddCommand(c.newLocalCmd())
	cmd.AddCommand(c.newRemoteCmd())
	return cmd
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	settings, err := config.Resolve(c.flags, config.Sources{})
	if err != nil {
		return err
	}

	a, err := app.New(settings, c.opts)
	if err != nil {
		return fmt.Errorf("failed to create application context: %w", err)
	}
	c.app = a

	a.Logger.Debug("solo starting",
		"version", app.Version,
		"home", settings.Home,
		"log_level", settings.LogLevel)
	return nil
}

// printYAML writes v to the command output as a YAML document.
func printYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}
