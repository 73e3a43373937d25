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
)

func (c *cli) newLocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Inspect and migrate the local config",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the local config",
		Long: `Print the local config.

A missing local config is created. A local config written by an older
version is migrated and written back before it is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.LocalConfig()
			if err := state.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load local config: %w", err)
			}
			cfg, err := state.Configuration()
			if err != nil {
				return err
			}
			obj, err := cfg.Object()
			if err != nil {
				return err
			}
			return printYAML(cmd, obj)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the local config to the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.LocalConfig()
			exists, err := state.ConfigFileExists(cmd.Context())
			if err != nil {
				return err
			}
			if err := state.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load local config: %w", err)
			}
			cfg, err := state.Configuration()
			if err != nil {
				return err
			}

			path := c.app.Settings.LocalConfigPath()
			switch {
			case !exists:
				fmt.Fprintf(cmd.OutOrStdout(), "created %s at schema version %d\n", path, cfg.SchemaVersion())
			case state.Source().Migrated():
				fmt.Fprintf(cmd.OutOrStdout(), "migrated %s to schema version %d\n", path, cfg.SchemaVersion())
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date at schema version %d\n", path, cfg.SchemaVersion())
			}
			return nil
		},
	})

	return cmd
}
