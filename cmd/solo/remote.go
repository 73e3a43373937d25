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
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"hiero-solo/pkg/components"
	"hiero-solo/pkg/runtimestate"
)

func (c *cli) newRemoteCmd() *cobra.Command {
	var (
		namespace   string
		contextName string
	)

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Inspect the remote config of a deployment",
		Long: `Inspect the remote config of a deployment.

The remote config is read from the ConfigMap in the deployment namespace
of the cluster behind --context. A remote config written by an older
version is migrated and written back to every cluster of the deployment,
so the deployment Lease is held while it is loaded.`,
	}

	cmd.PersistentFlags().StringVarP(&namespace, "namespace", "n", "", "Deployment namespace")
	cmd.PersistentFlags().StringVar(&contextName, "context", "", "Kubeconfig context of a cluster of the deployment")
	_ = cmd.MarkPersistentFlagRequired("namespace")
	_ = cmd.MarkPersistentFlagRequired("context")

	load := func(ctx context.Context) (*runtimestate.RemoteConfig, error) {
		local := c.app.LocalConfig()
		if err := local.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}

		state := c.app.RemoteConfig()
		err := c.app.WithLock(ctx, namespace, contextName, func(ctx context.Context) error {
			return state.Load(ctx, namespace, contextName)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load remote config: %w", err)
		}
		return state.Configuration()
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the remote config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd.Context())
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
		Use:   "components [type]",
		Short: "List the components of the deployment",
		Long: `List the components of the deployment, optionally only those of one type.

Types: consensusNodes, blockNodes, mirrorNodes, relayNodes, haProxies,
envoyProxies, explorers.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			types := components.Types()
			if len(args) == 1 {
				t, err := components.ParseType(args[0])
				if err != nil {
					return err
				}
				types = []components.ComponentType{t}
			}

			cfg, err := load(cmd.Context())
			if err != nil {
				return err
			}
			return printComponents(cmd, cfg.Components(), types)
		},
	})

	return cmd
}

func printComponents(cmd *cobra.Command, wrapper *components.ComponentsDataWrapper, types []components.ComponentType) error {
	rows := pterm.TableData{{"TYPE", "ID", "CLUSTER", "NAMESPACE", "PHASE"}}
	for _, t := range types {
		for _, entry := range wrapper.Components(t) {
			m := entry.StateMetadata()
			rows = append(rows, []string{
				string(t),
				strconv.Itoa(m.ID),
				m.Cluster,
				m.Namespace,
				string(m.Phase),
			})
		}
	}

	out, err := pterm.DefaultTable.WithHasHeader(true).WithData(rows).Srender()
	if err != nil {
		return fmt.Errorf("failed to render components: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
