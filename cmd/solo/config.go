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
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"hiero-solo/pkg/data/key"
	"hiero-solo/pkg/runtimestate"
)

// products maps the CLI product names to their runtime state constructors.
var products = map[string]func(runtimestate.ProductOptions) runtimestate.ProductConfigState{
	"block-node": func(o runtimestate.ProductOptions) runtimestate.ProductConfigState {
		return runtimestate.NewBlockNodeConfigRuntimeState(o)
	},
	"mirror-node": func(o runtimestate.ProductOptions) runtimestate.ProductConfigState {
		return runtimestate.NewMirrorNodeConfigRuntimeState(o)
	},
	"explorer": func(o runtimestate.ProductOptions) runtimestate.ProductConfigState {
		return runtimestate.NewExplorerConfigRuntimeState(o)
	},
	"relay": func(o runtimestate.ProductOptions) runtimestate.ProductConfigState {
		return runtimestate.NewJSONRPCRelayConfigRuntimeState(o)
	},
	"solo": func(o runtimestate.ProductOptions) runtimestate.ProductConfigState {
		return runtimestate.NewSoloConfigRuntimeState(o)
	},
}

func productNames() []string {
	names := make([]string, 0, len(products))
	for name := range products {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *cli) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect product configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the configurable products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range productNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s_*\n", name, products[name](c.app.ProductOptions()).EnvPrefix())
			}
			return nil
		},
	})
	cmd.AddCommand(c.newConfigShowCmd())
	return cmd
}

func (c *cli) newConfigShowCmd() *cobra.Command {
	var asEnv bool

	cmd := &cobra.Command{
		Use:   "show <product>",
		Short: "Print the materialized configuration of a product",
		Long: `Print the materialized configuration of a product.

The bundled defaults are merged with the SOLO_<PRODUCT>_* environment
variables. With --env the result is printed as environment variable
assignments that reproduce it.

Products: ` + strings.Join(productNames(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newState, ok := products[args[0]]
			if !ok {
				return fmt.Errorf("unknown product %q, expected one of: %s", args[0], strings.Join(productNames(), ", "))
			}

			state := newState(c.app.ProductOptions())
			if err := state.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load %s: %w", state.Name(), err)
			}
			obj, err := state.Object()
			if err != nil {
				return err
			}

			if !asEnv {
				return printYAML(cmd, obj)
			}

			flat, err := c.app.EnvMapper.ToFlatKeyMap(state.Descriptor(), obj)
			if err != nil {
				return err
			}
			prefix := key.NewPrefix(state.EnvPrefix(), c.app.EnvMapper.Formatter())
			names := make([]string, 0, len(flat))
			for name := range flat {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", prefix.Add(name), flat[name])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asEnv, "env", false, "Print as environment variable assignments")
	return cmd
}
