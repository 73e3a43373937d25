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

// Package main provides the solo CLI entrypoint.
//
// The CLI accepts its own settings via flags, environment variables, or defaults:
//
//   - Home directory: --home flag, SOLO_HOME env var, or "~/.solo" default
//   - Log level: --log-level flag, SOLO_LOG_LEVEL env var, or "INFO" default
//   - Kubeconfig: --kubeconfig flag or KUBECONFIG env var
//   - Local config file: --local-config-file flag or "local-config.yaml" default
//
// Commands run until completion or until receiving SIGTERM or SIGINT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/KimMachineGun/automemlimit"

	"hiero-solo/pkg/app"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := newRootCmd(app.Options{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
