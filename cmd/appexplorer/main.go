// Copyright 2025 walteh LLC
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
	"os"

	"github.com/spf13/cobra"

	"github.com/walteh/appexplorer/cmd/appexplorer/commands"
	"github.com/walteh/appexplorer/cmd/appexplorer/opts"
	"github.com/walteh/appexplorer/pkg/log"
)

func main() {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "appexplorer",
		Short: "A local dashboard for browsing a web application's source tree",
		Long: `appexplorer serves a dashboard that lists the files named by view-config.json,
shows raw sources with syntax highlighting and renders templates through the
running application's API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging()
			ctx := log.NewContext(logger.WithContext(cmd.Context()), newConsole())
			cmd.SetContext(ctx)

			return fillRootOpts(ctx, rootOpts)
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewServeCmd(rootOpts),
		commands.NewStructureCmd(rootOpts),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		newConsole().Errorf("%v", err)
		os.Exit(1)
	}
}
