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
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/appexplorer/cmd/appexplorer/opts"
	"github.com/walteh/appexplorer/pkg/config"
	"github.com/walteh/appexplorer/pkg/log"
	"github.com/walteh/appexplorer/pkg/structure"
)

var (
	// Flags
	configFile   string
	rootDir      string
	envFile      string
	debugLogging bool
)

// fillRootOpts loads settings and wires the shared dependencies
func fillRootOpts(ctx context.Context, o *opts.RootOpts) error {
	root := rootDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return errors.Errorf("resolving project root: %w", err)
	}

	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	} else {
		envFiles = append(envFiles, filepath.Join(root, ".env"))
	}

	settings, err := config.LoadSettings(envFiles...)
	if err != nil {
		return errors.Errorf("loading settings: %w", err)
	}

	builder := structure.NewBuilder(configFile, root, nil)

	o.Root = root
	o.ConfigPath = builder.ConfigPath()
	o.Settings = settings
	o.Builder = builder

	zerolog.Ctx(ctx).Debug().
		Str("root", o.Root).
		Str("config", o.ConfigPath).
		Str("upstream", settings.UpstreamURL).
		Int("port", settings.Port).
		Msg("options loaded")

	return nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultFileName, "view config file path, relative to the project root")
	cmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "project root (defaults to the working directory)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (defaults to <root>/.env)")
	cmd.PersistentFlags().BoolVarP(&debugLogging, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() zerolog.Logger {
	level := zerolog.InfoLevel
	if debugLogging {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}

func consoleLevel() zerolog.Level {
	if debugLogging {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

func newConsole() *log.Logger {
	return log.New(os.Stdout, consoleLevel())
}
