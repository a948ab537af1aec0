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

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/appexplorer/cmd/appexplorer/opts"
	"github.com/walteh/appexplorer/pkg/log"
	"github.com/walteh/appexplorer/pkg/render"
	"github.com/walteh/appexplorer/pkg/server"
	"github.com/walteh/appexplorer/pkg/upstream"
	"github.com/walteh/appexplorer/pkg/viewer"
	"github.com/walteh/appexplorer/pkg/watch"
)

// serveFlags holds the flags of the serve command
type serveFlags struct {
	port        int
	upstream    string
	highlighter string
	style       string
	watch       bool
}

// NewServeCmd creates the command that runs the explorer server
func NewServeCmd(opts *opts.RootOpts) *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the explorer dashboard",
		Long: `Serve the explorer dashboard. Templates under resources/views are rendered by
the upstream application, every other file is shown as highlighted source.

Settings come from the environment or a .env file:
  PORT, UPSTREAM_URL, LARAVEL_AUTH_EMAIL, LARAVEL_AUTH_PASSWORD, EXPLORER_EDITOR_SCHEME`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, events, err := newServer(ctx, opts, flags)
			if err != nil {
				return err
			}

			console := log.FromContext(ctx)
			console.Banner(opts.Settings.ExplorerURL(), opts.Settings.UpstreamURL)
			console.Infof("view config %s", opts.ConfigPath)

			return run(ctx, opts, srv, events)
		},
	}

	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "port to listen on (overrides PORT)")
	cmd.Flags().StringVarP(&flags.upstream, "upstream", "u", "", "upstream application URL (overrides UPSTREAM_URL)")
	cmd.Flags().StringVar(&flags.highlighter, "highlighter", string(viewer.HighlightClient), "source highlighting (hljs or chroma)")
	cmd.Flags().StringVar(&flags.style, "style", "monokai", "chroma style used with --highlighter=chroma")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", true, "stream file changes to the dashboard")

	return cmd
}

// newServer applies flag overrides and wires the server's collaborators
func newServer(ctx context.Context, o *opts.RootOpts, flags *serveFlags) (*server.Server, *watch.Broadcaster, error) {
	settings := o.Settings
	if flags.port != 0 {
		if flags.port < 0 || flags.port > 65535 {
			return nil, nil, errors.Errorf("invalid port %d", flags.port)
		}
		settings.Port = flags.port
	}
	if flags.upstream != "" {
		settings.UpstreamURL = flags.upstream
	}

	highlighter := viewer.Highlighter(flags.highlighter)
	switch highlighter {
	case viewer.HighlightClient, viewer.HighlightServer:
	default:
		return nil, nil, errors.Errorf("unknown highlighter %q", flags.highlighter)
	}

	client := upstream.NewClient(settings.UpstreamURL, nil)
	tokens := upstream.NewTokenManager(client, settings.Email, settings.Password)
	overlay := render.NewOverlay(settings.ExplorerURL())
	proxy := render.NewProxy(tokens, client, overlay)

	cfg := server.Config{
		Addr:    settings.ListenAddr(),
		Root:    o.Root,
		Builder: o.Builder,
		Proxy:   proxy,
		Overlay: overlay,
		Viewer: []viewer.Option{
			viewer.WithHighlighter(highlighter),
			viewer.WithEditorScheme(settings.EditorScheme),
			viewer.WithStyle(flags.style),
		},
		Logger: *zerolog.Ctx(ctx),
	}

	var events *watch.Broadcaster
	if flags.watch {
		events = watch.NewBroadcaster(16)
		cfg.Events = events
	}

	srv, err := server.New(cfg)
	if err != nil {
		return nil, nil, errors.Errorf("creating server: %w", err)
	}
	return srv, events, nil
}

// run serves until ctx is done, watching the app directory when events is set
func run(ctx context.Context, o *opts.RootOpts, srv *server.Server, events *watch.Broadcaster) error {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})

	if events != nil {
		base, err := o.Builder.BaseDir(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("config unavailable, watching the project root")
			base = o.Root
		}
		console.Infof("watching %s for changes", base)
		g.Go(func() error {
			err := watch.NewWatcher(base, events).Run(gctx, nil)
			if err != nil {
				// the dashboard still works without live updates
				logger.Debug().Err(err).Str("base", base).Msg("file watcher stopped")
				console.Warningf("live updates stopped: %v", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Errorf("running server: %w", err)
	}
	return nil
}
