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
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/appexplorer/cmd/appexplorer/opts"
	"github.com/walteh/appexplorer/pkg/config"
	"github.com/walteh/appexplorer/pkg/log"
	"github.com/walteh/appexplorer/pkg/structure"
	"github.com/walteh/appexplorer/pkg/viewer"
)

const testConfig = `{
  "app_path": "app",
  "targets": {
    "Models": "app/Models/*.php",
    "!Events": "app/Events/*"
  },
  "singles": {
    "routes": "routes/web.php"
  }
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setupProject returns options for a temp project and a context carrying a
// console that writes into the returned buffer
func setupProject(t *testing.T) (*opts.RootOpts, context.Context, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, config.DefaultFileName), testConfig)
	writeFile(t, filepath.Join(root, "app", "app", "Models", "User.php"), "<?php class User {}")
	writeFile(t, filepath.Join(root, "app", "app", "Events", "Saved.php"), "<?php")
	writeFile(t, filepath.Join(root, "app", "routes", "web.php"), "<?php")

	console := &bytes.Buffer{}
	ctx := log.NewContext(testContext(t), log.New(console, zerolog.InfoLevel))
	builder := structure.NewBuilder("", root, nil)
	return &opts.RootOpts{
		Root:       root,
		ConfigPath: builder.ConfigPath(),
		Settings: &config.Settings{
			Port:         config.DefaultPort,
			UpstreamURL:  config.DefaultUpstreamURL,
			Email:        config.DefaultEmail,
			Password:     config.DefaultPassword,
			EditorScheme: config.DefaultEditorScheme,
		},
		Builder: builder,
	}, ctx, console
}

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func TestParseSection(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []config.Section
		wantErr bool
	}{
		{name: "all", raw: "all", want: []config.Section{config.SectionTargets, config.SectionSingles}},
		{name: "empty", raw: "", want: []config.Section{config.SectionTargets, config.SectionSingles}},
		{name: "targets", raw: "targets", want: []config.Section{config.SectionTargets}},
		{name: "singles upper", raw: "SINGLES", want: []config.Section{config.SectionSingles}},
		{name: "unknown", raw: "layouts", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSection(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStructureCmdJSON(t *testing.T) {
	o, ctx, _ := setupProject(t)

	var out bytes.Buffer
	cmd := NewStructureCmd(o)
	cmd.SetContext(ctx)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--output", "json"})
	require.NoError(t, cmd.Execute())

	var got map[string]map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]map[string]string{
		"Models":  {"User.php": "app/Models/User.php"},
		"singles": {"web.php": "routes/web.php"},
	}, got)
}

func TestStructureCmdJSONSingleSection(t *testing.T) {
	o, ctx, _ := setupProject(t)

	var out bytes.Buffer
	cmd := NewStructureCmd(o)
	cmd.SetContext(ctx)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--section", "targets", "-o", "json"})
	require.NoError(t, cmd.Execute())

	var got map[string][]map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Contains(t, got, "Models")
	require.Len(t, got["Models"], 1)
	assert.Equal(t, "app/Models/User.php", got["Models"][0]["path"])
	assert.NotContains(t, got, "!Events")
}

func TestStructureCmdTree(t *testing.T) {
	o, ctx, _ := setupProject(t)

	var out bytes.Buffer
	cmd := NewStructureCmd(o)
	cmd.SetContext(ctx)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-o", "tree"})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "targets")
	assert.Contains(t, text, "Models")
	assert.Contains(t, text, "app/Models/User.php")
	assert.Contains(t, text, "routes/web.php")
	assert.NotContains(t, text, "Saved.php")
}

func TestStructureCmdConsole(t *testing.T) {
	o, ctx, console := setupProject(t)

	cmd := NewStructureCmd(o)
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	text := console.String()
	assert.Contains(t, text, "listing project structure")
	assert.Contains(t, text, "Models")
	assert.Contains(t, text, "app/Models/User.php")
	assert.Contains(t, text, "!Events")
	assert.NotContains(t, text, "Saved.php")
	assert.Contains(t, text, "routes/web.php")
	assert.Contains(t, text, "listed 3 groups")
}

func TestStructureCmdConsoleWithoutConfig(t *testing.T) {
	o, ctx, console := setupProject(t)
	require.NoError(t, os.Remove(o.ConfigPath))

	cmd := NewStructureCmd(o)
	cmd.SetContext(ctx)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, console.String(), "no usable view config")
}

func TestStructureCmdRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "section", args: []string{"--section", "layouts"}},
		{name: "output", args: []string{"--output", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ctx, _ := setupProject(t)
			cmd := NewStructureCmd(o)
			cmd.SetContext(ctx)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)
			assert.Error(t, cmd.Execute())
		})
	}
}

func TestNewServer(t *testing.T) {
	tests := []struct {
		name    string
		flags   serveFlags
		wantErr string
		check   func(t *testing.T, o *opts.RootOpts)
	}{
		{
			name:  "defaults",
			flags: serveFlags{highlighter: string(viewer.HighlightClient), watch: true},
			check: func(t *testing.T, o *opts.RootOpts) {
				assert.Equal(t, "http://localhost:3000", o.Settings.ExplorerURL())
			},
		},
		{
			name:  "overrides",
			flags: serveFlags{port: 4100, upstream: "http://app.test", highlighter: string(viewer.HighlightServer)},
			check: func(t *testing.T, o *opts.RootOpts) {
				assert.Equal(t, 4100, o.Settings.Port)
				assert.Equal(t, "http://app.test", o.Settings.UpstreamURL)
			},
		},
		{
			name:    "bad highlighter",
			flags:   serveFlags{highlighter: "prism"},
			wantErr: "unknown highlighter",
		},
		{
			name:    "bad port",
			flags:   serveFlags{port: 70000, highlighter: string(viewer.HighlightClient)},
			wantErr: "invalid port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ctx, _ := setupProject(t)
			srv, events, err := newServer(ctx, o, &tt.flags)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, srv)
			assert.Equal(t, tt.flags.watch, events != nil)
			if tt.check != nil {
				tt.check(t, o)
			}
		})
	}
}

func TestRunStopsWithContext(t *testing.T) {
	o, ctx, console := setupProject(t)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	srv, events, err := newServer(ctx, o, &serveFlags{port: port, highlighter: string(viewer.HighlightClient), watch: true})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	require.NoError(t, run(ctx, o, srv, events), "run should return cleanly once the context ends")
	assert.Contains(t, console.String(), "watching "+filepath.Join(o.Root, "app")+" for changes")
}
