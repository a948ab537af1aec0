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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_entry",
			op: func(t *testing.T, logger *Logger) {
				logger.LogEntry(context.Background(), EntryLine{
					Path: "Models/User.php",
					Type: "file",
				})
			},
			wantLogs: []string{
				"• Models/User.php                               file",
			},
		},
		{
			name: "log_group",
			op: func(t *testing.T, logger *Logger) {
				logger.StartGroup(context.Background(), GroupOperation{
					Section: "targets",
					Name:    "Models",
					Pattern: "app/Models/*.php",
				})
				logger.EndGroup(context.Background())
			},
			wantLogs: []string{
				"◆ Models • app/Models/*.php",
				"(no matches)",
			},
		},
		{
			name: "log_banner",
			op: func(t *testing.T, logger *Logger) {
				logger.Banner("http://localhost:3000", "http://localhost:8000")
			},
			wantLogs: []string{
				"appexplorer • explorer running",
				"local    http://localhost:3000",
				"upstream http://localhost:8000",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("listing project structure")
			},
			wantLogs: []string{
				"appexplorer • listing project structure",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create buffer for console output
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			// Perform operation
			tt.op(t, logger)

			// Check output
			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match")
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	// Create logger
	logger := New(io.Discard, zerolog.InfoLevel)

	// Add to context
	ctx := context.Background()
	ctx = NewContext(ctx, logger)

	// Get from context
	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	// Check panic on missing logger
	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}

func TestEntryFormatting(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		e    EntryLine
		want string
	}{
		{
			name: "plain_file",
			e:    EntryLine{Path: "routes/web.php", Type: "file"},
			want: "    • routes/web.php                                file",
		},
		{
			name: "directory",
			e:    EntryLine{Path: "resources/views/admin", Type: "directory", Children: 3},
			want: "    ▸ resources/views/admin                         directory  3 entries",
		},
		{
			name: "symlinked_file",
			e:    EntryLine{Path: "views/home.php", Type: "file", IsSymlink: true, Target: "shared/home.php"},
			want: "    ↪ views/home.php                                file       → shared/home.php",
		},
		{
			name: "symlinked_directory",
			e:    EntryLine{Path: "resources/views", Type: "directory", IsSymlink: true, Target: "shared/views", Children: 2},
			want: "    ↪ resources/views                               directory  → shared/views (2 entries)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			logger.LogEntry(context.Background(), tt.e)

			output := strings.TrimRight(buf.String(), "\n ")
			assert.Equal(t, tt.want, output, "formatted output should match")
		})
	}
}
