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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	entryIndent = 4  // spaces to indent entry lines
	pathWidth   = 45 // width for the entry path
	typeWidth   = 10 // width for the entry type
)

// 🎯 EntryLine is one resolved path for console display
type EntryLine struct {
	Path      string // path relative to the app dir
	Type      string // file or directory
	IsSymlink bool   // whether the path is a link
	Target    string // link target, links only
	Children  int    // immediate children, directories only
}

// 📦 GroupOperation is one config group being listed
type GroupOperation struct {
	Section  string // targets or singles
	Name     string // group name
	Pattern  string // literal path or glob
	Disabled bool   // carries the disable marker
}

// 🎯 Logger prints human oriented console output next to zerolog
type Logger struct {
	zlog         zerolog.Logger
	console      io.Writer
	mu           sync.Mutex
	currentGroup *GroupOperation
	entries      []EntryLine
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatEntry formats an entry for display
func (l *Logger) formatEntry(e EntryLine) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case e.IsSymlink:
		symbol = '↪'
		symbolColor = color.FgMagenta
	case e.Type == "directory":
		symbol = '▸'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	var detail string
	switch {
	case e.IsSymlink && e.Type == "directory":
		detail = fmt.Sprintf("→ %s (%d entries)", e.Target, e.Children)
	case e.IsSymlink:
		detail = "→ " + e.Target
	case e.Type == "directory":
		detail = fmt.Sprintf("%d entries", e.Children)
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", entryIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", pathWidth, e.Path),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", typeWidth, e.Type)),
		detail)
}

// 📝 LogEntry prints one resolved entry
func (l *Logger) LogEntry(ctx context.Context, e EntryLine) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, e)

	fmt.Fprintln(l.console, l.formatEntry(e))

	l.zlog.Debug().
		Str("path", e.Path).
		Str("type", e.Type).
		Bool("is_symlink", e.IsSymlink).
		Str("target", e.Target).
		Int("children", e.Children).
		Msg("entry")
}

// 📝 StartGroup prints the header of a config group
func (l *Logger) StartGroup(ctx context.Context, op GroupOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentGroup = &op
	l.entries = nil

	name := color.New(color.Bold).Sprint(op.Name)
	if op.Disabled {
		name = color.New(color.Faint, color.CrossedOut).Sprint(op.Name)
	}

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		name,
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Pattern))

	l.zlog.Debug().
		Str("section", op.Section).
		Str("group", op.Name).
		Str("pattern", op.Pattern).
		Bool("disabled", op.Disabled).
		Msg("listing group")
}

// 📝 EndGroup closes the current group, noting empty ones
func (l *Logger) EndGroup(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentGroup == nil {
		return
	}

	if len(l.entries) == 0 && !l.currentGroup.Disabled {
		fmt.Fprintf(l.console, "%*s%s\n", entryIndent, "", color.New(color.Faint).Sprint("(no matches)"))
	}

	l.zlog.Debug().
		Str("group", l.currentGroup.Name).
		Int("entries", len(l.entries)).
		Msg("group listed")

	l.currentGroup = nil
	l.entries = nil
}

// 📝 Banner prints the startup banner of the server
func (l *Logger) Banner(explorerURL, upstreamURL string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("appexplorer")
	fmt.Fprintf(l.console, "\n%s %s\n", name, color.New(color.Faint).Sprint("• explorer running"))
	fmt.Fprintf(l.console, "%*s%s %s\n", entryIndent, "", color.New(color.Faint).Sprint("local   "), color.New(color.FgGreen).Sprint(explorerURL))
	fmt.Fprintf(l.console, "%*s%s %s\n\n", entryIndent, "", color.New(color.Faint).Sprint("upstream"), color.New(color.FgYellow).Sprint(upstreamURL))
	l.zlog.Info().Str("explorer", explorerURL).Str("upstream", upstreamURL).Msg("explorer running")
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("appexplorer")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
