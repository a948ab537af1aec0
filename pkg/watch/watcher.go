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

package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 👀 Watcher publishes filesystem changes below a base dir. Hidden
// directories are never watched.
type Watcher struct {
	base string
	out  *Broadcaster
}

// NewWatcher creates a watcher for base publishing to out
func NewWatcher(base string, out *Broadcaster) *Watcher {
	return &Watcher{base: base, out: out}
}

// 🏃 Run watches until ctx is done. ready, if not nil, is closed once the
// initial tree is registered.
func (w *Watcher) Run(ctx context.Context, ready chan<- struct{}) error {
	logger := zerolog.Ctx(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	dirs, err := collectDirectories(w.base)
	if err != nil {
		return errors.Errorf("walking %s: %w", w.base, err)
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("cannot watch directory")
		}
	}
	logger.Debug().Str("base", w.base).Int("dirs", len(dirs)).Msg("watching for changes")

	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	op := opName(event.Op)
	if op == "" {
		return
	}

	rel, err := filepath.Rel(w.base, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if hidden(rel) {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := fsw.Add(event.Name); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("dir", event.Name).Msg("cannot watch new directory")
			}
		}
	}

	w.out.Publish(Event{Op: op, Path: rel})
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		// chmod carries no content change
		return ""
	}
}

func hidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

// collectDirectories returns root and every non-hidden directory below it
func collectDirectories(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}
