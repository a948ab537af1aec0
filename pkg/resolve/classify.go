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

package resolve

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ Classifier turns one existing path into a classified Entry
type Classifier struct {
	fs       FileSystem
	baseDir  string // absolute base dir as configured
	realBase string // baseDir with symlinks resolved, used for link targets
}

// 🏭 NewClassifier creates a classifier anchored at baseDir
func NewClassifier(fsys FileSystem, baseDir string) *Classifier {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	realBase := baseDir
	if resolved, err := fsys.EvalSymlinks(baseDir); err == nil {
		realBase = resolved
	}
	return &Classifier{
		fs:       fsys,
		baseDir:  baseDir,
		realBase: realBase,
	}
}

// 📁 BaseDir returns the absolute base directory
func (c *Classifier) BaseDir() string {
	return c.baseDir
}

// 🔍 Classify resolves rel (relative to the base dir) into an Entry.
// A trailing slash on rel marks it as a directory regardless of its type.
func (c *Classifier) Classify(ctx context.Context, rel string) (Entry, error) {
	marked := strings.HasSuffix(rel, "/") || strings.HasSuffix(rel, `\`)
	rel = NormalizePath(rel)
	abs := filepath.Join(c.baseDir, filepath.FromSlash(rel))

	info, err := c.fs.Lstat(abs)
	if err != nil {
		return Entry{}, errors.Errorf("lstat %s: %w", rel, err)
	}

	entry := Entry{Path: rel, Type: TypeFile}
	realPath := abs
	if info.Mode()&fs.ModeSymlink != 0 {
		entry.IsSymlink = true
		realPath, err = c.fs.EvalSymlinks(abs)
		if err != nil {
			return Entry{}, errors.Errorf("resolving link %s: %w", rel, err)
		}
		entry.Target = c.relToBase(realPath)
	}

	realInfo, err := c.fs.Stat(realPath)
	if err != nil {
		return Entry{}, errors.Errorf("stat %s: %w", realPath, err)
	}

	if !marked && !realInfo.IsDir() {
		return entry, nil
	}

	// children come from the real directory but keep the link's location
	children, err := c.fs.ReadDir(realPath)
	if err != nil {
		return Entry{}, errors.Errorf("reading directory %s: %w", rel, err)
	}
	entry.Type = TypeDirectory
	entry.Contents = make([]string, 0, len(children))
	for _, child := range children {
		entry.Contents = append(entry.Contents, path.Join(rel, child.Name()))
	}

	zerolog.Ctx(ctx).Trace().Str("path", rel).Int("children", len(children)).Msg("classified directory")
	return entry, nil
}

func (c *Classifier) relToBase(realPath string) string {
	rel, err := filepath.Rel(c.realBase, realPath)
	if err != nil {
		return filepath.ToSlash(realPath)
	}
	return NormalizePath(rel)
}
