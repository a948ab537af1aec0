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
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// wildcardChar turns a pattern into a glob. Other glob syntax ("?", "[",
// "{") only takes effect alongside it, so literal names such as
// "pages/[id].js" stay literal.
const wildcardChar = "*"

// 🔎 Resolver expands path patterns into classified entries
type Resolver struct {
	fs         FileSystem
	classifier *Classifier
}

// 🏭 NewResolver creates a resolver for patterns relative to baseDir
func NewResolver(fsys FileSystem, baseDir string) *Resolver {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return &Resolver{
		fs:         fsys,
		classifier: NewClassifier(fsys, baseDir),
	}
}

// 📁 BaseDir returns the absolute base directory
func (r *Resolver) BaseDir() string {
	return r.classifier.BaseDir()
}

// 🔍 IsWildcard reports whether pattern needs glob expansion
func IsWildcard(pattern string) bool {
	return strings.Contains(pattern, wildcardChar)
}

// 🔄 RecursivePattern rewrites a trailing single star into "this directory
// and everything beneath it". Other patterns are returned unchanged.
func RecursivePattern(pattern string) string {
	if !strings.HasSuffix(pattern, "*") || strings.HasSuffix(pattern, "**") || strings.HasSuffix(pattern, "**/*") {
		return pattern
	}
	return strings.TrimSuffix(pattern, "*") + "**/*"
}

// 🎯 Resolve expands pattern into entries. Missing literal paths and
// expansion failures yield an empty list; a failure on one entry drops only
// that entry.
func (r *Resolver) Resolve(ctx context.Context, pattern string) []Entry {
	logger := zerolog.Ctx(ctx).With().Str("pattern", pattern).Logger()

	if !IsWildcard(pattern) {
		return r.resolveLiteral(ctx, &logger, pattern)
	}

	normalized := RecursivePattern(NormalizePath(pattern))
	logger.Debug().Str("glob", normalized).Str("base", r.BaseDir()).Msg("searching pattern")

	matches, err := r.fs.Glob(r.BaseDir(), normalized)
	if err != nil {
		logger.Error().Err(err).Msg("reading pattern")
		return []Entry{}
	}

	entries := make([]Entry, 0, len(matches))
	for _, match := range matches {
		rel := NormalizePath(match)
		if isHidden(rel, normalized) {
			continue
		}
		entry, err := r.classifier.Classify(ctx, rel)
		if err != nil {
			logger.Warn().Err(err).Str("path", rel).Msg("skipping unresolvable entry")
			continue
		}
		entries = append(entries, entry)
	}

	logger.Debug().Int("found", len(entries)).Msg("pattern resolved")
	return entries
}

func (r *Resolver) resolveLiteral(ctx context.Context, logger *zerolog.Logger, pattern string) []Entry {
	rel := NormalizePath(pattern)
	if _, err := r.fs.Lstat(filepath.Join(r.BaseDir(), filepath.FromSlash(rel))); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug().Str("path", rel).Msg("file not found")
		} else {
			logger.Warn().Err(err).Str("path", rel).Msg("cannot stat literal path")
		}
		return []Entry{}
	}

	entry, err := r.classifier.Classify(ctx, pattern)
	if err != nil {
		logger.Warn().Err(err).Str("path", rel).Msg("skipping unresolvable entry")
		return []Entry{}
	}
	return []Entry{entry}
}

// isHidden reports whether match passes through a dot segment that the
// pattern did not name explicitly.
func isHidden(match, pattern string) bool {
	patternSegments := strings.Split(pattern, "/")
	for i, segment := range strings.Split(match, "/") {
		if !strings.HasPrefix(segment, ".") || segment == "." || segment == ".." {
			continue
		}
		if i < len(patternSegments) && strings.HasPrefix(patternSegments[i], ".") {
			continue
		}
		return true
	}
	return false
}
