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

package structure

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/appexplorer/pkg/config"
	"github.com/walteh/appexplorer/pkg/metrics"
	"github.com/walteh/appexplorer/pkg/resolve"
)

// 🏗️ Builder resolves config sections into structures. The config document
// is re-read on every call.
type Builder struct {
	configPath string
	root       string
	fs         resolve.FileSystem
}

// NewBuilder creates a builder for the config at configPath. app_path is
// resolved against root. A relative configPath is taken from root as well.
func NewBuilder(configPath, root string, fsys resolve.FileSystem) *Builder {
	if configPath == "" {
		configPath = config.DefaultFileName
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(root, configPath)
	}
	return &Builder{configPath: configPath, root: root, fs: fsys}
}

// ConfigPath returns the config document location
func (b *Builder) ConfigPath() string {
	return b.configPath
}

// 📂 BaseDir loads the config and returns the app base dir
func (b *Builder) BaseDir(ctx context.Context) (string, error) {
	cfg, err := config.Load(ctx, b.configPath)
	if err != nil {
		return "", err
	}
	return cfg.BaseDir(b.root), nil
}

// 🎯 Build resolves every enabled group of the section. Config problems are
// logged and produce an empty structure.
func (b *Builder) Build(ctx context.Context, section config.Section) Structure {
	logger := zerolog.Ctx(ctx).With().Str("section", string(section)).Logger()

	cfg, err := config.Load(ctx, b.configPath)
	if err != nil {
		logger.Warn().Err(err).Str("config", b.configPath).Msg("config unavailable, returning empty structure")
		return Structure{}
	}

	patterns, err := cfg.Section(section)
	if err != nil {
		logger.Warn().Err(err).Msg("config section unavailable, returning empty structure")
		return Structure{}
	}

	resolver := resolve.NewResolver(b.fs, cfg.BaseDir(b.root))
	out := make(Structure, 0, len(patterns))
	for _, p := range patterns {
		if p.Disabled() {
			logger.Debug().Str("group", p.Name).Msg("skipping disabled group")
			continue
		}
		entries := resolver.Resolve(logger.WithContext(ctx), p.Value)
		logger.Debug().Str("group", p.Name).Str("pattern", p.Value).Int("entries", len(entries)).Msg("group resolved")
		out = append(out, Group{Name: p.Name, Entries: entries})
	}
	metrics.RecordGroupsResolved(len(out))
	return out
}

// 📋 Listing composes the targets categories with one flattened singles
// bucket.
func (b *Builder) Listing(ctx context.Context) Listing {
	var targets, singles Structure

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		targets = b.Build(gctx, config.SectionTargets)
		return nil
	})
	g.Go(func() error {
		singles = b.Build(gctx, config.SectionSingles)
		return nil
	})
	_ = g.Wait()

	out := Listing{}
	for cat, files := range TransformFileStructure(targets) {
		out[cat] = files
	}
	out[SinglesKey] = flatten(TransformFileStructure(singles), singles.Categories())
	return out
}
