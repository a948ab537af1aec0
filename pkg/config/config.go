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

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 📄 DefaultFileName is the config document looked up in the project root
const DefaultFileName = "view-config.json"

// 🚫 DisableMarker prefixes group names that must never be resolved
const DisableMarker = "!"

var (
	// ErrSectionMissing is returned when a requested section is absent
	ErrSectionMissing = errors.Base("config section missing")
	// ErrUnknownSection is returned for section names other than targets/singles
	ErrUnknownSection = errors.Base("unknown config section")
)

// 📑 Section names a top-level pattern collection
type Section string

const (
	SectionTargets Section = "targets"
	SectionSingles Section = "singles"
)

// 🎯 Pattern is one named group mapped to a literal path or glob
type Pattern struct {
	Name  string
	Value string
}

// 🔍 Disabled reports whether the group carries the disable marker
func (p Pattern) Disabled() bool {
	return strings.HasPrefix(p.Name, DisableMarker)
}

// 📚 Patterns keeps groups in document order. A nil Patterns means the
// section was absent from the document.
type Patterns []Pattern

// 🔍 Enabled returns the groups without the disable marker
func (ps Patterns) Enabled() Patterns {
	out := make(Patterns, 0, len(ps))
	for _, p := range ps {
		if !p.Disabled() {
			out = append(out, p)
		}
	}
	return out
}

// set adds p, or overwrites the value of an earlier group with the same
// name while keeping that group's position.
func (ps Patterns) set(p Pattern) Patterns {
	for i := range ps {
		if ps[i].Name == p.Name {
			ps[i].Value = p.Value
			return ps
		}
	}
	return append(ps, p)
}

// 📚 Config is the view configuration document
type Config struct {
	AppPath string   `json:"app_path" yaml:"app_path"`
	Targets Patterns `json:"targets" yaml:"targets"`
	Singles Patterns `json:"singles" yaml:"singles"`
}

// 📂 Section returns the named pattern collection
func (cfg *Config) Section(name Section) (Patterns, error) {
	var ps Patterns
	switch name {
	case SectionTargets:
		ps = cfg.Targets
	case SectionSingles:
		ps = cfg.Singles
	default:
		return nil, errors.Errorf("%w: %q", ErrUnknownSection, name)
	}
	if ps == nil {
		return nil, errors.Errorf("%w: %s", ErrSectionMissing, name)
	}
	return ps, nil
}

// 📁 BaseDir resolves app_path against the project root
func (cfg *Config) BaseDir(root string) string {
	return filepath.Join(root, filepath.FromSlash(cfg.AppPath))
}

// 📝 String returns a short summary of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("app_path=%q targets=%d singles=%d", cfg.AppPath, len(cfg.Targets), len(cfg.Singles))
}
