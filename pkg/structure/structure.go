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
	"bytes"
	"encoding/json"
	"path"
	"unicode"
	"unicode/utf8"

	"github.com/walteh/appexplorer/pkg/resolve"
)

// SinglesKey is the listing bucket holding every singles file
const SinglesKey = "singles"

// 📦 Group is one resolved config group
type Group struct {
	Name    string
	Entries []resolve.Entry
}

// 📚 Structure is a resolved config section, in document order
type Structure []Group

// FileMap maps a file base name to its path relative to the app base dir.
type FileMap map[string]string

// CategorizedFileMap maps a category name to its files.
type CategorizedFileMap map[string]FileMap

// Listing is the payload of the project data endpoint.
type Listing map[string]FileMap

// 🔤 CategoryName turns a group name into the category shown to clients by
// upper-casing its first rune. "models" -> "Models", "uiKit" -> "UiKit".
func CategoryName(group string) string {
	r, size := utf8.DecodeRuneInString(group)
	if r == utf8.RuneError {
		return group
	}
	return string(unicode.ToUpper(r)) + group[size:]
}

// 🔄 TransformFileStructure keeps only file entries and keys them by base
// name. Empty groups are dropped. Within a group a later file with the same
// base name overwrites the earlier one, and a later group mapping to the same
// category replaces the earlier bucket.
func TransformFileStructure(s Structure) CategorizedFileMap {
	out := CategorizedFileMap{}
	for _, g := range s {
		if len(g.Entries) == 0 {
			continue
		}
		files := FileMap{}
		for _, e := range g.Entries {
			if !e.IsFile() {
				continue
			}
			files[path.Base(e.Path)] = e.Path
		}
		out[CategoryName(g.Name)] = files
	}
	return out
}

// Categories lists the categories TransformFileStructure produces, in the
// order they first appear.
func (s Structure) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, g := range s {
		if len(g.Entries) == 0 {
			continue
		}
		name := CategoryName(g.Name)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Entries returns the entries of the named group, or nil.
func (s Structure) Entries(group string) []resolve.Entry {
	for _, g := range s {
		if g.Name == group {
			return g.Entries
		}
	}
	return nil
}

// MarshalJSON writes the structure as an object keyed by group name,
// keeping document order.
func (s Structure) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Name)
		if err != nil {
			return nil, err
		}
		entries := g.Entries
		if entries == nil {
			entries = []resolve.Entry{}
		}
		value, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// flatten merges categories in order; later categories win on name clashes.
func flatten(cfm CategorizedFileMap, order []string) FileMap {
	out := FileMap{}
	for _, cat := range order {
		for name, p := range cfm[cat] {
			out[name] = p
		}
	}
	return out
}
