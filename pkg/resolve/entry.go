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
	"path"
	"path/filepath"
	"strings"
)

// 📂 EntryType is the classified kind of a resolved entry
type EntryType string

const (
	TypeFile      EntryType = "file"
	TypeDirectory EntryType = "directory"
)

// 📄 Entry is one concrete path resolved under the base directory
type Entry struct {
	Path      string    `json:"path"`               // slash separated, relative to the base dir
	Type      EntryType `json:"type"`               // file or directory
	IsSymlink bool      `json:"isSymlink"`          // whether Path itself is a link
	Target    string    `json:"target,omitempty"`   // real path relative to the base dir, links only
	Contents  []string  `json:"contents,omitempty"` // immediate children, directories only
}

// 🔍 IsFile reports whether the entry is a file
func (e Entry) IsFile() bool {
	return e.Type == TypeFile
}

// 🔍 IsDir reports whether the entry is a directory
func (e Entry) IsDir() bool {
	return e.Type == TypeDirectory
}

// 📝 BaseName returns the last element of the entry path
func (e Entry) BaseName() string {
	return path.Base(e.Path)
}

// NormalizePath converts an OS or mixed separator path into a clean slash
// separated relative path. Backslashes are always treated as separators.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
	if p == "" {
		return "."
	}
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	return strings.TrimPrefix(p, "/")
}
