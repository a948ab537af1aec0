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

package viewer

import (
	"strings"
)

// DefaultLanguage is used for anything not in the table
const DefaultLanguage = "html"

// suffix table, checked in order so blade.php wins over php
var languages = []struct {
	suffix string
	lang   string
}{
	{suffix: "blade.php", lang: "html"},
	{suffix: "php", lang: "php"},
	{suffix: "js", lang: "javascript"},
	{suffix: "css", lang: "css"},
	{suffix: "json", lang: "json"},
	{suffix: "sql", lang: "sql"},
	{suffix: "py", lang: "python"},
	{suffix: "java", lang: "java"},
}

// 🔤 LanguageFor picks the highlighting language tag for a file name
func LanguageFor(name string) string {
	for _, l := range languages {
		if strings.HasSuffix(name, l.suffix) {
			return l.lang
		}
	}
	return DefaultLanguage
}

var phpDelimiters = strings.NewReplacer("<?php", "&lt;?php", "?>", "?&gt;")

// EscapeDelimiters escapes the PHP open and close tags so the browser shows
// them instead of treating them as markup. Other languages pass unchanged.
func EscapeDelimiters(lang, content string) string {
	if lang != "php" {
		return content
	}
	return phpDelimiters.Replace(content)
}

// 🔗 EditorURL builds the deep link an editor registers for, such as
// cursor://file/ followed by the absolute path. Backslashes become slashes
// and a Windows drive letter is lower-cased.
func EditorURL(scheme, absPath string) string {
	return scheme + editorPath(absPath)
}

func editorPath(absPath string) string {
	p := strings.ReplaceAll(absPath, "\\", "/")
	if len(p) >= 2 && p[1] == ':' {
		p = strings.ToLower(p[:1]) + p[1:]
	}
	return p
}
