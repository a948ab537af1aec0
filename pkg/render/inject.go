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

package render

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InjectPoint records where Inject placed the snippet.
type InjectPoint int

const (
	BeforeHeadClose InjectPoint = iota
	AfterBodyOpen
	Prepended
)

func (p InjectPoint) String() string {
	switch p {
	case BeforeHeadClose:
		return "before_head_close"
	case AfterBodyOpen:
		return "after_body_open"
	default:
		return "prepended"
	}
}

// 💉 Inject places snippet just before the first closing head tag. Pages
// without one get it right after the opening body tag, and pages with
// neither get it prepended. Tags inside script and style text are not
// matched.
func Inject(doc []byte, snippet string) ([]byte, InjectPoint) {
	at, point := injectOffset(doc)

	out := make([]byte, 0, len(doc)+len(snippet))
	out = append(out, doc[:at]...)
	out = append(out, snippet...)
	out = append(out, doc[at:]...)
	return out, point
}

func injectOffset(doc []byte) (int, InjectPoint) {
	z := html.NewTokenizer(bytes.NewReader(doc))
	offset := 0
	bodyOpen := -1

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := len(z.Raw())

		switch tt {
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Head {
				return offset, BeforeHeadClose
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if bodyOpen < 0 && atom.Lookup(name) == atom.Body {
				bodyOpen = offset + raw
			}
		}
		offset += raw
	}

	if bodyOpen >= 0 {
		return bodyOpen, AfterBodyOpen
	}
	return 0, Prepended
}
