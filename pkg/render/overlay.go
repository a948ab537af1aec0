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
	"html/template"

	"gitlab.com/tozd/go/errors"
)

// the banner lives in an inert <template> so it is valid inside <head>; the
// script moves it to the top of <body> once the page has loaded
var overlayTmpl = template.Must(template.New("overlay").Parse(
	`<template id="appexplorer-overlay">` +
		`<div style="display:flex;gap:10px;justify-content:space-between;background-color:rgb(122, 204, 231);color:white;padding:10px;">` +
		`<div><a href="{{.ExplorerURL}}" style="width:max-content;">Back to explorer</a></div>` +
		`{{if .EditorURL}}<div><a href="{{.EditorURL}}" style="text-align:center;width:max-content;">Open {{.EditorLabel}}</a></div>{{end}}` +
		`</div></template>` +
		`<script>document.addEventListener("DOMContentLoaded", function() {var t = document.getElementById("appexplorer-overlay"); if (t) { document.body.prepend(t.content.cloneNode(true)); }});</script>`))

// 🧭 Overlay renders the navigation banner added to every page served by
// the explorer.
type Overlay struct {
	explorerURL string
}

// OverlayLink is an optional "open in editor" link.
type OverlayLink struct {
	URL   string
	Label string
}

type bannerData struct {
	ExplorerURL string
	EditorURL   template.URL
	EditorLabel string
}

// NewOverlay creates an overlay pointing back at explorerURL
func NewOverlay(explorerURL string) *Overlay {
	return &Overlay{explorerURL: explorerURL}
}

// ExplorerURL is the back-link target
func (o *Overlay) ExplorerURL() string {
	return o.explorerURL
}

// 📝 Snippet renders the overlay markup. The editor link is optional.
func (o *Overlay) Snippet(editor *OverlayLink) (template.HTML, error) {
	data := bannerData{ExplorerURL: o.explorerURL}
	if editor != nil {
		// editor schemes such as cursor:// are not on html/template's safe list
		data.EditorURL = template.URL(editor.URL)
		data.EditorLabel = editor.Label
	}

	var buf bytes.Buffer
	if err := overlayTmpl.Execute(&buf, data); err != nil {
		return "", errors.Errorf("rendering overlay: %w", err)
	}

	return template.HTML(buf.String()), nil
}
