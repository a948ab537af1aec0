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
	"bytes"
	"context"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/appexplorer/pkg/render"
	"github.com/walteh/appexplorer/pkg/resolve"
)

// Highlighter selects where syntax highlighting happens.
type Highlighter string

const (
	// HighlightClient ships highlight.js and lets the browser colour the code
	HighlightClient Highlighter = "hljs"
	// HighlightServer colours the code with chroma before sending it
	HighlightServer Highlighter = "chroma"
)

// ErrOutsideBase is returned for paths that escape the app base dir
var ErrOutsideBase = errors.Base("path is outside the app directory")

const hljsVersion = "11.11.1"

var shellTmpl = template.Must(template.New("shell").Parse(`<!DOCTYPE html><html><head>
{{.Overlay}}
{{- if .ChromaCSS}}
<style>{{.ChromaCSS}}</style>
{{- else}}
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/{{.Version}}/styles/default.min.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/{{.Version}}/styles/atom-one-dark.min.css">
<script src="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/{{.Version}}/highlight.min.js"></script>
{{- range .Languages}}
<script src="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/{{$.Version}}/languages/{{.}}.min.js"></script>
{{- end}}
{{- end}}
<title>{{.Title}}</title>
</head>
<body style="background-color:rgb(57, 70, 90);">
<div style="margin: auto; width: 90%;">
{{- if .ChromaCSS}}
{{.Code}}
{{- else}}
<pre class="theme-atom-one-dark tab-size"><span class="hljs"><code class="language-{{.Language}}" style="border-radius: 10px;">{{.Code}}</code></span></pre>
<script>hljs.highlightAll();</script>
{{- end}}
</div>
</body></html>`))

var hljsLanguages = []string{"php", "xml", "javascript", "css", "json", "sql", "python", "java"}

type shellData struct {
	Overlay   template.HTML
	ChromaCSS template.CSS
	Version   string
	Languages []string
	Title     string
	Language  string
	Code      template.HTML
}

// 📄 Viewer renders raw source files as highlighted HTML pages
type Viewer struct {
	base         string
	fs           resolve.FileSystem
	overlay      *render.Overlay
	editorScheme string
	highlighter  Highlighter
	style        string
}

// Option configures a Viewer
type Option func(*Viewer)

// WithHighlighter picks client or server side highlighting
func WithHighlighter(h Highlighter) Option {
	return func(v *Viewer) { v.highlighter = h }
}

// WithEditorScheme sets the prefix of the open-in-editor link
func WithEditorScheme(scheme string) Option {
	return func(v *Viewer) { v.editorScheme = scheme }
}

// WithStyle sets the chroma style for server side highlighting
func WithStyle(name string) Option {
	return func(v *Viewer) { v.style = name }
}

// WithFileSystem swaps the disk reader
func WithFileSystem(fsys resolve.FileSystem) Option {
	return func(v *Viewer) { v.fs = fsys }
}

// New creates a viewer serving files under base
func New(base string, overlay *render.Overlay, opts ...Option) *Viewer {
	v := &Viewer{
		base:         base,
		fs:           resolve.OSFileSystem{},
		overlay:      overlay,
		editorScheme: "cursor://file/",
		highlighter:  HighlightClient,
		style:        "monokai",
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ensure rel stays below the base
func (v *Viewer) absPath(rel string) (string, error) {
	base, err := filepath.Abs(v.base)
	if err != nil {
		return "", errors.Errorf("resolving base dir: %w", err)
	}
	abs := filepath.Join(base, filepath.FromSlash(rel))
	inside, err := filepath.Rel(base, abs)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("%w: %s", ErrOutsideBase, rel)
	}
	return abs, nil
}

// 🎯 Render reads base/rel and wraps it in the highlighted page. A read
// failure fails the whole request.
func (v *Viewer) Render(ctx context.Context, rel string) ([]byte, error) {
	abs, err := v.absPath(rel)
	if err != nil {
		return nil, err
	}

	content, err := v.fs.ReadFile(abs)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", rel, err)
	}

	lang := LanguageFor(rel)
	editorPath := editorPath(abs)
	zerolog.Ctx(ctx).Debug().Str("file", rel).Str("language", lang).Str("highlighter", string(v.highlighter)).Msg("rendering raw file")

	overlay, err := v.overlay.Snippet(&render.OverlayLink{
		URL:   EditorURL(v.editorScheme, abs),
		Label: editorPath,
	})
	if err != nil {
		return nil, err
	}

	data := shellData{
		Overlay:   overlay,
		Version:   hljsVersion,
		Languages: hljsLanguages,
		Title:     rel,
		Language:  lang,
	}

	if v.highlighter == HighlightServer {
		code, css, err := v.highlight(rel, lang, string(content))
		if err != nil {
			return nil, err
		}
		data.Code = code
		data.ChromaCSS = css
	} else {
		// the browser sees file contents as markup, except the PHP tags
		data.Code = template.HTML(EscapeDelimiters(lang, string(content)))
	}

	var buf bytes.Buffer
	if err := shellTmpl.Execute(&buf, data); err != nil {
		return nil, errors.Errorf("rendering shell: %w", err)
	}
	return buf.Bytes(), nil
}

func (v *Viewer) highlight(name, lang, content string) (template.HTML, template.CSS, error) {
	lexer := lexers.Match(filepath.Base(name))
	if lexer == nil {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(v.style)
	if style == nil {
		style = styles.Fallback
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.WithLineNumbers(true))

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return "", "", errors.Errorf("tokenising %s: %w", name, err)
	}

	var code bytes.Buffer
	if err := formatter.Format(&code, style, iterator); err != nil {
		return "", "", errors.Errorf("formatting %s: %w", name, err)
	}

	var css bytes.Buffer
	if err := formatter.WriteCSS(&css, style); err != nil {
		return "", "", errors.Errorf("writing styles: %w", err)
	}

	return template.HTML(code.String()), template.CSS(css.String()), nil
}
