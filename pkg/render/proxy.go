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
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/walteh/appexplorer/pkg/metrics"
	"github.com/walteh/appexplorer/pkg/upstream"
)

// ViewsMarker identifies paths the upstream renders itself
const ViewsMarker = "resources/views"

const (
	MsgLoginFailed   = "Failed to authenticate with upstream server"
	MsgTokenRejected = "Authentication failed - please try again"
	MsgFetchFailed   = "Error fetching view"
)

// 🔌 Tokens hands out the cached upstream token
type Tokens interface {
	ObtainOrRefresh(ctx context.Context) (string, error)
	Invalidate()
}

// 🔌 Views fetches rendered templates from the upstream
type Views interface {
	RenderView(ctx context.Context, token, name string) (*upstream.ViewResponse, error)
}

// Result is what the client receives for a render request.
type Result struct {
	Body   []byte
	Status int
}

// 🖼️ Proxy renders templates through the upstream service
type Proxy struct {
	tokens  Tokens
	views   Views
	overlay *Overlay
}

// NewProxy creates a render proxy
func NewProxy(tokens Tokens, views Views, overlay *Overlay) *Proxy {
	return &Proxy{tokens: tokens, views: views, overlay: overlay}
}

// IsTemplatePath reports whether p should be rendered by the upstream
func IsTemplatePath(p string) bool {
	return strings.Contains(p, ViewsMarker)
}

// TemplateName turns "resources/views/welcome.blade.php" into "welcome"
func TemplateName(p string) string {
	name := path.Base(strings.ReplaceAll(p, "\\", "/"))
	name = strings.Replace(name, ".blade", "", 1)
	name = strings.Replace(name, ".php", "", 1)
	return name
}

// 🎯 RenderTemplate fetches the rendered template and adds the overlay.
//
// There is no retry. An upstream 401 drops the cached token so the next
// call logs in again. The upstream exchange is not cancelled when the
// client goes away.
func (p *Proxy) RenderTemplate(ctx context.Context, target string) Result {
	ctx = context.WithoutCancel(ctx)
	logger := zerolog.Ctx(ctx).With().Str("template", target).Logger()

	token, err := p.tokens.ObtainOrRefresh(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("no upstream token available")
		return p.result(http.StatusUnauthorized, MsgLoginFailed)
	}

	resp, err := p.views.RenderView(ctx, token, target)
	if err != nil {
		logger.Error().Err(err).Msg("fetching view")
		return p.result(http.StatusInternalServerError, MsgFetchFailed)
	}

	// any 2xx is a rendered view
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusUnauthorized:
		logger.Warn().Msg("upstream rejected token, clearing it")
		p.tokens.Invalidate()
		return p.result(http.StatusUnauthorized, MsgTokenRejected)
	default:
		logger.Error().Int("status", resp.StatusCode).Str("body", string(resp.Body)).Msg("fetching view")
		return p.result(resp.StatusCode, MsgFetchFailed)
	}

	snippet, err := p.overlay.Snippet(nil)
	if err != nil {
		logger.Error().Err(err).Msg("rendering overlay")
		return p.result(http.StatusOK, string(resp.Body))
	}

	body, point := Inject(resp.Body, string(snippet))
	if point != BeforeHeadClose {
		logger.Warn().Stringer("inject_point", point).Msg("view has no closing head tag")
	}

	metrics.RecordRender(http.StatusOK)
	return Result{Body: body, Status: http.StatusOK}
}

func (p *Proxy) result(status int, msg string) Result {
	metrics.RecordRender(status)
	return Result{Body: []byte(msg), Status: status}
}
