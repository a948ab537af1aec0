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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/appexplorer/pkg/upstream"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

// 🧪 fakeBackend counts logins and renders; viewStatus can be changed
// between requests
type fakeBackend struct {
	loginStatus int
	viewStatus  atomic.Int64
	viewBody    string
	logins      atomic.Int64
	renders     atomic.Int64
	lastView    atomic.Value
}

func newFakeBackend(t *testing.T, loginStatus, viewStatus int, viewBody string) (*fakeBackend, *httptest.Server) {
	f := &fakeBackend{loginStatus: loginStatus, viewBody: viewBody}
	f.viewStatus.Store(int64(viewStatus))

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		n := f.logins.Add(1)
		w.WriteHeader(f.loginStatus)
		if f.loginStatus == http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-" + string(rune('0'+n))})
		}
	})
	mux.HandleFunc("/api/views/", func(w http.ResponseWriter, r *http.Request) {
		f.renders.Add(1)
		f.lastView.Store(strings.TrimPrefix(r.URL.Path, "/api/views/"))
		w.WriteHeader(int(f.viewStatus.Load()))
		_, _ = w.Write([]byte(f.viewBody))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func newProxy(srv *httptest.Server) (*Proxy, *upstream.TokenManager) {
	client := upstream.NewClient(srv.URL, nil)
	tokens := upstream.NewTokenManager(client, "test@example.com", "password")
	return NewProxy(tokens, client, NewOverlay("http://localhost:3000")), tokens
}

func TestIsTemplatePath(t *testing.T) {
	assert.True(t, IsTemplatePath("resources/views/welcome.blade.php"))
	assert.True(t, IsTemplatePath("packages/x/resources/views/a.php"))
	assert.False(t, IsTemplatePath("app/Models/User.php"))
	assert.False(t, IsTemplatePath("resources/js/app.js"))
}

func TestTemplateName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "resources/views/welcome.blade.php", want: "welcome"},
		{in: "resources/views/admin/dashboard.blade.php", want: "dashboard"},
		{in: "resources/views/plain.php", want: "plain"},
		{in: `resources\views\win.blade.php`, want: "win"},
		{in: "resources/views/page.html", want: "page.html"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TemplateName(tt.in))
		})
	}
}

func TestRenderLoginFailureSkipsRender(t *testing.T) {
	f, srv := newFakeBackend(t, http.StatusInternalServerError, http.StatusOK, "<html></html>")
	proxy, tokens := newProxy(srv)

	res := proxy.RenderTemplate(testContext(t), "welcome")

	assert.Equal(t, http.StatusUnauthorized, res.Status, "login failure should surface as 401")
	assert.Equal(t, MsgLoginFailed, string(res.Body))
	assert.EqualValues(t, 1, f.logins.Load(), "one login should be attempted")
	assert.EqualValues(t, 0, f.renders.Load(), "no render call should be made")
	assert.Equal(t, upstream.NoToken, tokens.State())
}

func TestRenderInjectsOverlay(t *testing.T) {
	f, srv := newFakeBackend(t, http.StatusOK, http.StatusOK, "<html><head><title>Hi</title></head><body>page</body></html>")
	proxy, _ := newProxy(srv)
	ctx := testContext(t)

	res := proxy.RenderTemplate(ctx, "welcome")
	require.Equal(t, http.StatusOK, res.Status)

	body := string(res.Body)
	assert.Contains(t, body, `<template id="appexplorer-overlay">`, "overlay should be injected")
	assert.Less(t, strings.Index(body, "<template"), strings.Index(body, "</head>"), "overlay should sit before </head>")
	assert.Contains(t, body, "Back to explorer")
	assert.Contains(t, body, `href="http://localhost:3000"`)
	assert.Equal(t, "welcome", f.lastView.Load())

	res = proxy.RenderTemplate(ctx, "welcome")
	require.Equal(t, http.StatusOK, res.Status)
	assert.EqualValues(t, 1, f.logins.Load(), "second render should reuse the token")
	assert.EqualValues(t, 2, f.renders.Load())
}

func TestRenderUnauthorizedClearsToken(t *testing.T) {
	f, srv := newFakeBackend(t, http.StatusOK, http.StatusUnauthorized, "expired")
	proxy, tokens := newProxy(srv)
	ctx := testContext(t)

	res := proxy.RenderTemplate(ctx, "welcome")
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, MsgTokenRejected, string(res.Body))
	assert.Equal(t, upstream.NoToken, tokens.State(), "401 should clear the token")
	assert.EqualValues(t, 1, f.logins.Load())

	f.viewStatus.Store(http.StatusOK)
	res = proxy.RenderTemplate(ctx, "welcome")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.EqualValues(t, 2, f.logins.Load(), "next call should log in exactly once more")
}

func TestRenderAcceptsAnySuccessStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "created", status: http.StatusCreated},
		{name: "non_authoritative", status: http.StatusNonAuthoritativeInfo},
		{name: "partial_content", status: http.StatusPartialContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newFakeBackend(t, http.StatusOK, tt.status, "<html><head></head><body>page</body></html>")
			proxy, _ := newProxy(srv)

			res := proxy.RenderTemplate(testContext(t), "welcome")
			assert.Equal(t, http.StatusOK, res.Status)
			assert.Contains(t, string(res.Body), `<template id="appexplorer-overlay">`)
			assert.Contains(t, string(res.Body), "page")
		})
	}
}

func TestRenderPassesThroughUpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "not_found", status: http.StatusNotFound},
		{name: "server_error", status: http.StatusInternalServerError},
		{name: "forbidden", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newFakeBackend(t, http.StatusOK, tt.status, "boom")
			proxy, tokens := newProxy(srv)

			res := proxy.RenderTemplate(testContext(t), "missing")
			assert.Equal(t, tt.status, res.Status, "status should pass through")
			assert.Equal(t, MsgFetchFailed, string(res.Body))
			assert.Equal(t, upstream.HasToken, tokens.State(), "non-401 errors keep the token")
		})
	}
}

func TestRenderTransportError(t *testing.T) {
	_, srv := newFakeBackend(t, http.StatusOK, http.StatusOK, "")
	client := upstream.NewClient(srv.URL, nil)
	tokens := upstream.NewTokenManager(client, "a", "b")
	_, err := tokens.ObtainOrRefresh(testContext(t))
	require.NoError(t, err)
	srv.Close()

	res := NewProxy(tokens, client, NewOverlay("http://localhost:3000")).RenderTemplate(testContext(t), "welcome")
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.Equal(t, MsgFetchFailed, string(res.Body))
}

func TestRenderIgnoresClientCancellation(t *testing.T) {
	f, srv := newFakeBackend(t, http.StatusOK, http.StatusOK, "<head></head>")
	proxy, _ := newProxy(srv)

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	res := proxy.RenderTemplate(ctx, "welcome")
	assert.Equal(t, http.StatusOK, res.Status, "a gone client should not abort the upstream call")
	assert.EqualValues(t, 1, f.renders.Load())
}

func TestInject(t *testing.T) {
	const snippet = "<!--x-->"
	tests := []struct {
		name  string
		doc   string
		want  string
		point InjectPoint
	}{
		{
			name:  "before_head_close",
			doc:   "<html><head><title>t</title></head><body></body></html>",
			want:  "<html><head><title>t</title><!--x--></head><body></body></html>",
			point: BeforeHeadClose,
		},
		{
			name:  "upper_case_head",
			doc:   "<HTML><HEAD></HEAD></HTML>",
			want:  "<HTML><HEAD><!--x--></HEAD></HTML>",
			point: BeforeHeadClose,
		},
		{
			name:  "head_inside_script_ignored",
			doc:   `<head><script>var s = "</head>";</script></head>`,
			want:  `<head><script>var s = "</head>";</script><!--x--></head>`,
			point: BeforeHeadClose,
		},
		{
			name:  "after_body_open",
			doc:   `<html><body class="a">hi</body></html>`,
			want:  `<html><body class="a"><!--x-->hi</body></html>`,
			point: AfterBodyOpen,
		},
		{
			name:  "prepended",
			doc:   "<p>fragment</p>",
			want:  "<!--x--><p>fragment</p>",
			point: Prepended,
		},
		{
			name:  "empty",
			doc:   "",
			want:  "<!--x-->",
			point: Prepended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, point := Inject([]byte(tt.doc), snippet)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.point, point)
		})
	}
}

func TestOverlaySnippet(t *testing.T) {
	o := NewOverlay("http://localhost:3000")

	plain, err := o.Snippet(nil)
	require.NoError(t, err)
	assert.NotContains(t, string(plain), "Open ", "no editor link without one")

	withEditor, err := o.Snippet(&OverlayLink{URL: "cursor://file//home/me/app/x.php", Label: "/home/me/app/x.php"})
	require.NoError(t, err)
	s := string(withEditor)
	assert.True(t, strings.HasPrefix(s, "<template"), "snippet should start with the banner template")
	assert.Contains(t, s, `href="cursor://file//home/me/app/x.php"`, "editor scheme should survive escaping")
	assert.Contains(t, s, "Open /home/me/app/x.php")
	assert.NotContains(t, s, "ZgotmplZ", "editor url should not be filtered")
	assert.Contains(t, s, "</script>", "snippet should carry the mover script")
}
