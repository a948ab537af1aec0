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

package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/appexplorer/pkg/metrics"
	"github.com/walteh/appexplorer/pkg/render"
	"github.com/walteh/appexplorer/pkg/structure"
	"github.com/walteh/appexplorer/pkg/viewer"
)

// PathSeparator stands in for "/" inside the explore route parameter
const PathSeparator = "__"

// ⚙️ Config wires the server's collaborators
type Config struct {
	Addr    string
	Root    string // project root holding index.html and public/
	Builder *structure.Builder
	Proxy   *render.Proxy
	Overlay *render.Overlay
	Viewer  []viewer.Option
	Events  http.Handler // change stream, optional
	Logger  zerolog.Logger
}

// 🌐 Server is the explorer HTTP surface
type Server struct {
	cfg    Config
	router chi.Router
}

// New creates a server
func New(cfg Config) (*Server, error) {
	if cfg.Builder == nil {
		return nil, errors.New("builder is required")
	}
	if cfg.Proxy == nil {
		return nil, errors.New("proxy is required")
	}
	if cfg.Overlay == nil {
		return nil, errors.New("overlay is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}

	s := &Server{cfg: cfg}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// 🏃 ListenAndServe serves until ctx is done, then shuts down gracefully.
// Upstream calls have no timeout, so neither do writes.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Errorf("serving: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(s.cfg.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(filepath.Join(s.cfg.Root, "public")))))
	r.Handle("/metrics", metrics.Handler())

	r.Get("/api/get-project-data", s.handleProjectData)
	if s.cfg.Events != nil {
		r.Get("/api/events", s.cfg.Events.ServeHTTP)
	}

	r.Get("/explore/{file_name}", s.handleExplore)

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(s.cfg.Root, "index.html")
	if _, err := os.Stat(index); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("index.html not found")
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// 📋 handleProjectData returns the categorized listing
func (s *Server) handleProjectData(w http.ResponseWriter, r *http.Request) {
	listing := s.cfg.Builder.Listing(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(listing); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encoding listing")
	}
}

// DecodeFileParam turns "app__Models__User.php" into "app/Models/User.php"
func DecodeFileParam(raw string) string {
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	return strings.ReplaceAll(raw, PathSeparator, "/")
}

// 🔍 handleExplore routes views to the upstream and everything else to the
// raw viewer
func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fileName := DecodeFileParam(chi.URLParam(r, "file_name"))
	logger := hlog.FromRequest(r).With().Str("file", fileName).Logger()

	if render.IsTemplatePath(fileName) {
		res := s.cfg.Proxy.RenderTemplate(logger.WithContext(ctx), render.TemplateName(fileName))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(res.Status)
		_, _ = w.Write(res.Body)
		return
	}

	base, err := s.cfg.Builder.BaseDir(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("config unavailable, serving from project root")
		base = s.cfg.Root
	}

	page, err := viewer.New(base, s.cfg.Overlay, s.cfg.Viewer...).Render(logger.WithContext(ctx), fileName)
	if err != nil {
		if errors.Is(err, viewer.ErrOutsideBase) {
			logger.Warn().Err(err).Msg("rejected path")
			http.NotFound(w, r)
			return
		}
		logger.Error().Err(err).Msg("reading raw file")
		http.Error(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
