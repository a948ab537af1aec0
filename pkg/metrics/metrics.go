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

// Package metrics exposes Prometheus counters for the explorer server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appexplorer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appexplorer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	loginExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appexplorer_upstream_logins_total",
			Help: "Login exchanges performed against the upstream service",
		},
		[]string{"result"},
	)

	renderResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appexplorer_render_results_total",
			Help: "Template render outcomes by client-visible status",
		},
		[]string{"status"},
	)

	groupsResolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appexplorer_groups_resolved_total",
			Help: "Config groups resolved into entries",
		},
	)

	sseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "appexplorer_sse_connections_active",
			Help: "Number of active change-event streams",
		},
	)

	changeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "appexplorer_change_events_total",
			Help: "Filesystem change events published",
		},
		[]string{"op"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLogin records one login exchange.
func RecordLogin(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	loginExchangesTotal.WithLabelValues(result).Inc()
}

// RecordRender records the status a render request returned.
func RecordRender(status int) {
	renderResultsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordGroupsResolved adds n resolved groups.
func RecordGroupsResolved(n int) {
	groupsResolvedTotal.Add(float64(n))
}

// SSEConnectionOpened and SSEConnectionClosed track live streams.
func SSEConnectionOpened() { sseConnectionsActive.Inc() }
func SSEConnectionClosed() { sseConnectionsActive.Dec() }

// RecordChangeEvent records a published filesystem event.
func RecordChangeEvent(op string) {
	changeEventsTotal.WithLabelValues(op).Inc()
}

// Middleware returns HTTP middleware that records request metrics. The
// route label is the chi route pattern so path parameters do not explode
// label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordHTTPRequest(r.Method, routePattern(r), status, time.Since(start))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
