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

package watch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/walteh/appexplorer/pkg/metrics"
)

// 📣 Event is one change under the app base dir
type Event struct {
	ID   uint64 `json:"id"`
	Op   string `json:"op"`
	Path string `json:"path"`
}

// Broadcaster fans events out to every subscriber. Slow subscribers miss
// events rather than block the publisher.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}
	nextID  uint64
	buffer  int

	// KeepAlive is the interval between SSE comment pings
	KeepAlive time.Duration
}

// NewBroadcaster creates a broadcaster whose subscribers buffer up to
// buffer events
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 10
	}
	return &Broadcaster{
		clients:   make(map[chan Event]struct{}),
		buffer:    buffer,
		KeepAlive: 10 * time.Second,
	}
}

// Subscribe registers a new listener. Call the returned func to leave.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.clients, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers is the number of live listeners
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// 📤 Publish assigns the event an ID and hands it to every subscriber
func (b *Broadcaster) Publish(ev Event) Event {
	b.mu.Lock()
	b.nextID++
	ev.ID = b.nextID
	b.mu.Unlock()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- ev:
		default:
		}
	}
	metrics.RecordChangeEvent(ev.Op)
	return ev
}

// 🌊 ServeHTTP streams events as server-sent events until the client leaves
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error().Msg("response writer does not support flushing")
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, leave := b.Subscribe()
	defer leave()

	metrics.SSEConnectionOpened()
	defer metrics.SSEConnectionClosed()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(b.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error().Err(err).Msg("encoding change event")
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: change\ndata: %s\n\n", ev.ID, data); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
