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

package upstream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/appexplorer/pkg/metrics"
)

// TokenState is whether a bearer token is cached.
type TokenState int

const (
	NoToken TokenState = iota
	HasToken
)

func (s TokenState) String() string {
	if s == HasToken {
		return "has_token"
	}
	return "no_token"
}

// 🔌 Authenticator performs the login exchange
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// 🔐 TokenManager owns the single process-wide upstream token.
//
// The lock covers only reads and writes of the slot. Requests that find the
// slot empty at the same time each log in, and the last one to finish wins.
type TokenManager struct {
	auth     Authenticator
	email    string
	password string

	mu    sync.Mutex
	token string

	logins atomic.Int64
}

// NewTokenManager creates a manager starting in NoToken
func NewTokenManager(auth Authenticator, email, password string) *TokenManager {
	return &TokenManager{auth: auth, email: email, password: password}
}

// State reports whether a token is cached
func (m *TokenManager) State() TokenState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return NoToken
	}
	return HasToken
}

// LoginCount is the number of login exchanges attempted so far
func (m *TokenManager) LoginCount() int64 {
	return m.logins.Load()
}

// 🎯 ObtainOrRefresh returns the cached token or logs in to get one. A
// failed exchange leaves the manager in NoToken.
func (m *TokenManager) ObtainOrRefresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token != "" {
		return token, nil
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("email", m.email).Msg("no cached token, logging in")

	m.logins.Add(1)
	token, err := m.auth.Login(ctx, m.email, m.password)
	if err != nil {
		metrics.RecordLogin(false)
		var authErr *AuthError
		if errors.As(err, &authErr) {
			logger.Error().
				Int("status", authErr.StatusCode).
				Str("body", authErr.Body).
				Interface("headers", authErr.Header).
				Str("reason", authErr.Reason).
				Msg("upstream login rejected")
		} else {
			logger.Error().Err(err).Msg("upstream login failed")
		}
		return "", errors.Errorf("obtaining token: %w", err)
	}
	metrics.RecordLogin(true)

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	logger.Debug().Msg("token cached")
	return token, nil
}

// 🗑️ Invalidate drops the cached token so the next call logs in again
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
}
