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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Settings holds process configuration taken from the environment
type Settings struct {
	Port         int    // PORT
	UpstreamURL  string // UPSTREAM_URL
	Email        string // LARAVEL_AUTH_EMAIL
	Password     string // LARAVEL_AUTH_PASSWORD
	EditorScheme string // EXPLORER_EDITOR_SCHEME
}

const (
	DefaultPort         = 3000
	DefaultUpstreamURL  = "http://localhost:8000"
	DefaultEmail        = "test@example.com"
	DefaultPassword     = "password"
	DefaultEditorScheme = "cursor://file/"
)

// 🎯 LoadSettings reads an optional .env file then the environment
func LoadSettings(envFiles ...string) (*Settings, error) {
	// a missing .env is normal
	_ = godotenv.Load(envFiles...)

	s := &Settings{
		UpstreamURL:  strings.TrimRight(envOr("UPSTREAM_URL", DefaultUpstreamURL), "/"),
		Email:        envOr("LARAVEL_AUTH_EMAIL", DefaultEmail),
		Password:     envOr("LARAVEL_AUTH_PASSWORD", DefaultPassword),
		EditorScheme: envOr("EXPLORER_EDITOR_SCHEME", DefaultEditorScheme),
		Port:         DefaultPort,
	}

	if raw := strings.TrimPrefix(strings.TrimSpace(os.Getenv("PORT")), ":"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return nil, errors.Errorf("invalid PORT %q", raw)
		}
		s.Port = port
	}

	return s, nil
}

// 🌐 ExplorerURL is the address the dashboard is reachable on
func (s *Settings) ExplorerURL() string {
	return fmt.Sprintf("http://localhost:%d", s.Port)
}

// 🔌 ListenAddr is the address handed to the HTTP server
func (s *Settings) ListenAddr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
