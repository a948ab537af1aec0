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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🌐 Client talks to the upstream application's token and view endpoints
type Client struct {
	baseURL string
	http    *http.Client
}

// ViewResponse is an upstream render response, whatever its status.
type ViewResponse struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// NewClient creates a client for baseURL. A nil hc uses http.DefaultClient.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// BaseURL returns the upstream root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// 🔑 Login exchanges credentials for a bearer token. Any response status is
// read; a non-200 answer comes back as *AuthError.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", errors.Errorf("encoding login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/token", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Errorf("making login request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Errorf("reading login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body), Header: resp.Header.Clone()}
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", errors.Errorf("decoding login response: %w", err)
	}
	if lr.Token == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body), Header: resp.Header.Clone(), Reason: "response carried no token"}
	}

	return lr.Token, nil
}

// 🖼️ RenderView asks the upstream to render the named template. The
// response is returned for every status; only transport failures error.
func (c *Client) RenderView(ctx context.Context, token, name string) (*ViewResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.viewURL(name), nil)
	if err != nil {
		return nil, errors.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Errorf("making view request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Errorf("reading view response: %w", err)
	}

	return &ViewResponse{StatusCode: resp.StatusCode, Body: body, Header: resp.Header}, nil
}

// viewURL keeps the slashes of nested template names and escapes the rest.
func (c *Client) viewURL(name string) string {
	segments := strings.Split(strings.Trim(name, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.baseURL + "/api/views/" + strings.Join(segments, "/")
}
