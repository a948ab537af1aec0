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
	"fmt"
	"net/http"
)

// 🚫 AuthError is a failed login exchange
type AuthError struct {
	StatusCode int
	Body       string
	Header     http.Header
	Reason     string
}

func (e *AuthError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("upstream login failed with status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("upstream login failed with status %d", e.StatusCode)
}
