// Copyright 2026 The Candlepin Authors.
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

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the server's displayMessage, or the raw body when the body
	// is not an error document.
	Message   string
	RequestID string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// ErrorDocument is the JSON body the server sends with error responses.
type ErrorDocument struct {
	DisplayMessage string `json:"displayMessage"`
	RequestUUID    string `json:"requestUuid,omitempty"`
}

func newHTTPError(method, path string, code int, body []byte) *HTTPError {
	e := &HTTPError{Method: method, Path: path, StatusCode: code}
	var doc ErrorDocument
	if err := json.Unmarshal(body, &doc); err == nil && doc.DisplayMessage != "" {
		e.Message = doc.DisplayMessage
		e.RequestID = doc.RequestUUID
	} else {
		e.Message = string(body)
	}
	return e
}

// StatusCode extracts the HTTP status code carried by err.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusNotFound
}
