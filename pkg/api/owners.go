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
	"context"
	"net/http"
	"net/url"
)

// Status reports whether the server is up.
// GET /status
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var result Status
	if err := c.call(ctx, http.MethodGet, "/status", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateOwner creates an owner. Requires a super admin session.
// POST /owners
func (c *Client) CreateOwner(ctx context.Context, owner *Owner) (*Owner, error) {
	var result Owner
	if err := c.call(ctx, http.MethodPost, "/owners", nil, owner, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOwner fetches an owner by key.
// GET /owners/:key
func (c *Client) GetOwner(ctx context.Context, key string) (*Owner, error) {
	var result Owner
	if err := c.call(ctx, http.MethodGet, "/owners/"+url.PathEscape(key), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateUser creates a user inside an owner. Requires a super admin session.
// POST /owners/:key/users
func (c *Client) CreateUser(ctx context.Context, ownerKey string, user *User) (*User, error) {
	var result User
	if err := c.call(ctx, http.MethodPost, "/owners/"+url.PathEscape(ownerKey)+"/users", nil, user, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
