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

// RegisterRequest describes a consumer to register. UUID and Owner are
// optional; the server picks a UUID and the caller's owner when empty.
type RegisterRequest struct {
	Name  string
	Type  string
	UUID  string
	Owner string
	Facts map[string]string
}

// Register creates a consumer.
// POST /consumers?owner=:key
func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*Consumer, error) {
	body := Consumer{
		UUID:  req.UUID,
		Name:  req.Name,
		Type:  ConsumerType{Label: req.Type},
		Facts: req.Facts,
	}
	query := url.Values{}
	if req.Owner != "" {
		query.Set("owner", req.Owner)
	}
	var result Consumer
	if err := c.call(ctx, http.MethodPost, "/consumers", query, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetConsumer fetches a consumer by UUID.
// GET /consumers/:uuid
func (c *Client) GetConsumer(ctx context.Context, uuid string) (*Consumer, error) {
	var result Consumer
	if err := c.call(ctx, http.MethodGet, "/consumers/"+url.PathEscape(uuid), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Unregister deletes a consumer.
// DELETE /consumers/:uuid
func (c *Client) Unregister(ctx context.Context, uuid string) error {
	return c.call(ctx, http.MethodDelete, "/consumers/"+url.PathEscape(uuid), nil, nil, nil)
}

// ListEntitlements returns the consumer's entitlements.
// GET /consumers/:uuid/entitlements
func (c *Client) ListEntitlements(ctx context.Context, uuid string) ([]Entitlement, error) {
	var result []Entitlement
	if err := c.call(ctx, http.MethodGet, "/consumers/"+url.PathEscape(uuid)+"/entitlements", nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Bind consumes one entitlement for product.
// POST /consumers/:uuid/entitlements?product=:id
func (c *Client) Bind(ctx context.Context, uuid, product string) (*Entitlement, error) {
	query := url.Values{"product": []string{product}}
	var result Entitlement
	if err := c.call(ctx, http.MethodPost, "/consumers/"+url.PathEscape(uuid)+"/entitlements", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RevokeAllEntitlements removes every entitlement of the consumer and
// reports how many were removed.
// DELETE /consumers/:uuid/entitlements
func (c *Client) RevokeAllEntitlements(ctx context.Context, uuid string) (int, error) {
	var result DeletedRecords
	if err := c.call(ctx, http.MethodDelete, "/consumers/"+url.PathEscape(uuid)+"/entitlements", nil, nil, &result); err != nil {
		return 0, err
	}
	return result.DeletedRecords, nil
}
