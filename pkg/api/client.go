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

// Package api is a client for the entitlement server REST API.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"go.step.sm/crypto/pemutil"
)

// Option is a functional option for customizing the client.
type Option func(*options)

type options struct {
	UserAgent    string
	Timeout      time.Duration
	RootCAs      *x509.CertPool
	Insecure     bool
	Username     string
	Password     string
	Certificates []tls.Certificate
}

func makeOptions(opts ...Option) *options {
	o := &options{
		UserAgent: "",
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.UserAgent = userAgent
	}
}

// WithTimeout sets the overall request timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.Timeout = timeout
	}
}

// WithRootCAs sets the pool used to verify the server certificate.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(o *options) {
		o.RootCAs = pool
	}
}

// WithInsecureSkipVerify disables server certificate verification.
func WithInsecureSkipVerify(insecure bool) Option {
	return func(o *options) {
		o.Insecure = insecure
	}
}

// WithBasicAuth authenticates every request as the given user.
func WithBasicAuth(username, password string) Option {
	return func(o *options) {
		o.Username = username
		o.Password = password
	}
}

// WithClientCertificate presents cert during the TLS handshake.
func WithClientCertificate(cert tls.Certificate) Option {
	return func(o *options) {
		o.Certificates = append(o.Certificates, cert)
	}
}

type roundTripper struct {
	http.RoundTripper
	UserAgent string
}

// RoundTrip implements `http.RoundTripper`
func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", rt.UserAgent)
	return rt.RoundTripper.RoundTrip(req)
}

func createRoundTripper(o *options) http.RoundTripper {
	inner := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			RootCAs:            o.RootCAs,
			Certificates:       o.Certificates,
			InsecureSkipVerify: o.Insecure, // #nosec G402 -- opt-in for self-signed test servers
			MinVersion:         tls.VersionTLS12,
		},
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if o.UserAgent == "" {
		// There's nothing to do...
		return inner
	}
	return &roundTripper{
		RoundTripper: inner,
		UserAgent:    o.UserAgent,
	}
}

// Client talks to one entitlement server as one identity: a user (basic
// auth), a consumer (client certificate) or nobody.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

// NewClient returns a client for the API rooted at baseURL, e.g.
// https://localhost:8443/candlepin.
func NewClient(baseURL string, opts ...Option) *Client {
	o := makeOptions(opts...)
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: o.Username,
		password: o.Password,
		client: &http.Client{
			Transport: createRoundTripper(o),
			Timeout:   o.Timeout,
		},
	}
}

// Credentials identify a session. Either Username/Password or CertPEM/KeyPEM
// is expected; all empty yields an anonymous session.
type Credentials struct {
	Username string
	Password string
	CertPEM  string
	KeyPEM   string
}

// Connect opens a session with the given credentials.
func Connect(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if creds.CertPEM != "" || creds.KeyPEM != "" {
		cert, err := KeyPair(creds.CertPEM, creds.KeyPEM)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithClientCertificate(cert))
	}
	if creds.Username != "" {
		opts = append(opts, WithBasicAuth(creds.Username, creds.Password))
	}
	return NewClient(baseURL, opts...), nil
}

// KeyPair builds a TLS client certificate from PEM encoded certificate and key.
func KeyPair(certPEM, keyPEM string) (tls.Certificate, error) {
	certs, err := cryptoutils.UnmarshalCertificatesFromPEM([]byte(certPEM))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("parsing client certificate: %w", err)
	}
	if len(certs) == 0 {
		return tls.Certificate{}, errors.New("parsing client certificate: no certificate found")
	}
	key, err := pemutil.ParseKey([]byte(keyPEM))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("parsing client key: %w", err)
	}

	pair := tls.Certificate{PrivateKey: key, Leaf: certs[0]}
	for _, c := range certs {
		pair.Certificate = append(pair.Certificate, c.Raw)
	}
	return pair, nil
}

// Username is the basic auth user of this session, if any.
func (c *Client) Username() string {
	return c.username
}

// BaseURL is the API root this session talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest builds and executes an HTTP request. body may be nil.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// call performs the request and decodes a 2xx JSON body into target, which
// may be nil. Non-2xx responses return *HTTPError.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, target any) error {
	resp, err := c.doRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(method, path, resp.StatusCode, data)
	}

	if target == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
