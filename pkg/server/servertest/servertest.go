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

// Package servertest runs the stub entitlement server over TLS for tests.
package servertest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/http/httptest"
	"testing"

	"github.com/candlepin/candlepin-bdd/pkg/api"
	"github.com/candlepin/candlepin-bdd/pkg/ca/ephemeralca"
	"github.com/candlepin/candlepin-bdd/pkg/server"
)

// Stub is a running stub server whose serving and identity certificates
// come from the same ephemeral CA.
type Stub struct {
	*httptest.Server
	Stub    *server.Server
	CA      *ephemeralca.EphemeralCA
	RootCAs *x509.CertPool
	// BaseURL includes the API path prefix.
	BaseURL string
}

// NewTLSServer starts a stub server and closes it when the test ends.
func NewTLSServer(t testing.TB, opts ...server.Option) *Stub {
	t.Helper()

	eca, err := ephemeralca.NewEphemeralCA()
	if err != nil {
		t.Fatalf("creating ephemeral CA: %v", err)
	}
	srv, err := server.New(eca, opts...)
	if err != nil {
		t.Fatalf("creating stub server: %v", err)
	}
	serving, err := eca.IssueServerCertificate(context.Background(), []string{"127.0.0.1", "localhost"})
	if err != nil {
		t.Fatalf("issuing serving certificate: %v", err)
	}
	bundle, err := eca.TrustBundle(context.Background())
	if err != nil {
		t.Fatalf("reading trust bundle: %v", err)
	}
	roots := x509.NewCertPool()
	roots.AddCert(bundle[len(bundle)-1])

	ts := httptest.NewUnstartedServer(srv.Handler())
	ts.TLS = &tls.Config{
		Certificates: []tls.Certificate{*serving},
		ClientAuth:   tls.RequestClientCert,
		MinVersion:   tls.VersionTLS12,
	}
	ts.StartTLS()
	t.Cleanup(ts.Close)

	return &Stub{
		Server:  ts,
		Stub:    srv,
		CA:      eca,
		RootCAs: roots,
		BaseURL: ts.URL + server.PathPrefix,
	}
}

// Connect opens a session against the stub trusting its CA.
func (s *Stub) Connect(creds api.Credentials) (*api.Client, error) {
	return api.Connect(s.BaseURL, creds, api.WithRootCAs(s.RootCAs))
}

// Admin returns a session as the default super admin.
func (s *Stub) Admin() *api.Client {
	return api.NewClient(s.BaseURL, api.WithRootCAs(s.RootCAs), api.WithBasicAuth("admin", "admin"))
}
