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

package server_test

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-bdd/pkg/api"
	"github.com/candlepin/candlepin-bdd/pkg/ca"
	"github.com/candlepin/candlepin-bdd/pkg/idcert"
	"github.com/candlepin/candlepin-bdd/pkg/server"
	"github.com/candlepin/candlepin-bdd/pkg/server/servertest"
)

func requireStatus(t *testing.T, err error, want int) *api.HTTPError {
	t.Helper()
	require.Error(t, err)
	var httpErr *api.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *api.HTTPError, got %T: %v", err, err)
	require.Equal(t, want, httpErr.StatusCode, httpErr.Error())
	return httpErr
}

func TestStatus(t *testing.T) {
	stub := servertest.NewTLSServer(t)

	anon, err := stub.Connect(api.Credentials{})
	require.NoError(t, err)
	status, err := anon.Status(context.Background())
	require.NoError(t, err)
	require.True(t, status.Result)
	require.Equal(t, server.Version, status.Version)
}

func TestRegisterIssuesIdentityCertificate(t *testing.T) {
	ctx := context.Background()
	stub := servertest.NewTLSServer(t)
	admin := stub.Admin()

	before := testutil.ToFloat64(server.MetricRegistrations.WithLabelValues("system"))

	c, err := admin.Register(ctx, &api.RegisterRequest{Name: "web01", Facts: map[string]string{"arch": "x86_64"}})
	require.NoError(t, err)
	require.NotEmpty(t, c.UUID)
	require.Equal(t, "system", c.Type.Label)
	require.Equal(t, "admin", c.Owner.Key)
	require.Equal(t, "admin", c.Username)
	require.Equal(t, map[string]string{"arch": "x86_64"}, c.Facts)
	require.NotNil(t, c.IDCert)
	require.True(t, idcert.HasPEMHeader(c.IDCert.Cert))
	require.True(t, idcert.HasPEMHeader(c.IDCert.Key))
	require.Positive(t, c.IDCert.Serial.Serial)

	require.Equal(t, before+1, testutil.ToFloat64(server.MetricRegistrations.WithLabelValues("system")))

	cert, err := idcert.Parse(c.IDCert.Cert)
	require.NoError(t, err)
	cn, err := cert.SubjectValue("CN")
	require.NoError(t, err)
	require.Equal(t, c.UUID, cn)
	o, err := cert.SubjectValue("O")
	require.NoError(t, err)
	require.Equal(t, "admin", o)
	name, err := cert.DisplayName()
	require.NoError(t, err)
	require.Equal(t, "web01", name)
	require.True(t, cert.X509.SerialNumber.IsInt64())
	require.Equal(t, cert.X509.SerialNumber.Int64(), c.IDCert.Serial.Serial)

	session, err := stub.Connect(api.Credentials{CertPEM: c.IDCert.Cert, KeyPEM: c.IDCert.Key})
	require.NoError(t, err)
	self, err := session.GetConsumer(ctx, c.UUID)
	require.NoError(t, err)
	require.Equal(t, "web01", self.Name)
}

func TestRegistrationRejections(t *testing.T) {
	ctx := context.Background()
	stub := servertest.NewTLSServer(t)
	admin := stub.Admin()

	_, err := admin.Register(ctx, &api.RegisterRequest{Name: "first", UUID: "fixed-uuid"})
	require.NoError(t, err)
	_, err = admin.Register(ctx, &api.RegisterRequest{Name: "test", Type: "person"})
	require.NoError(t, err)

	tests := map[string]struct {
		req  *api.RegisterRequest
		code int
	}{
		"duplicate uuid":           {&api.RegisterRequest{Name: "any name", UUID: "fixed-uuid"}, http.StatusBadRequest},
		"second personal consumer": {&api.RegisterRequest{Name: "test", Type: "person"}, http.StatusBadRequest},
		"unknown type":             {&api.RegisterRequest{Name: "x", Type: "toaster"}, http.StatusBadRequest},
		"missing name":             {&api.RegisterRequest{}, http.StatusBadRequest},
		"unknown owner":            {&api.RegisterRequest{Name: "x", Owner: "nobody"}, http.StatusNotFound},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			before := testutil.ToFloat64(server.MetricRejections.WithLabelValues("400"))
			_, err := admin.Register(ctx, tc.req)
			httpErr := requireStatus(t, err, tc.code)
			require.NotEmpty(t, httpErr.Message)
			require.NotEmpty(t, httpErr.RequestID)
			if tc.code == http.StatusBadRequest {
				require.Equal(t, before+1, testutil.ToFloat64(server.MetricRejections.WithLabelValues("400")))
			}
		})
	}
}

func TestLookupUnknownConsumer(t *testing.T) {
	stub := servertest.NewTLSServer(t)
	_, err := stub.Admin().GetConsumer(context.Background(), "does-not-exist")
	requireStatus(t, err, http.StatusNotFound)
}

func TestAuthentication(t *testing.T) {
	ctx := context.Background()
	stub := servertest.NewTLSServer(t)

	anon, err := stub.Connect(api.Credentials{})
	require.NoError(t, err)
	_, err = anon.Register(ctx, &api.RegisterRequest{Name: "x"})
	requireStatus(t, err, http.StatusUnauthorized)

	wrong, err := stub.Connect(api.Credentials{Username: "admin", Password: "nope"})
	require.NoError(t, err)
	_, err = wrong.GetOwner(ctx, "admin")
	requireStatus(t, err, http.StatusUnauthorized)

	// A certificate from a CA the stub doesn't trust.
	other := servertest.NewTLSServer(t)
	foreign, err := other.Admin().Register(ctx, &api.RegisterRequest{Name: "foreign"})
	require.NoError(t, err)
	impostor, err := stub.Connect(api.Credentials{CertPEM: foreign.IDCert.Cert, KeyPEM: foreign.IDCert.Key})
	require.NoError(t, err)
	_, err = impostor.GetConsumer(ctx, foreign.UUID)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestOwnersAndUsers(t *testing.T) {
	ctx := context.Background()
	stub := servertest.NewTLSServer(t)
	admin := stub.Admin()

	for _, key := range []string{"acme", "globex"} {
		_, err := admin.CreateOwner(ctx, &api.Owner{Key: key})
		require.NoError(t, err)
	}
	_, err := admin.CreateOwner(ctx, &api.Owner{Key: "acme"})
	requireStatus(t, err, http.StatusBadRequest)
	_, err = admin.CreateOwner(ctx, &api.Owner{})
	httpErr := requireStatus(t, err, http.StatusBadRequest)
	require.Equal(t, "Organization key is required", httpErr.Message)
	_, err = admin.CreateUser(ctx, "acme", &api.User{Password: "p"})
	httpErr = requireStatus(t, err, http.StatusBadRequest)
	require.Equal(t, "Username is required", httpErr.Message)

	owner, err := admin.GetOwner(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, "acme", owner.DisplayName)

	created, err := admin.CreateUser(ctx, "acme", &api.User{Username: "wile", Password: "coyote"})
	require.NoError(t, err)
	require.Empty(t, created.Password)
	_, err = admin.CreateUser(ctx, "globex", &api.User{Username: "hank", Password: "scorpio"})
	require.NoError(t, err)
	_, err = admin.CreateUser(ctx, "nowhere", &api.User{Username: "x", Password: "y"})
	requireStatus(t, err, http.StatusNotFound)

	wile, err := stub.Connect(api.Credentials{Username: "wile", Password: "coyote"})
	require.NoError(t, err)
	hank, err := stub.Connect(api.Credentials{Username: "hank", Password: "scorpio"})
	require.NoError(t, err)

	_, err = wile.CreateOwner(ctx, &api.Owner{Key: "mine"})
	requireStatus(t, err, http.StatusForbidden)

	rocket, err := wile.Register(ctx, &api.RegisterRequest{Name: "rocket"})
	require.NoError(t, err)
	require.Equal(t, "acme", rocket.Owner.Key)
	require.Equal(t, "wile", rocket.Username)

	_, err = wile.Register(ctx, &api.RegisterRequest{Name: "x", Owner: "globex"})
	requireStatus(t, err, http.StatusForbidden)
	_, err = hank.GetConsumer(ctx, rocket.UUID)
	requireStatus(t, err, http.StatusForbidden)

	// Person consumers are per user.
	_, err = wile.Register(ctx, &api.RegisterRequest{Name: "test", Type: "person"})
	require.NoError(t, err)
	_, err = hank.Register(ctx, &api.RegisterRequest{Name: "test", Type: "person"})
	require.NoError(t, err)
}

func TestConsumerSessionScope(t *testing.T) {
	ctx := context.Background()
	stub := servertest.NewTLSServer(t)
	admin := stub.Admin()

	a, err := admin.Register(ctx, &api.RegisterRequest{Name: "a"})
	require.NoError(t, err)
	b, err := admin.Register(ctx, &api.RegisterRequest{Name: "b"})
	require.NoError(t, err)

	session, err := stub.Connect(api.Credentials{CertPEM: a.IDCert.Cert, KeyPEM: a.IDCert.Key})
	require.NoError(t, err)
	_, err = session.GetConsumer(ctx, b.UUID)
	requireStatus(t, err, http.StatusForbidden)
	_, err = session.Register(ctx, &api.RegisterRequest{Name: "c"})
	requireStatus(t, err, http.StatusForbidden)

	require.NoError(t, admin.Unregister(ctx, a.UUID))
	_, err = session.GetConsumer(ctx, a.UUID)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestEntitlements(t *testing.T) {
	ctx := context.Background()
	stub := servertest.NewTLSServer(t)

	c, err := stub.Admin().Register(ctx, &api.RegisterRequest{Name: "box"})
	require.NoError(t, err)
	session, err := stub.Connect(api.Credentials{CertPEM: c.IDCert.Cert, KeyPEM: c.IDCert.Key})
	require.NoError(t, err)

	for _, product := range []string{"rhel", "jboss"} {
		ent, err := session.Bind(ctx, c.UUID, product)
		require.NoError(t, err)
		require.Equal(t, product, ent.Product)
		require.Equal(t, 1, ent.Quantity)
	}
	_, err = session.Bind(ctx, c.UUID, "")
	requireStatus(t, err, http.StatusBadRequest)

	ents, err := session.ListEntitlements(ctx, c.UUID)
	require.NoError(t, err)
	require.Len(t, ents, 2)
	require.Equal(t, "jboss", ents[0].Product)

	n, err := session.RevokeAllEntitlements(ctx, c.UUID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	ents, err = session.ListEntitlements(ctx, c.UUID)
	require.NoError(t, err)
	require.Empty(t, ents)
}

func TestUnregisterFreesPersonalConsumer(t *testing.T) {
	ctx := context.Background()
	stub := servertest.NewTLSServer(t)
	admin := stub.Admin()

	p, err := admin.Register(ctx, &api.RegisterRequest{Name: "test", Type: "person"})
	require.NoError(t, err)
	require.NoError(t, admin.Unregister(ctx, p.UUID))
	requireStatus(t, admin.Unregister(ctx, p.UUID), http.StatusNotFound)

	_, err = admin.Register(ctx, &api.RegisterRequest{Name: "test", Type: "person"})
	require.NoError(t, err)
}

func TestRequestIDHeader(t *testing.T) {
	stub := servertest.NewTLSServer(t)

	req, err := http.NewRequest(http.MethodGet, stub.BaseURL+"/consumers/missing", nil)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "admin")
	req.Header.Set(server.RequestIDHeader, "req-42")

	client := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: stub.RootCAs, MinVersion: tls.VersionTLS12}}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "req-42", resp.Header.Get(server.RequestIDHeader))
	var doc api.ErrorDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	require.Equal(t, "req-42", doc.RequestUUID)
	require.NotEmpty(t, doc.DisplayMessage)
}

// FailingCertificateAuthority refuses every issuance.
type FailingCertificateAuthority struct{}

func (fca *FailingCertificateAuthority) IssueIdentityCertificate(context.Context, *ca.Subject) (*ca.IdentityCertificate, error) {
	return nil, errors.New("IssueIdentityCertificate always fails for testing")
}

func (fca *FailingCertificateAuthority) IssueServerCertificate(context.Context, []string) (*tls.Certificate, error) {
	return nil, errors.New("IssueServerCertificate always fails for testing")
}

func (fca *FailingCertificateAuthority) TrustBundle(context.Context) ([]*x509.Certificate, error) {
	return nil, errors.New("TrustBundle always fails for testing")
}

func (fca *FailingCertificateAuthority) Root(context.Context) ([]byte, error) {
	return nil, errors.New("Root always fails for testing")
}

func (fca *FailingCertificateAuthority) Close() error {
	return nil
}

func TestFailingCertificateAuthority(t *testing.T) {
	srv, err := server.New(&FailingCertificateAuthority{})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	admin := api.NewClient(ts.URL+server.PathPrefix, api.WithBasicAuth("admin", "admin"))
	_, err = admin.Register(context.Background(), &api.RegisterRequest{Name: "x"})
	httpErr := requireStatus(t, err, http.StatusInternalServerError)
	require.Equal(t, "error communicating with CA backend", httpErr.Message)

	// Nothing was stored for the failed registration.
	_, err = admin.Register(context.Background(), &api.RegisterRequest{Name: "x", UUID: "same"})
	requireStatus(t, err, http.StatusInternalServerError)
}
