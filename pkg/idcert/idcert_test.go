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

package idcert_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"net"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/candlepin/candlepin-bdd/pkg/idcert"
	"github.com/candlepin/candlepin-bdd/pkg/test"
)

func identityPEM(t *testing.T, cn, org, name string) (string, string) {
	t.Helper()
	rootCert, rootKey, err := test.GenerateRootCA()
	if err != nil {
		t.Fatal(err)
	}
	leaf, leafKey, err := test.GenerateIdentityCert(cn, org, name, rootCert, rootKey)
	if err != nil {
		t.Fatal(err)
	}
	certPEM, keyPEM, err := test.EncodePEM(leaf, leafKey)
	if err != nil {
		t.Fatal(err)
	}
	return certPEM, keyPEM
}

func TestParseIdentityCertificate(t *testing.T) {
	certPEM, keyPEM := identityPEM(t, "testConsumer1", "acme", "testConsumer1")

	if !idcert.HasPEMHeader(certPEM) || !idcert.HasPEMHeader(keyPEM) {
		t.Fatal("expected PEM blobs to start with ---")
	}

	c, err := idcert.Parse(certPEM)
	if err != nil {
		t.Fatal(err)
	}

	wantSubject := []idcert.Attribute{{Key: "CN", Value: "testConsumer1"}, {Key: "O", Value: "acme"}}
	if diff := cmp.Diff(wantSubject, c.Subject); diff != "" {
		t.Errorf("Subject: -want +got: %s", diff)
	}
	if got := c.SubjectString(); got != "/CN=testConsumer1/O=acme" {
		t.Errorf("unexpected subject string %s", got)
	}

	cn, err := c.SubjectValue("CN")
	if err != nil {
		t.Fatal(err)
	}
	if cn != "testConsumer1" {
		t.Errorf("expected testConsumer1, got %s", cn)
	}
	if o, _ := c.SubjectValue("O"); o != "acme" {
		t.Errorf("expected acme, got %s", o)
	}
	if _, err := c.SubjectValue("OU"); !errors.Is(err, idcert.ErrFieldNotFound) {
		t.Errorf("expected ErrFieldNotFound, got %v", err)
	}

	san, err := c.Extension("subjectAltName")
	if err != nil {
		t.Fatal(err)
	}
	if san != "DirName:/CN=testConsumer1" {
		t.Errorf("unexpected subjectAltName %q", san)
	}
	name, err := c.DisplayName()
	if err != nil {
		t.Fatal(err)
	}
	if name != "testConsumer1" {
		t.Errorf("expected testConsumer1, got %s", name)
	}

	if ku, _ := c.Extension("keyUsage"); ku != "Digital Signature, Key Encipherment" {
		t.Errorf("unexpected keyUsage %q", ku)
	}
	if eku, _ := c.Extension("extendedKeyUsage"); eku != "TLS Web Client Authentication" {
		t.Errorf("unexpected extendedKeyUsage %q", eku)
	}
	if aki, err := c.Extension("authorityKeyIdentifier"); err == nil && !strings.HasPrefix(aki, "keyid:") {
		t.Errorf("unexpected authorityKeyIdentifier %q", aki)
	}
	if _, err := c.Extension("nsComment"); !errors.Is(err, idcert.ErrFieldNotFound) {
		t.Errorf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestSubjectValueStopsAtDelimiters(t *testing.T) {
	c := &idcert.Certificate{Subject: []idcert.Attribute{
		{Key: "CN", Value: "abc"},
		{Key: "OU", Value: "x=y"},
		{Key: "O", Value: "org"},
	}}
	tests := map[string]string{
		"CN": "abc",
		"OU": "x",
		"O":  "org",
	}
	for key, want := range tests {
		got, err := c.SubjectValue(key)
		if err != nil {
			t.Fatalf("%s: %v", key, err)
		}
		if got != want {
			t.Errorf("%s: expected %s, got %s", key, want, got)
		}
	}
	// regexp meta characters in the key are literal
	if _, err := c.SubjectValue("C.*"); !errors.Is(err, idcert.ErrFieldNotFound) {
		t.Errorf("expected ErrFieldNotFound, got %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"DirName:/CN=testConsumer1":   "testConsumer1",
		"DirName:/CN=a/O=b":           "a/O=b",
		"DNS:example.com":             "DNS:example.com",
		"x DirName:/CN=testConsumer1": "x DirName:/CN=testConsumer1",
		"":                            "",
	}
	for in, want := range tests {
		if got := idcert.DisplayName(in); got != want {
			t.Errorf("DisplayName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	_, keyPEM := identityPEM(t, "c", "o", "n")
	for name, input := range map[string]string{
		"empty":       "",
		"garbage":     "this is not a certificate",
		"private key": keyPEM,
		"bad body":    "-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := idcert.Parse(input); !errors.Is(err, idcert.ErrMalformedCertificate) {
				t.Errorf("expected ErrMalformedCertificate, got %v", err)
			}
		})
	}
}

func TestGeneralNames(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	u, _ := url.Parse("https://example.com/consumer")
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "server", Organization: []string{"acme"}},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(time.Hour),
		DNSNames:              []string{"host.example.com"},
		EmailAddresses:        []string{"admin@example.com"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		URIs:                  []*url.URL{u},
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		t.Fatal(err)
	}

	c, err := idcert.Parse(string(cryptoutils.PEMEncode(cryptoutils.CertificatePEMType, der)))
	if err != nil {
		t.Fatal(err)
	}
	want := "DNS:host.example.com, email:admin@example.com, IP Address:127.0.0.1, URI:https://example.com/consumer"
	if got, _ := c.Extension("subjectAltName"); got != want {
		t.Errorf("subjectAltName: expected %q, got %q", want, got)
	}
	if got, _ := c.Extension("basicConstraints"); got != "CA:TRUE" {
		t.Errorf("basicConstraints: expected CA:TRUE, got %q", got)
	}
	if got, _ := c.Extension("keyUsage"); got != "Certificate Sign" {
		t.Errorf("keyUsage: expected Certificate Sign, got %q", got)
	}
	if got := c.SubjectString(); got != "/O=acme/CN=server" {
		t.Errorf("unexpected subject %s", got)
	}
	// the name is not a DirName so it passes through untouched
	if got, _ := c.DisplayName(); got != want {
		t.Errorf("DisplayName: expected %q, got %q", want, got)
	}
}
