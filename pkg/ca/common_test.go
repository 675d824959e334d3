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

package ca

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/candlepin/candlepin-bdd/pkg/test"
)

func TestMakeIdentityX509(t *testing.T) {
	cert, err := MakeIdentityX509(&Subject{UUID: "5a6b", Owner: "acme", Name: "web01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, n := range cert.Subject.ExtraNames {
		got = append(got, n.Type.String()+"="+n.Value.(string))
	}
	if diff := cmp.Diff([]string{"2.5.4.3=5a6b", "2.5.4.10=acme"}, got); diff != "" {
		t.Errorf("subject mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}, cert.ExtKeyUsage); diff != "" {
		t.Errorf("eku mismatch (-want +got):\n%s", diff)
	}
	if len(cert.ExtraExtensions) != 1 {
		t.Fatalf("expected a subjectAltName extension, got %d extensions", len(cert.ExtraExtensions))
	}
	if cert.SerialNumber == nil || cert.SerialNumber.Sign() <= 0 {
		t.Errorf("expected positive serial, got %v", cert.SerialNumber)
	}

	if _, err := MakeIdentityX509(&Subject{Name: "nouuid"}); err == nil {
		t.Error("expected error without uuid")
	}
	if _, err := MakeIdentityX509(nil); err == nil {
		t.Error("expected error for nil subject")
	}
}

func TestIdentitySerialsFitInt64(t *testing.T) {
	for i := 0; i < 50; i++ {
		cert, err := MakeIdentityX509(&Subject{UUID: "5a6b", Name: "web01"})
		if err != nil {
			t.Fatal(err)
		}
		if cert.SerialNumber.Sign() <= 0 || cert.SerialNumber.BitLen() > 63 {
			t.Fatalf("serial %v does not fit a positive int64", cert.SerialNumber)
		}
		if !cert.SerialNumber.IsInt64() {
			t.Fatalf("serial %v is not an int64", cert.SerialNumber)
		}
	}
}

func TestMakeServerX509(t *testing.T) {
	cert, err := MakeServerX509([]string{"localhost", "::1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cert.Subject.CommonName != "localhost" {
		t.Errorf("expected CN localhost, got %q", cert.Subject.CommonName)
	}
	if len(cert.DNSNames) != 1 || len(cert.IPAddresses) != 1 {
		t.Errorf("expected one DNS name and one IP, got %v %v", cert.DNSNames, cert.IPAddresses)
	}
	if _, err := MakeServerX509(nil); err == nil {
		t.Error("expected error with no hosts")
	}
}

func TestToSignatureAlgorithm(t *testing.T) {
	ecKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	rsaKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	_, edKey, _ := ed25519.GenerateKey(rand.Reader)

	tests := map[string]struct {
		signer crypto.Signer
		hash   crypto.Hash
		want   x509.SignatureAlgorithm
		err    bool
	}{
		"ecdsa sha256": {ecKey, crypto.SHA256, x509.ECDSAWithSHA256, false},
		"ecdsa sha384": {ecKey, crypto.SHA384, x509.ECDSAWithSHA384, false},
		"rsa sha512":   {rsaKey, crypto.SHA512, x509.SHA512WithRSA, false},
		"ed25519":      {edKey, crypto.SHA256, x509.PureEd25519, false},
		"ecdsa md5":    {ecKey, crypto.MD5, x509.UnknownSignatureAlgorithm, true},
		"nil signer":   {nil, crypto.SHA256, x509.UnknownSignatureAlgorithm, true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ToSignatureAlgorithm(tc.signer, tc.hash)
			if (err != nil) != tc.err {
				t.Fatalf("error = %v, want error %v", err, tc.err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVerifyCertChain(t *testing.T) {
	rootCert, rootKey, err := test.GenerateRootCA()
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyCertChain([]*x509.Certificate{rootCert}, rootKey); err != nil {
		t.Errorf("expected valid chain: %v", err)
	}

	otherKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err := VerifyCertChain([]*x509.Certificate{rootCert}, otherKey); err == nil {
		t.Error("expected key mismatch error")
	}

	leaf, leafKey, err := test.GenerateIdentityCert("uuid", "admin", "box", rootCert, rootKey)
	if err != nil {
		t.Fatal(err)
	}
	if err := VerifyCertChain([]*x509.Certificate{leaf, rootCert}, leafKey); err == nil {
		t.Error("expected non-CA error")
	}

	if err := VerifyCertChain(nil, rootKey); err == nil {
		t.Error("expected error for empty chain")
	}
}
