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

package baseca

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/candlepin/candlepin-bdd/pkg/ca"
)

// BaseCA issues certificates from whatever chain and key its keyring holds
// at call time.
type BaseCA struct {
	*ca.Keyring
}

// sign creates a certificate from tmpl for pub, signed by the current
// issuing certificate, and returns it with the chain.
func (bca *BaseCA) sign(tmpl *x509.Certificate, pub crypto.PublicKey) (*x509.Certificate, []*x509.Certificate, error) {
	certChain, privateKey := bca.Issuer()
	if len(certChain) == 0 || privateKey == nil {
		return nil, nil, fmt.Errorf("certificate authority has no signing key")
	}

	var err error
	tmpl.SignatureAlgorithm, err = ca.ToSignatureAlgorithm(privateKey, crypto.SHA256)
	if err != nil {
		return nil, nil, err
	}

	finalCertBytes, err := x509.CreateCertificate(rand.Reader, tmpl, certChain[0], pub, privateKey)
	if err != nil {
		return nil, nil, err
	}
	finalCert, err := x509.ParseCertificate(finalCertBytes)
	if err != nil {
		return nil, nil, err
	}
	return finalCert, certChain, nil
}

func (bca *BaseCA) IssueIdentityCertificate(_ context.Context, subject *ca.Subject) (*ca.IdentityCertificate, error) {
	tmpl, err := ca.MakeIdentityX509(subject)
	if err != nil {
		return nil, err
	}
	key, err := ca.GenerateKey()
	if err != nil {
		return nil, err
	}

	cert, chain, err := bca.sign(tmpl, key.Public())
	if err != nil {
		return nil, err
	}

	return &ca.IdentityCertificate{
		Subject:          subject,
		FinalCertificate: cert,
		FinalChain:       chain,
		PrivateKey:       key,
	}, nil
}

func (bca *BaseCA) IssueServerCertificate(_ context.Context, hosts []string) (*tls.Certificate, error) {
	tmpl, err := ca.MakeServerX509(hosts)
	if err != nil {
		return nil, err
	}
	key, err := ca.GenerateKey()
	if err != nil {
		return nil, err
	}

	cert, chain, err := bca.sign(tmpl, key.Public())
	if err != nil {
		return nil, err
	}

	tlsCert := &tls.Certificate{PrivateKey: key, Leaf: cert}
	tlsCert.Certificate = append(tlsCert.Certificate, cert.Raw)
	for _, c := range chain {
		tlsCert.Certificate = append(tlsCert.Certificate, c.Raw)
	}
	return tlsCert, nil
}

func (bca *BaseCA) TrustBundle(_ context.Context) ([]*x509.Certificate, error) {
	certs, _ := bca.Issuer()
	return certs, nil
}

// Root returns the PEM encoding of the last certificate in the chain.
func (bca *BaseCA) Root(_ context.Context) ([]byte, error) {
	certs, _ := bca.Issuer()
	if len(certs) == 0 {
		return nil, fmt.Errorf("certificate authority has no chain")
	}
	return cryptoutils.MarshalCertificateToPEM(certs[len(certs)-1])
}

func (bca *BaseCA) Close() error {
	return nil
}
