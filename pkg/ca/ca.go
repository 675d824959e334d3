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
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"go.step.sm/crypto/pemutil"
)

// Subject identifies the consumer an identity certificate is issued to.
type Subject struct {
	// UUID becomes the subject CN.
	UUID string
	// Owner becomes the subject O.
	Owner string
	// Name is carried as DirName:/CN=<name> in the subjectAltName.
	Name string
}

// IdentityCertificate is an issued certificate together with the key the
// CA generated for it.
type IdentityCertificate struct {
	Subject          *Subject
	FinalCertificate *x509.Certificate
	FinalChain       []*x509.Certificate
	PrivateKey       crypto.Signer
}

func (c *IdentityCertificate) CertPEM() (string, error) {
	b, err := cryptoutils.MarshalCertificateToPEM(c.FinalCertificate)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *IdentityCertificate) ChainPEM() ([]string, error) {
	var chain []string
	for _, cert := range c.FinalChain {
		chain = append(chain, strings.TrimSpace(string(cryptoutils.PEMEncode(cryptoutils.CertificatePEMType, cert.Raw))))
	}
	return chain, nil
}

func (c *IdentityCertificate) KeyPEM() (string, error) {
	block, err := pemutil.Serialize(c.PrivateKey)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(block)), nil
}
