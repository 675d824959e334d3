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
	"context"
	"crypto/tls"
	"crypto/x509"
)

type CertificateAuthority interface {
	// IssueIdentityCertificate generates a key pair for the consumer and
	// returns it with a certificate signed by the CA.
	IssueIdentityCertificate(ctx context.Context, subject *Subject) (*IdentityCertificate, error)
	// IssueServerCertificate returns a TLS serving certificate for hosts.
	IssueServerCertificate(ctx context.Context, hosts []string) (*tls.Certificate, error)
	// TrustBundle is the chain from the issuing certificate to the root.
	TrustBundle(ctx context.Context) ([]*x509.Certificate, error)
	Root(ctx context.Context) ([]byte, error)
	Close() error
}
