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

package server

import (
	"crypto/subtle"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
)

var errUnauthenticated = errors.New("unauthenticated")

// principal is the caller of a request: a user authenticated with basic
// auth, or a consumer authenticated with its identity certificate.
type principal struct {
	username   string
	superAdmin bool
	owner      string
	// consumer is the uuid of the consumer presenting a certificate.
	consumer string
}

type authenticatedHandler func(w http.ResponseWriter, r *http.Request, p *principal)

// authenticated rejects requests without a valid principal.
func (s *Server) authenticated(h authenticatedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.authenticate(r)
		if err != nil {
			handleError(w, r, http.StatusUnauthorized, err, invalidCredentials)
			return
		}
		h(w, r, p)
	}
}

func (s *Server) authenticate(r *http.Request) (*principal, error) {
	if r.TLS != nil && len(r.TLS.PeerCertificates) > 0 {
		return s.authenticateCertificate(r)
	}
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, fmt.Errorf("%w: no credentials", errUnauthenticated)
	}
	if username == s.opts.AdminUsername {
		if !equal(password, s.opts.AdminPassword) {
			return nil, fmt.Errorf("%w: bad password for %s", errUnauthenticated, username)
		}
		return &principal{username: username, superAdmin: true, owner: s.opts.DefaultOwner}, nil
	}
	u, ok := s.store.user(username)
	if !ok || !equal(password, u.user.Password) {
		return nil, fmt.Errorf("%w: bad credentials for %s", errUnauthenticated, username)
	}
	return &principal{username: username, superAdmin: u.user.SuperAdmin, owner: u.owner}, nil
}

// authenticateCertificate verifies the peer certificate against the CA and
// maps its subject CN to a registered consumer.
func (s *Server) authenticateCertificate(r *http.Request) (*principal, error) {
	bundle, err := s.ca.TrustBundle(r.Context())
	if err != nil || len(bundle) == 0 {
		return nil, fmt.Errorf("%w: no trust bundle: %v", errUnauthenticated, err)
	}
	roots := x509.NewCertPool()
	roots.AddCert(bundle[len(bundle)-1])
	intermediates := x509.NewCertPool()
	for _, c := range bundle[:len(bundle)-1] {
		intermediates.AddCert(c)
	}
	for _, c := range r.TLS.PeerCertificates[1:] {
		intermediates.AddCert(c)
	}

	leaf := r.TLS.PeerCertificates[0]
	if _, err := leaf.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", errUnauthenticated, err)
	}

	c, err := s.store.consumer(leaf.Subject.CommonName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnauthenticated, err)
	}
	p := &principal{consumer: c.UUID, username: c.Username}
	if c.Owner != nil {
		p.owner = c.Owner.Key
	}
	return p, nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// canAccess reports whether p may act on the consumer.
func (p *principal) canAccess(uuid, owner string) bool {
	switch {
	case p.superAdmin:
		return true
	case p.consumer != "":
		return p.consumer == uuid
	default:
		return p.owner == owner
	}
}
