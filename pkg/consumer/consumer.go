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

// Package consumer registers consumers and opens sessions as them.
package consumer

import (
	"context"
	"errors"
	"fmt"

	"github.com/candlepin/candlepin-bdd/pkg/api"
	"github.com/candlepin/candlepin-bdd/pkg/idcert"
	"github.com/candlepin/candlepin-bdd/pkg/log"
)

// Type is the consumer type label.
type Type string

const (
	TypeSystem Type = "system"
	TypePerson Type = "person"
)

var (
	// ErrRegistrationRejected wraps any registration the server refused.
	// The *api.HTTPError with the status code is wrapped alongside it.
	ErrRegistrationRejected = errors.New("consumer registration rejected")
	// ErrLookupNotFound wraps a 404 from a consumer lookup.
	ErrLookupNotFound = errors.New("consumer not found")
)

// Descriptor is what a scenario knows about a consumer before registering it.
type Descriptor struct {
	Name string
	Type Type
	// UUID is optional; the server assigns one when empty.
	UUID  string
	Facts map[string]string
}

// Registrar is the part of the API client used for registration.
type Registrar interface {
	Register(ctx context.Context, req *api.RegisterRequest) (*api.Consumer, error)
}

// Getter looks consumers up by UUID.
type Getter interface {
	GetConsumer(ctx context.Context, uuid string) (*api.Consumer, error)
}

// Connector opens a session with the given credentials.
type Connector func(creds api.Credentials) (*api.Client, error)

// Registration is the outcome of a successful registration.
type Registration struct {
	Consumer    *api.Consumer
	Certificate *idcert.Certificate
	// Session authenticates as the consumer via its identity certificate.
	Session *api.Client
}

// Orchestrator registers consumers under one owner/user session.
type Orchestrator struct {
	registrar Registrar
	connect   Connector
	owner     string
}

// New returns an Orchestrator registering through r into owner. An empty
// owner lets the server pick the caller's owner.
func New(r Registrar, connect Connector, owner string) *Orchestrator {
	return &Orchestrator{registrar: r, connect: connect, owner: owner}
}

// Register registers d once, with no retry. A server rejection is returned
// as ErrRegistrationRejected wrapping the *api.HTTPError.
func (o *Orchestrator) Register(ctx context.Context, d Descriptor) (*Registration, error) {
	if d.Type == "" {
		d.Type = TypeSystem
	}
	created, err := o.registrar.Register(ctx, &api.RegisterRequest{
		Name:  d.Name,
		Type:  string(d.Type),
		UUID:  d.UUID,
		Owner: o.owner,
		Facts: d.Facts,
	})
	if err != nil {
		if _, ok := api.StatusCode(err); ok {
			return nil, fmt.Errorf("%w: %w", ErrRegistrationRejected, err)
		}
		return nil, fmt.Errorf("registering consumer %q: %w", d.Name, err)
	}
	log.ContextLogger(ctx).Debugw("registered consumer", "name", created.Name, "uuid", created.UUID, "type", d.Type)

	if created.IDCert == nil {
		return nil, fmt.Errorf("consumer %s: %w: no identity certificate issued", created.UUID, idcert.ErrMalformedCertificate)
	}
	if !idcert.HasPEMHeader(created.IDCert.Cert) || !idcert.HasPEMHeader(created.IDCert.Key) {
		return nil, fmt.Errorf("consumer %s: %w: certificate or key is not PEM", created.UUID, idcert.ErrMalformedCertificate)
	}
	cert, err := idcert.Parse(created.IDCert.Cert)
	if err != nil {
		return nil, fmt.Errorf("consumer %s: %w", created.UUID, err)
	}

	session, err := o.connect(api.Credentials{
		CertPEM: created.IDCert.Cert,
		KeyPEM:  created.IDCert.Key,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting as consumer %s: %w", created.UUID, err)
	}

	return &Registration{
		Consumer:    created,
		Certificate: cert,
		Session:     session,
	}, nil
}

// Lookup fetches a consumer; a 404 is returned as ErrLookupNotFound
// wrapping the *api.HTTPError.
func Lookup(ctx context.Context, g Getter, uuid string) (*api.Consumer, error) {
	c, err := g.GetConsumer(ctx, uuid)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ErrLookupNotFound, err)
		}
		return nil, err
	}
	return c, nil
}
