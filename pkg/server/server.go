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

// Package server is an in-memory entitlement server speaking the subset of
// the REST API the acceptance suite drives. Identity certificates are issued
// by a ca.CertificateAuthority.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/candlepin/candlepin-bdd/pkg/api"
	"github.com/candlepin/candlepin-bdd/pkg/ca"
)

// PathPrefix is where the API is mounted.
const PathPrefix = "/candlepin"

// Option is a functional option for customizing the server.
type Option func(*options)

type options struct {
	AdminUsername string
	AdminPassword string
	DefaultOwner  string
	StoreSize     int
}

func makeOptions(opts ...Option) *options {
	o := &options{
		AdminUsername: "admin",
		AdminPassword: "admin",
		DefaultOwner:  "admin",
		StoreSize:     defaultStoreSize,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithAdmin sets the super admin credentials.
func WithAdmin(username, password string) Option {
	return func(o *options) {
		o.AdminUsername = username
		o.AdminPassword = password
	}
}

// WithDefaultOwner sets the owner created at startup, which the super
// admin registers into when no owner is given.
func WithDefaultOwner(key string) Option {
	return func(o *options) {
		o.DefaultOwner = key
	}
}

// WithStoreSize bounds the number of consumers kept.
func WithStoreSize(n int) Option {
	return func(o *options) {
		o.StoreSize = n
	}
}

type Server struct {
	ca    ca.CertificateAuthority
	store *store
	opts  *options
	mux   *http.ServeMux
}

func New(authority ca.CertificateAuthority, opts ...Option) (*Server, error) {
	o := makeOptions(opts...)
	st, err := newStore(o.StoreSize)
	if err != nil {
		return nil, err
	}
	if _, err := st.addOwner(api.Owner{Key: o.DefaultOwner}); err != nil {
		return nil, err
	}

	s := &Server{ca: authority, store: st, opts: o, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET "+PathPrefix+"/status", s.status)
	s.mux.HandleFunc("POST "+PathPrefix+"/owners", s.authenticated(s.createOwner))
	s.mux.HandleFunc("GET "+PathPrefix+"/owners/{key}", s.authenticated(s.getOwner))
	s.mux.HandleFunc("POST "+PathPrefix+"/owners/{key}/users", s.authenticated(s.createUser))
	s.mux.HandleFunc("POST "+PathPrefix+"/consumers", s.authenticated(s.registerConsumer))
	s.mux.HandleFunc("GET "+PathPrefix+"/consumers/{uuid}", s.authenticated(s.getConsumer))
	s.mux.HandleFunc("DELETE "+PathPrefix+"/consumers/{uuid}", s.authenticated(s.deleteConsumer))
	s.mux.HandleFunc("GET "+PathPrefix+"/consumers/{uuid}/entitlements", s.authenticated(s.listEntitlements))
	s.mux.HandleFunc("POST "+PathPrefix+"/consumers/{uuid}/entitlements", s.authenticated(s.bind))
	s.mux.HandleFunc("DELETE "+PathPrefix+"/consumers/{uuid}/entitlements", s.authenticated(s.revokeAll))
}

// Handler returns the API wrapped in request ID, logging and metrics
// middleware.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = promhttp.InstrumentHandlerCounter(RequestsCount, h)
	h = promhttp.InstrumentHandlerDuration(MetricLatency, h)
	h = withRequestLogging(h)
	return withRequestID(h)
}
