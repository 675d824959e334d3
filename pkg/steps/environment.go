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

// Package steps binds the entitlement feature files to the REST client.
package steps

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/candlepin/candlepin-bdd/pkg/api"
	"github.com/candlepin/candlepin-bdd/pkg/config"
)

// Environment is what every scenario shares: where the server is and how to
// reach it.
type Environment struct {
	BaseURL string
	// AdminUsername and AdminPassword identify the super admin session.
	AdminUsername string
	AdminPassword string
	// Owner is used when a step doesn't name one.
	Owner string
	// UserPassword is given to users the suite creates and logs in as.
	UserPassword string
	// Options apply to every session opened by a scenario.
	Options []api.Option
}

// NewEnvironment builds an Environment from cfg. extra options are applied
// after the ones derived from cfg.
func NewEnvironment(cfg config.SuiteConfig, extra ...api.Option) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := []api.Option{
		api.WithTimeout(cfg.Timeout),
		api.WithUserAgent(cfg.UserAgent),
		api.WithInsecureSkipVerify(cfg.Insecure),
	}
	if cfg.CACertPath != "" {
		pool, err := loadRoots(cfg.CACertPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, api.WithRootCAs(pool))
	}
	return &Environment{
		BaseURL:       cfg.ServerURL,
		AdminUsername: cfg.Username,
		AdminPassword: cfg.Password,
		Owner:         cfg.Owner,
		UserPassword:  cfg.UserPassword,
		Options:       append(opts, extra...),
	}, nil
}

func loadRoots(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading CA certificate: %w", err)
	}
	certs, err := cryptoutils.LoadCertificatesFromPEM(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing CA certificate %s: %w", path, err)
	}
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool, nil
}

// Connect opens a session with creds. It has the consumer.Connector shape.
func (e *Environment) Connect(creds api.Credentials) (*api.Client, error) {
	return api.Connect(e.BaseURL, creds, e.Options...)
}

func (e *Environment) admin() *api.Client {
	return api.NewClient(e.BaseURL, append(e.Options, api.WithBasicAuth(e.AdminUsername, e.AdminPassword))...)
}
