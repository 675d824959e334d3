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

// Package idcert reads consumer identity certificates the way OpenSSL
// presents them: a slash-delimited subject and a map of named extensions.
package idcert

import (
	"crypto/x509"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

var (
	// ErrMalformedCertificate is returned when the input is not a PEM encoded
	// X.509 certificate.
	ErrMalformedCertificate = errors.New("malformed certificate")
	// ErrFieldNotFound is returned when a subject attribute or extension is absent.
	ErrFieldNotFound = errors.New("field not found")
)

const (
	// PEMHeaderPrefix is what every PEM blob handed out by the server starts with.
	PEMHeaderPrefix = "---"

	// dirNamePrefix precedes the consumer name in the subjectAltName value.
	dirNamePrefix = "DirName:/CN="
)

// Attribute is one key=value pair of a distinguished name.
type Attribute struct {
	Key   string
	Value string
}

// Certificate is a read-only view over a parsed identity certificate.
type Certificate struct {
	X509       *x509.Certificate
	Subject    []Attribute
	Extensions map[string]string
}

// Parse decodes the first certificate in pemText.
func Parse(pemText string) (*Certificate, error) {
	certs, err := cryptoutils.UnmarshalCertificatesFromPEM([]byte(pemText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("%w: no certificate in PEM input", ErrMalformedCertificate)
	}
	cert := certs[0]

	c := &Certificate{
		X509:       cert,
		Subject:    attributes(cert.Subject.Names),
		Extensions: make(map[string]string, len(cert.Extensions)),
	}
	for _, ext := range cert.Extensions {
		name := extensionName(ext.Id)
		value, err := renderExtension(cert, ext)
		if err != nil {
			return nil, fmt.Errorf("%w: extension %s: %v", ErrMalformedCertificate, name, err)
		}
		c.Extensions[name] = value
	}
	return c, nil
}

// SubjectString renders the subject as /CN=.../O=...
func (c *Certificate) SubjectString() string {
	return oneline(c.Subject)
}

// SubjectValue returns the value following /key= in the rendered subject, up
// to the next '/' or '='.
func (c *Certificate) SubjectValue(key string) (string, error) {
	re, err := regexp.Compile("/" + regexp.QuoteMeta(key) + "=([^/=]+)")
	if err != nil {
		return "", err
	}
	m := re.FindStringSubmatch(c.SubjectString())
	if m == nil {
		return "", fmt.Errorf("%w: subject has no %q attribute", ErrFieldNotFound, key)
	}
	return m[1], nil
}

// Extension returns the rendered value of the named extension. Names are
// OpenSSL short names (subjectAltName, keyUsage, ...) or dotted OIDs.
func (c *Certificate) Extension(name string) (string, error) {
	v, ok := c.Extensions[name]
	if !ok {
		return "", fmt.Errorf("%w: no %q extension", ErrFieldNotFound, name)
	}
	return v, nil
}

// DisplayName is the consumer name carried in the subjectAltName extension.
func (c *Certificate) DisplayName() (string, error) {
	altName, err := c.Extension("subjectAltName")
	if err != nil {
		return "", err
	}
	return DisplayName(altName), nil
}

// DisplayName strips a leading "DirName:/CN=" from a subjectAltName value.
// Anything else is returned unchanged.
func DisplayName(altName string) string {
	return strings.TrimPrefix(altName, dirNamePrefix)
}

// HasPEMHeader reports whether blob looks like PEM output.
func HasPEMHeader(blob string) bool {
	return strings.HasPrefix(blob, PEMHeaderPrefix)
}
