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
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/candlepin/candlepin-bdd/pkg/idcert"
)

const (
	IdentityCertificateLifetime = 365 * 24 * time.Hour
	ServerCertificateLifetime   = 90 * 24 * time.Hour
)

var (
	oidCommonName   = asn1.ObjectIdentifier{2, 5, 4, 3}
	oidOrganization = asn1.ObjectIdentifier{2, 5, 4, 10}
)

// Identity serials stay positive and fit the int64 consumer records carry.
var maxIdentitySerial = new(big.Int).SetInt64(math.MaxInt64)

// GenerateIdentitySerial returns a random serial in [1, math.MaxInt64].
func GenerateIdentitySerial() (*big.Int, error) {
	n, err := rand.Int(rand.Reader, maxIdentitySerial)
	if err != nil {
		return nil, err
	}
	return n.Add(n, big.NewInt(1)), nil
}

// ValidationError marks a request the CA refused to sign.
type ValidationError error

// GenerateKey creates the key pair handed out with a certificate.
func GenerateKey() (crypto.Signer, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

// MakeIdentityX509 returns the template for a consumer identity certificate:
// CN=<uuid>, O=<owner> and a DirName:/CN=<name> subjectAltName.
func MakeIdentityX509(subject *Subject) (*x509.Certificate, error) {
	if subject == nil || subject.UUID == "" {
		return nil, ValidationError(errors.New("identity certificate requires a consumer uuid"))
	}
	serialNumber, err := GenerateIdentitySerial()
	if err != nil {
		return nil, err
	}

	names := []pkix.AttributeTypeAndValue{{Type: oidCommonName, Value: subject.UUID}}
	if subject.Owner != "" {
		names = append(names, pkix.AttributeTypeAndValue{Type: oidOrganization, Value: subject.Owner})
	}

	cert := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject:      pkix.Name{ExtraNames: names},
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(IdentityCertificateLifetime),
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment | x509.KeyUsageDataEncipherment,
	}

	san, err := idcert.CommonNameSAN(subject.Name)
	if err != nil {
		return nil, ValidationError(err)
	}
	cert.ExtraExtensions = []pkix.Extension{*san}

	return cert, nil
}

// MakeServerX509 returns the template for a TLS serving certificate.
func MakeServerX509(hosts []string) (*x509.Certificate, error) {
	if len(hosts) == 0 {
		return nil, ValidationError(errors.New("server certificate requires at least one host"))
	}
	serialNumber, err := cryptoutils.GenerateSerialNumber()
	if err != nil {
		return nil, err
	}

	cert := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject:      pkix.Name{CommonName: hosts[0]},
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(ServerCertificateLifetime),
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			cert.IPAddresses = append(cert.IPAddresses, ip)
		} else {
			cert.DNSNames = append(cert.DNSNames, h)
		}
	}
	return cert, nil
}

func ToSignatureAlgorithm(signer crypto.Signer, hash crypto.Hash) (x509.SignatureAlgorithm, error) {
	if signer == nil {
		return x509.UnknownSignatureAlgorithm, errors.New("signer is nil")
	}

	pub := signer.Public()
	switch pub := pub.(type) {
	case *rsa.PublicKey:
		switch hash {
		case crypto.SHA256:
			return x509.SHA256WithRSA, nil
		case crypto.SHA384:
			return x509.SHA384WithRSA, nil
		case crypto.SHA512:
			return x509.SHA512WithRSA, nil
		default:
			return x509.UnknownSignatureAlgorithm, fmt.Errorf("unsupported hash algorithm for RSA: %v", hash)
		}
	case *ecdsa.PublicKey:
		switch hash {
		case crypto.SHA256:
			return x509.ECDSAWithSHA256, nil
		case crypto.SHA384:
			return x509.ECDSAWithSHA384, nil
		case crypto.SHA512:
			return x509.ECDSAWithSHA512, nil
		default:
			return x509.UnknownSignatureAlgorithm, fmt.Errorf("unsupported hash algorithm for ECDSA: %v", hash)
		}
	case ed25519.PublicKey:
		// Ed25519 has a fixed signature so we don't need to check the hash
		return x509.PureEd25519, nil
	default:
		return x509.UnknownSignatureAlgorithm, fmt.Errorf("unsupported public key type: %T", pub)
	}
}

// VerifyCertChain checks that certs chains to its last element, that the
// first certificate may sign certificates, and that signer matches it.
func VerifyCertChain(certs []*x509.Certificate, signer crypto.Signer) error {
	if len(certs) == 0 {
		return errors.New("certificate chain must contain at least one certificate")
	}

	roots := x509.NewCertPool()
	roots.AddCert(certs[len(certs)-1])

	intermediates := x509.NewCertPool()
	if len(certs) > 1 {
		for _, intermediate := range certs[1 : len(certs)-1] {
			intermediates.AddCert(intermediate)
		}
	}

	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	if _, err := certs[0].Verify(opts); err != nil {
		return err
	}

	if !certs[0].IsCA {
		return errors.New("certificate is not a CA")
	}
	if certs[0].KeyUsage&x509.KeyUsageCertSign == 0 {
		return errors.New("certificate must have the cert sign key usage")
	}

	return cryptoutils.EqualKeys(certs[0].PublicKey, signer.Public())
}
