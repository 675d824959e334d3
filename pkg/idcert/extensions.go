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

package idcert

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"net"
	"strings"
)

var extensionNames = map[string]string{
	"2.5.29.14":              "subjectKeyIdentifier",
	"2.5.29.15":              "keyUsage",
	"2.5.29.17":              "subjectAltName",
	"2.5.29.18":              "issuerAltName",
	"2.5.29.19":              "basicConstraints",
	"2.5.29.31":              "crlDistributionPoints",
	"2.5.29.32":              "certificatePolicies",
	"2.5.29.35":              "authorityKeyIdentifier",
	"2.5.29.37":              "extendedKeyUsage",
	"1.3.6.1.5.5.7.1.1":      "authorityInfoAccess",
	"2.16.840.1.113730.1.1":  "nsCertType",
	"2.16.840.1.113730.1.13": "nsComment",
}

func extensionName(oid asn1.ObjectIdentifier) string {
	if name, ok := extensionNames[oid.String()]; ok {
		return name
	}
	return oid.String()
}

func renderExtension(cert *x509.Certificate, ext pkix.Extension) (string, error) {
	switch extensionName(ext.Id) {
	case "subjectAltName", "issuerAltName":
		return renderGeneralNames(ext.Value)
	case "keyUsage":
		return renderKeyUsage(cert.KeyUsage), nil
	case "extendedKeyUsage":
		return renderExtKeyUsage(cert), nil
	case "basicConstraints":
		return renderBasicConstraints(cert), nil
	case "subjectKeyIdentifier":
		return hexColon(cert.SubjectKeyId), nil
	case "authorityKeyIdentifier":
		return "keyid:" + hexColon(cert.AuthorityKeyId), nil
	case "nsCertType":
		return renderNSCertType(ext.Value)
	default:
		return renderOpaque(ext.Value), nil
	}
}

// GeneralName tags, RFC 5280 4.2.1.6.
const (
	tagOtherName     = 0
	tagRFC822Name    = 1
	tagDNSName       = 2
	tagDirectoryName = 4
	tagURI           = 6
	tagIPAddress     = 7
	tagRegisteredID  = 8
)

// renderGeneralNames prints a GeneralNames sequence as OpenSSL does,
// e.g. "DNS:example.com, DirName:/CN=name".
func renderGeneralNames(der []byte) (string, error) {
	var seq asn1.RawValue
	rest, err := asn1.Unmarshal(der, &seq)
	if err != nil {
		return "", err
	} else if len(rest) != 0 {
		return "", fmt.Errorf("trailing data after X.509 extension")
	}
	if !seq.IsCompound || seq.Tag != asn1.TagSequence || seq.Class != asn1.ClassUniversal {
		return "", asn1.StructuralError{Msg: "bad SAN sequence"}
	}

	var names []string
	rest = seq.Bytes
	for len(rest) > 0 {
		var v asn1.RawValue
		rest, err = asn1.Unmarshal(rest, &v)
		if err != nil {
			return "", err
		}
		if v.Class != asn1.ClassContextSpecific {
			return "", asn1.StructuralError{Msg: "bad GeneralName class"}
		}

		switch v.Tag {
		case tagOtherName:
			names = append(names, "othername:<unsupported>")
		case tagRFC822Name:
			names = append(names, "email:"+string(v.Bytes))
		case tagDNSName:
			names = append(names, "DNS:"+string(v.Bytes))
		case tagDirectoryName:
			var rdns pkix.RDNSequence
			if _, err := asn1.Unmarshal(v.Bytes, &rdns); err != nil {
				return "", fmt.Errorf("could not parse directoryName: %w", err)
			}
			names = append(names, "DirName:"+oneline(rdnAttributes(rdns)))
		case tagURI:
			names = append(names, "URI:"+string(v.Bytes))
		case tagIPAddress:
			if len(v.Bytes) != net.IPv4len && len(v.Bytes) != net.IPv6len {
				return "", errors.New("invalid IP address length")
			}
			names = append(names, "IP Address:"+net.IP(v.Bytes).String())
		case tagRegisteredID:
			var oid asn1.ObjectIdentifier
			if _, err := asn1.UnmarshalWithParams(v.FullBytes, &oid, fmt.Sprintf("tag:%d", tagRegisteredID)); err != nil {
				return "", err
			}
			names = append(names, "Registered ID:"+oid.String())
		default:
			names = append(names, fmt.Sprintf("<unsupported:%d>", v.Tag))
		}
	}
	return strings.Join(names, ", "), nil
}

var keyUsageNames = []struct {
	bit  x509.KeyUsage
	name string
}{
	{x509.KeyUsageDigitalSignature, "Digital Signature"},
	{x509.KeyUsageContentCommitment, "Non Repudiation"},
	{x509.KeyUsageKeyEncipherment, "Key Encipherment"},
	{x509.KeyUsageDataEncipherment, "Data Encipherment"},
	{x509.KeyUsageKeyAgreement, "Key Agreement"},
	{x509.KeyUsageCertSign, "Certificate Sign"},
	{x509.KeyUsageCRLSign, "CRL Sign"},
	{x509.KeyUsageEncipherOnly, "Encipher Only"},
	{x509.KeyUsageDecipherOnly, "Decipher Only"},
}

func renderKeyUsage(ku x509.KeyUsage) string {
	var names []string
	for _, u := range keyUsageNames {
		if ku&u.bit != 0 {
			names = append(names, u.name)
		}
	}
	return strings.Join(names, ", ")
}

var extKeyUsageNames = map[x509.ExtKeyUsage]string{
	x509.ExtKeyUsageAny:             "Any Extended Key Usage",
	x509.ExtKeyUsageServerAuth:      "TLS Web Server Authentication",
	x509.ExtKeyUsageClientAuth:      "TLS Web Client Authentication",
	x509.ExtKeyUsageCodeSigning:     "Code Signing",
	x509.ExtKeyUsageEmailProtection: "E-mail Protection",
	x509.ExtKeyUsageTimeStamping:    "Time Stamping",
	x509.ExtKeyUsageOCSPSigning:     "OCSP Signing",
}

func renderExtKeyUsage(cert *x509.Certificate) string {
	var names []string
	for _, eku := range cert.ExtKeyUsage {
		if name, ok := extKeyUsageNames[eku]; ok {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("ExtKeyUsage(%d)", eku))
		}
	}
	for _, oid := range cert.UnknownExtKeyUsage {
		names = append(names, oid.String())
	}
	return strings.Join(names, ", ")
}

func renderBasicConstraints(cert *x509.Certificate) string {
	if !cert.IsCA {
		return "CA:FALSE"
	}
	if cert.MaxPathLen > 0 || cert.MaxPathLenZero {
		return fmt.Sprintf("CA:TRUE, pathlen:%d", cert.MaxPathLen)
	}
	return "CA:TRUE"
}

var nsCertTypeNames = []string{
	"SSL Client", "SSL Server", "S/MIME", "Object Signing",
	"Unused", "SSL CA", "S/MIME CA", "Object Signing CA",
}

func renderNSCertType(der []byte) (string, error) {
	var bits asn1.BitString
	if _, err := asn1.Unmarshal(der, &bits); err != nil {
		return "", err
	}
	var names []string
	for i, name := range nsCertTypeNames {
		if bits.At(i) == 1 {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", "), nil
}

// renderOpaque prints string-typed extension values as text and anything
// else as colon separated hex.
func renderOpaque(der []byte) string {
	var s string
	if rest, err := asn1.Unmarshal(der, &s); err == nil && len(rest) == 0 {
		return s
	}
	return hexColon(der)
}

func hexColon(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, ":")
}
