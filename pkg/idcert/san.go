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
	"crypto/x509/pkix"
	"encoding/asn1"
)

var oidSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}

// MarshalDirNameSAN creates a Subject Alternative Name extension holding a
// single directoryName. RFC 5280, 4.2.1.6:
//
//	GeneralName ::= CHOICE {
//	     ...
//	     directoryName                   [4]     Name,
//	     ... }
//
// The Name is EXPLICIT tagged because it is a CHOICE.
func MarshalDirNameSAN(name pkix.Name, critical bool) (*pkix.Extension, error) {
	dn, err := asn1.Marshal(name.ToRDNSequence())
	if err != nil {
		return nil, err
	}
	rawValues := []asn1.RawValue{{
		Class:      asn1.ClassContextSpecific,
		Tag:        tagDirectoryName,
		IsCompound: true,
		Bytes:      dn,
	}}

	sans, err := asn1.Marshal(rawValues)
	if err != nil {
		return nil, err
	}
	return &pkix.Extension{
		Id:       oidSubjectAltName,
		Critical: critical,
		Value:    sans,
	}, nil
}

// CommonNameSAN is the subjectAltName the entitlement server puts on
// identity certificates: DirName:/CN=<name>.
func CommonNameSAN(commonName string) (*pkix.Extension, error) {
	return MarshalDirNameSAN(pkix.Name{
		ExtraNames: []pkix.AttributeTypeAndValue{{
			Type:  asn1.ObjectIdentifier{2, 5, 4, 3},
			Value: commonName,
		}},
	}, false)
}
