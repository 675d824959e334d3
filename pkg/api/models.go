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

package api

// Status is returned by GET /status.
type Status struct {
	Result  bool   `json:"result"`
	Version string `json:"version"`
	Release string `json:"release"`
}

type Owner struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName,omitempty"`
}

type User struct {
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	SuperAdmin bool   `json:"superAdmin"`
}

// ConsumerType wraps the type label the way the server serializes it.
type ConsumerType struct {
	Label string `json:"label"`
}

type CertificateSerial struct {
	Serial int64 `json:"serial"`
}

// IdentityCertificate is the certificate and key issued at registration.
type IdentityCertificate struct {
	Cert   string             `json:"cert"`
	Key    string             `json:"key"`
	Serial *CertificateSerial `json:"serial,omitempty"`
}

type Consumer struct {
	UUID     string               `json:"uuid,omitempty"`
	Name     string               `json:"name"`
	Type     ConsumerType         `json:"type"`
	Owner    *Owner               `json:"owner,omitempty"`
	Username string               `json:"username,omitempty"`
	Facts    map[string]string    `json:"facts,omitempty"`
	IDCert   *IdentityCertificate `json:"idCert,omitempty"`
}

type Entitlement struct {
	ID       string `json:"id"`
	Product  string `json:"productId"`
	Quantity int    `json:"quantity"`
}

// DeletedRecords is returned by bulk deletes.
type DeletedRecords struct {
	DeletedRecords int `json:"deletedRecords"`
}
