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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/candlepin/candlepin-bdd/pkg/api"
	"github.com/candlepin/candlepin-bdd/pkg/ca"
	"github.com/candlepin/candlepin-bdd/pkg/log"
)

const (
	systemType = "system"
	personType = "person"
)

var consumerTypes = map[string]bool{
	systemType:   true,
	personType:   true,
	"domain":     true,
	"hypervisor": true,
	"candlepin":  true,
}

var errForbidden = errors.New("forbidden")

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, api.Status{Result: true, Version: Version, Release: "1"})
}

func (s *Server) createOwner(w http.ResponseWriter, r *http.Request, p *principal) {
	if !p.superAdmin {
		handleError(w, r, http.StatusForbidden, fmt.Errorf("%w: %s creating owner", errForbidden, p.username), accessDenied)
		return
	}
	var o api.Owner
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		handleError(w, r, http.StatusBadRequest, fmt.Errorf("decoding owner: %w", err), invalidRequestBody)
		return
	}
	if o.Key == "" {
		handleError(w, r, http.StatusBadRequest, errors.New("owner without a key"), missingOwnerKey)
		return
	}
	created, err := s.store.addOwner(o)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, created)
}

func (s *Server) getOwner(w http.ResponseWriter, r *http.Request, _ *principal) {
	o, err := s.store.owner(r.PathValue("key"))
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, o)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, p *principal) {
	if !p.superAdmin {
		handleError(w, r, http.StatusForbidden, fmt.Errorf("%w: %s creating user", errForbidden, p.username), accessDenied)
		return
	}
	var u api.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		handleError(w, r, http.StatusBadRequest, fmt.Errorf("decoding user: %w", err), invalidRequestBody)
		return
	}
	if u.Username == "" {
		handleError(w, r, http.StatusBadRequest, errors.New("user without a username"), missingUsername)
		return
	}
	if err := s.store.addUser(r.PathValue("key"), u); err != nil {
		handleStoreError(w, r, err)
		return
	}
	u.Password = ""
	writeJSON(w, r, http.StatusOK, u)
}

func (s *Server) rejectRegistration(w http.ResponseWriter, r *http.Request, code int, err error, message string) {
	metricRejections.WithLabelValues(strconv.Itoa(code)).Inc()
	handleError(w, r, code, err, message)
}

func (s *Server) registerConsumer(w http.ResponseWriter, r *http.Request, p *principal) {
	ctx := r.Context()
	if p.consumer != "" {
		s.rejectRegistration(w, r, http.StatusForbidden, fmt.Errorf("%w: consumer %s registering", errForbidden, p.consumer), accessDenied)
		return
	}

	var req api.Consumer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.rejectRegistration(w, r, http.StatusBadRequest, err, invalidRequestBody)
		return
	}

	ownerKey := r.URL.Query().Get("owner")
	if ownerKey == "" {
		ownerKey = p.owner
	}
	owner, err := s.store.owner(ownerKey)
	if err != nil {
		code, message := statusFor(err)
		s.rejectRegistration(w, r, code, err, message)
		return
	}
	if !p.superAdmin && owner.Key != p.owner {
		s.rejectRegistration(w, r, http.StatusForbidden, fmt.Errorf("%w: %s registering into %s", errForbidden, p.username, owner.Key), accessDenied)
		return
	}

	if req.Name == "" {
		s.rejectRegistration(w, r, http.StatusBadRequest, errors.New("consumer name is empty"), missingConsumerName)
		return
	}
	label := req.Type.Label
	if label == "" {
		label = systemType
	}
	if !consumerTypes[label] {
		s.rejectRegistration(w, r, http.StatusBadRequest, fmt.Errorf("unknown consumer type %q", label), unknownConsumerType)
		return
	}

	c := api.Consumer{
		UUID:     req.UUID,
		Name:     req.Name,
		Type:     api.ConsumerType{Label: label},
		Owner:    owner,
		Username: p.username,
		Facts:    req.Facts,
	}
	// Fail before issuing a certificate when the request can't succeed.
	if err := s.store.checkConsumer(&c); err != nil {
		code, message := statusFor(err)
		s.rejectRegistration(w, r, code, err, message)
		return
	}
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}

	issued, err := s.ca.IssueIdentityCertificate(ctx, &ca.Subject{UUID: c.UUID, Owner: owner.Key, Name: c.Name})
	if err != nil {
		handleError(w, r, http.StatusInternalServerError, err, genericCAError)
		return
	}
	certPEM, err := issued.CertPEM()
	if err != nil {
		handleError(w, r, http.StatusInternalServerError, err, identityCertEncoding)
		return
	}
	keyPEM, err := issued.KeyPEM()
	if err != nil {
		handleError(w, r, http.StatusInternalServerError, err, identityCertEncoding)
		return
	}
	c.IDCert = &api.IdentityCertificate{
		Cert:   certPEM,
		Key:    keyPEM,
		Serial: &api.CertificateSerial{Serial: issued.FinalCertificate.SerialNumber.Int64()},
	}

	if err := s.store.addConsumer(c); err != nil {
		code, message := statusFor(err)
		s.rejectRegistration(w, r, code, err, message)
		return
	}
	metricRegistrations.WithLabelValues(label).Inc()
	log.ContextLogger(ctx).Infow("registered consumer", "uuid", c.UUID, "name", c.Name, "type", label, "owner", owner.Key, "username", p.username)

	writeJSON(w, r, http.StatusOK, c)
}

// consumerFor loads the consumer named in the path and checks p may use it.
func (s *Server) consumerFor(w http.ResponseWriter, r *http.Request, p *principal) (*api.Consumer, bool) {
	id := r.PathValue("uuid")
	c, err := s.store.consumer(id)
	if err != nil {
		handleStoreError(w, r, err, "uuid", id)
		return nil, false
	}
	owner := ""
	if c.Owner != nil {
		owner = c.Owner.Key
	}
	if !p.canAccess(c.UUID, owner) {
		handleError(w, r, http.StatusForbidden, fmt.Errorf("%w: %s on consumer %s", errForbidden, p.username, id), accessDenied)
		return nil, false
	}
	return c, true
}

func (s *Server) getConsumer(w http.ResponseWriter, r *http.Request, p *principal) {
	c, ok := s.consumerFor(w, r, p)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) deleteConsumer(w http.ResponseWriter, r *http.Request, p *principal) {
	c, ok := s.consumerFor(w, r, p)
	if !ok {
		return
	}
	if err := s.store.removeConsumer(c.UUID); err != nil {
		handleStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listEntitlements(w http.ResponseWriter, r *http.Request, p *principal) {
	c, ok := s.consumerFor(w, r, p)
	if !ok {
		return
	}
	ents, err := s.store.entitlements(c.UUID)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ents)
}

func (s *Server) bind(w http.ResponseWriter, r *http.Request, p *principal) {
	c, ok := s.consumerFor(w, r, p)
	if !ok {
		return
	}
	product := r.URL.Query().Get("product")
	if product == "" {
		handleError(w, r, http.StatusBadRequest, errors.New("bind without product"), missingProduct)
		return
	}
	ent, err := s.store.bind(c.UUID, product)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ent)
}

func (s *Server) revokeAll(w http.ResponseWriter, r *http.Request, p *principal) {
	c, ok := s.consumerFor(w, r, p)
	if !ok {
		return
	}
	n, err := s.store.revokeAll(c.UUID)
	if err != nil {
		handleStoreError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.DeletedRecords{DeletedRecords: n})
}
