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
	"net/http"

	"github.com/candlepin/candlepin-bdd/pkg/api"
	"github.com/candlepin/candlepin-bdd/pkg/log"
)

const (
	invalidRequestBody   = "The request body could not be parsed"
	missingConsumerName  = "System name cannot be null."
	unknownConsumerType  = "Unit type could not be found."
	duplicateConsumer    = "A unit with this UUID already exists"
	personalConsumerSeen = "User has already registered a personal consumer"
	consumerNotFound     = "Unit could not be found."
	ownerNotFound        = "Organization could not be found."
	ownerExists          = "Organization already exists"
	userExists           = "User already exists"
	missingProduct       = "A product id is required"
	missingOwnerKey      = "Organization key is required"
	missingUsername      = "Username is required"
	// nolint:gosec // false positive G101
	invalidCredentials   = "Invalid credentials"
	accessDenied         = "Insufficient permissions"
	genericCAError       = "error communicating with CA backend"
	identityCertEncoding = "error encoding identity certificate"
)

var (
	errDuplicateUUID    = errors.New("duplicate consumer uuid")
	errPersonalConsumer = errors.New("user already has a personal consumer")
	errConsumerNotFound = errors.New("consumer not found")
	errOwnerNotFound    = errors.New("owner not found")
	errOwnerExists      = errors.New("owner already exists")
	errUserExists       = errors.New("user already exists")
)

// storeErrors maps store failures to the status and message sent to the
// client. Both registration conflicts answer 400, as the real service does.
var storeErrors = []struct {
	err     error
	code    int
	message string
}{
	{errDuplicateUUID, http.StatusBadRequest, duplicateConsumer},
	{errPersonalConsumer, http.StatusBadRequest, personalConsumerSeen},
	{errConsumerNotFound, http.StatusNotFound, consumerNotFound},
	{errOwnerNotFound, http.StatusNotFound, ownerNotFound},
	{errOwnerExists, http.StatusBadRequest, ownerExists},
	{errUserExists, http.StatusBadRequest, userExists},
}

func statusFor(err error) (int, string) {
	for _, se := range storeErrors {
		if errors.Is(err, se.err) {
			return se.code, se.message
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func handleStoreError(w http.ResponseWriter, r *http.Request, err error, fields ...interface{}) {
	code, message := statusFor(err)
	handleError(w, r, code, err, message, fields...)
}

// handleError logs err and writes an error document carrying message and
// the request ID.
func handleError(w http.ResponseWriter, r *http.Request, code int, err error, message string, fields ...interface{}) {
	ctx := r.Context()
	if code < http.StatusInternalServerError {
		log.ContextLogger(ctx).Warnw(err.Error(), append([]interface{}{"code", code, "clientMessage", message, "error", err}, fields...)...)
	} else {
		log.ContextLogger(ctx).Errorw(err.Error(), append([]interface{}{"code", code, "clientMessage", message, "error", err}, fields...)...)
	}
	requestID, _ := log.RequestID(ctx)
	writeJSON(w, r, code, api.ErrorDocument{DisplayMessage: message, RequestUUID: requestID})
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ContextLogger(r.Context()).Errorw("writing response", "error", err)
	}
}
