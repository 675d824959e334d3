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
	"crypto/x509"
	"sync"
)

// Keyring holds the chain a CA issues from and the key of its first
// certificate. Readers never see a chain from one generation paired with a
// key from another.
type Keyring struct {
	mu     sync.RWMutex
	chain  []*x509.Certificate
	signer crypto.Signer
}

// NewKeyring returns a keyring for chain, ordered from the issuing
// certificate up to the root.
func NewKeyring(chain []*x509.Certificate, signer crypto.Signer) *Keyring {
	return &Keyring{chain: chain, signer: signer}
}

// Issuer returns the current chain and key. A nil keyring has neither.
func (k *Keyring) Issuer() ([]*x509.Certificate, crypto.Signer) {
	if k == nil {
		return nil, nil
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.chain, k.signer
}

// Rotate swaps in a new chain and key.
func (k *Keyring) Rotate(chain []*x509.Certificate, signer crypto.Signer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.chain = chain
	k.signer = signer
}
