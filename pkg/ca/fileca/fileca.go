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

package fileca

import (
	"crypto"
	"crypto/x509"

	"github.com/fsnotify/fsnotify"

	"github.com/candlepin/candlepin-bdd/pkg/ca"
	"github.com/candlepin/candlepin-bdd/pkg/ca/baseca"
	"github.com/candlepin/candlepin-bdd/pkg/log"
)

type fileCA struct {
	baseca.BaseCA
	watcher *fsnotify.Watcher
}

// NewFileCA returns a file backed certificate authority. Expects paths to a
// certificate and key that are PEM encoded. The key may be encrypted
// according to RFC 1423, in which case keyPass is required.
func NewFileCA(certPath, keyPath, keyPass string, watch bool) (ca.CertificateAuthority, error) {
	certs, key, err := loadKeyPair(certPath, keyPath, keyPass)
	if err != nil {
		return nil, err
	}

	fca := &fileCA{}
	fca.Keyring = ca.NewKeyring(certs, key)

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		if err := watcher.Add(certPath); err != nil {
			watcher.Close()
			return nil, err
		}
		if err := watcher.Add(keyPath); err != nil {
			watcher.Close()
			return nil, err
		}
		fca.watcher = watcher

		go ioWatch(certPath, keyPath, keyPass, watcher, fca.updateX509KeyPair)
	}

	return fca, nil
}

func (fca *fileCA) updateX509KeyPair(certs []*x509.Certificate, signer crypto.Signer) {
	fca.Rotate(certs, signer)
	log.Logger.Infof("reloaded CA key pair, issuer %s", certs[0].Subject)
}

func (fca *fileCA) Close() error {
	if fca.watcher != nil {
		return fca.watcher.Close()
	}
	return nil
}
