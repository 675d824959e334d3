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
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/candlepin/candlepin-bdd/pkg/api"
)

const defaultStoreSize = 4096

type userRecord struct {
	user  api.User
	owner string
}

type consumerRecord struct {
	consumer     api.Consumer
	entitlements []api.Entitlement
}

// store keeps owners, users and consumers in memory. Consumers live in an
// LRU so a long running stub stays bounded; evicting a personal consumer
// frees its user to register another.
type store struct {
	mu        sync.Mutex
	owners    map[string]*api.Owner
	users     map[string]*userRecord
	consumers *lru.Cache
	// personal maps a username to the uuid of its person consumer.
	personal map[string]string
}

func newStore(size int) (*store, error) {
	if size <= 0 {
		size = defaultStoreSize
	}
	s := &store{
		owners:   map[string]*api.Owner{},
		users:    map[string]*userRecord{},
		personal: map[string]string{},
	}
	cache, err := lru.NewWithEvict(size, s.onEvict)
	if err != nil {
		return nil, err
	}
	s.consumers = cache
	return s, nil
}

// onEvict runs inside consumers.Add and consumers.Remove, with s.mu held.
func (s *store) onEvict(_, value interface{}) {
	rec := value.(*consumerRecord)
	if rec.consumer.Type.Label == personType && s.personal[rec.consumer.Username] == rec.consumer.UUID {
		delete(s.personal, rec.consumer.Username)
	}
}

func (s *store) addOwner(o api.Owner) (*api.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[o.Key]; ok {
		return nil, fmt.Errorf("%w: %s", errOwnerExists, o.Key)
	}
	if o.DisplayName == "" {
		o.DisplayName = o.Key
	}
	s.owners[o.Key] = &o
	return &o, nil
}

func (s *store) owner(key string) (*api.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errOwnerNotFound, key)
	}
	cp := *o
	return &cp, nil
}

func (s *store) addUser(ownerKey string, u api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[ownerKey]; !ok {
		return fmt.Errorf("%w: %s", errOwnerNotFound, ownerKey)
	}
	if _, ok := s.users[u.Username]; ok {
		return fmt.Errorf("%w: %s", errUserExists, u.Username)
	}
	s.users[u.Username] = &userRecord{user: u, owner: ownerKey}
	return nil
}

func (s *store) user(username string) (*userRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

// checkConsumer reports whether c could be added right now.
func (s *store) checkConsumer(c *api.Consumer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkConsumerLocked(c)
}

func (s *store) checkConsumerLocked(c *api.Consumer) error {
	if c.UUID != "" && s.consumers.Contains(c.UUID) {
		return fmt.Errorf("%w: %s", errDuplicateUUID, c.UUID)
	}
	if c.Type.Label == personType {
		if existing, ok := s.personal[c.Username]; ok && s.consumers.Contains(existing) {
			return fmt.Errorf("%w: %s has %s", errPersonalConsumer, c.Username, existing)
		}
	}
	return nil
}

// addConsumer stores c, rechecking the uniqueness rules under the lock.
func (s *store) addConsumer(c api.Consumer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkConsumerLocked(&c); err != nil {
		return err
	}
	s.consumers.Add(c.UUID, &consumerRecord{consumer: c})
	if c.Type.Label == personType {
		s.personal[c.Username] = c.UUID
	}
	return nil
}

func (s *store) consumer(id string) (*api.Consumer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.recordLocked(id)
	if err != nil {
		return nil, err
	}
	cp := rec.consumer
	return &cp, nil
}

func (s *store) recordLocked(id string) (*consumerRecord, error) {
	v, ok := s.consumers.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errConsumerNotFound, id)
	}
	return v.(*consumerRecord), nil
}

func (s *store) removeConsumer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.consumers.Contains(id) {
		return fmt.Errorf("%w: %s", errConsumerNotFound, id)
	}
	s.consumers.Remove(id)
	return nil
}

func (s *store) entitlements(id string) ([]api.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.recordLocked(id)
	if err != nil {
		return nil, err
	}
	out := make([]api.Entitlement, len(rec.entitlements))
	copy(out, rec.entitlements)
	sort.Slice(out, func(i, j int) bool { return out[i].Product < out[j].Product })
	return out, nil
}

func (s *store) bind(id, product string) (*api.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.recordLocked(id)
	if err != nil {
		return nil, err
	}
	ent := api.Entitlement{ID: uuid.NewString(), Product: product, Quantity: 1}
	rec.entitlements = append(rec.entitlements, ent)
	return &ent, nil
}

func (s *store) revokeAll(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.recordLocked(id)
	if err != nil {
		return 0, err
	}
	n := len(rec.entitlements)
	rec.entitlements = nil
	return n, nil
}
