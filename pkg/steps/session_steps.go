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

package steps

import (
	"context"
	"fmt"
	"net/http"

	"github.com/candlepin/candlepin-bdd/pkg/api"
)

// iAmLoggedInAs switches the owner session to username, creating the user
// in the default owner when it doesn't exist yet.
func (s *Scenario) iAmLoggedInAs(ctx context.Context, username string) error {
	if username == s.env.AdminUsername {
		s.username = username
		s.session = s.admin
		return nil
	}
	if _, ok := s.userOwners[username]; !ok {
		if err := s.userExistsInOwner(ctx, username, s.env.Owner); err != nil {
			return err
		}
	}
	session, err := s.env.Connect(api.Credentials{Username: username, Password: s.env.UserPassword})
	if err != nil {
		return err
	}
	s.username = username
	s.session = session
	return nil
}

func (s *Scenario) ownerExists(ctx context.Context, key string) error {
	_, err := s.admin.CreateOwner(ctx, &api.Owner{Key: key, DisplayName: key})
	if code, ok := api.StatusCode(err); ok && code == http.StatusBadRequest {
		_, err = s.admin.GetOwner(ctx, key)
	}
	if err != nil {
		return fmt.Errorf("ensuring owner %s: %w", key, err)
	}
	return nil
}

// userExistsInOwner creates the user unless it already exists; a user that
// exists elsewhere keeps its owner.
func (s *Scenario) userExistsInOwner(ctx context.Context, username, owner string) error {
	_, err := s.admin.CreateUser(ctx, owner, &api.User{Username: username, Password: s.env.UserPassword})
	if code, ok := api.StatusCode(err); ok && code == http.StatusBadRequest {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("ensuring user %s in %s: %w", username, owner, err)
	}
	s.userOwners[username] = owner
	return nil
}

func (s *Scenario) iActAsConsumer(name string) error {
	reg, ok := s.consumers[name]
	if !ok {
		return fmt.Errorf("no consumer named %q in this scenario", name)
	}
	s.current = reg
	return nil
}
