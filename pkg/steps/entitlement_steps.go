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
)

func (s *Scenario) iRevokeAllMyEntitlements(ctx context.Context) error {
	reg, err := s.currentConsumer()
	if err != nil {
		return err
	}
	_, err = reg.Session.RevokeAllEntitlements(ctx, reg.Consumer.UUID)
	return err
}

func (s *Scenario) iConsumeProduct(ctx context.Context, product string) error {
	reg, err := s.currentConsumer()
	if err != nil {
		return err
	}
	_, err = reg.Session.Bind(ctx, reg.Consumer.UUID, product)
	return err
}

func (s *Scenario) iShouldHaveEntitlements(ctx context.Context, count int) error {
	reg, err := s.currentConsumer()
	if err != nil {
		return err
	}
	ents, err := reg.Session.ListEntitlements(ctx, reg.Consumer.UUID)
	if err != nil {
		return err
	}
	if len(ents) != count {
		return fmt.Errorf("consumer %s has %d entitlements, expected %d", reg.Consumer.UUID, len(ents), count)
	}
	return nil
}
