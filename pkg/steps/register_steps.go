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

	"github.com/cucumber/godog"

	"github.com/candlepin/candlepin-bdd/pkg/consumer"
)

// personalConsumerName is the name person consumers are registered with.
const personalConsumerName = "test"

func (s *Scenario) iAmAConsumer(ctx context.Context, name string) error {
	return s.iAmAConsumerRegisteredBy(ctx, name, s.username)
}

func (s *Scenario) iAmAConsumerRegisteredBy(ctx context.Context, name, username string) error {
	if err := s.iAmLoggedInAs(ctx, username); err != nil {
		return err
	}
	return s.iRegisterAConsumer(ctx, name)
}

func (s *Scenario) iRegisterAConsumerWithFacts(ctx context.Context, name string, table *godog.Table) error {
	facts, err := factsFromTable(table)
	if err != nil {
		return err
	}
	return s.register(ctx, consumer.Descriptor{Name: name, Type: consumer.TypeSystem, Facts: facts})
}

func (s *Scenario) iAmAConsumerOfTypeWithFacts(ctx context.Context, name, consumerType string, table *godog.Table) error {
	if err := s.iAmLoggedInAs(ctx, s.username); err != nil {
		return err
	}
	facts, err := factsFromTable(table)
	if err != nil {
		return err
	}
	return s.register(ctx, consumer.Descriptor{Name: name, Type: consumer.Type(consumerType), Facts: facts})
}

func (s *Scenario) iAmAConsumerOfType(ctx context.Context, name, consumerType string) error {
	if err := s.iAmLoggedInAs(ctx, s.username); err != nil {
		return err
	}
	return s.register(ctx, consumer.Descriptor{Name: name, Type: consumer.Type(consumerType)})
}

func (s *Scenario) iRegisterAConsumer(ctx context.Context, name string) error {
	return s.register(ctx, consumer.Descriptor{Name: name, Type: consumer.TypeSystem})
}

func (s *Scenario) iRegisterAConsumerWithUUID(ctx context.Context, name, uuid string) error {
	return s.register(ctx, consumer.Descriptor{Name: name, Type: consumer.TypeSystem, UUID: uuid})
}

func (s *Scenario) iRegisterAPersonalConsumer(ctx context.Context) error {
	return s.register(ctx, consumer.Descriptor{Name: personalConsumerName, Type: consumer.TypePerson})
}

func (s *Scenario) iHaveRegisteredAPersonalConsumerWithUUID(ctx context.Context, uuid string) error {
	return s.register(ctx, consumer.Descriptor{Name: personalConsumerName, Type: consumer.TypePerson, UUID: uuid})
}

func (s *Scenario) consumerExistsWithUUID(ctx context.Context, name, uuid string) error {
	return s.iRegisterAConsumerWithUUID(ctx, name, uuid)
}

// registeringAnotherConsumerCausesABadRequest registers as the super admin,
// outside the logged in session.
func (s *Scenario) registeringAnotherConsumerCausesABadRequest(ctx context.Context, uuid string) error {
	reg, err := consumer.New(s.admin, s.env.Connect, s.env.Owner).Register(ctx, consumer.Descriptor{
		Name: "any name",
		Type: consumer.TypeSystem,
		UUID: uuid,
	})
	if err == nil {
		s.created = append(s.created, reg.Consumer.UUID)
	}
	return expectStatus(err, consumer.ErrRegistrationRejected, http.StatusBadRequest)
}

// The server answers 400 here; 409 would describe the conflict better but
// the expectation follows the server.
func (s *Scenario) iShouldNotBeAbleToRegisterANewPersonalConsumer(ctx context.Context) error {
	reg, err := s.orchestrator().Register(ctx, consumer.Descriptor{Name: personalConsumerName, Type: consumer.TypePerson})
	if err == nil {
		s.created = append(s.created, reg.Consumer.UUID)
	}
	return expectStatus(err, consumer.ErrRegistrationRejected, http.StatusBadRequest)
}

func (s *Scenario) searchingForAConsumerCausesANotFound(ctx context.Context, uuid string) error {
	_, err := consumer.Lookup(ctx, s.admin, uuid)
	return expectStatus(err, consumer.ErrLookupNotFound, http.StatusNotFound)
}

// factsFromTable reads a two column table into facts, dropping the Name row.
func factsFromTable(table *godog.Table) (map[string]string, error) {
	facts := map[string]string{}
	if table == nil {
		return facts, nil
	}
	for i, row := range table.Rows {
		if len(row.Cells) != 2 {
			return nil, fmt.Errorf("facts table row %d has %d cells, want 2", i+1, len(row.Cells))
		}
		key := row.Cells[0].Value
		if key == "Name" {
			continue
		}
		facts[key] = row.Cells[1].Value
	}
	return facts, nil
}
