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
	"errors"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"

	"github.com/candlepin/candlepin-bdd/pkg/api"
	"github.com/candlepin/candlepin-bdd/pkg/consumer"
	"github.com/candlepin/candlepin-bdd/pkg/log"
)

var errNoConsumer = errors.New("no consumer registered in this scenario")

// Scenario is the state of one running scenario. A new one is built for
// every scenario and nothing in it outlives the After hook.
type Scenario struct {
	env *Environment

	// admin is the super admin session, used by the negative steps.
	admin *api.Client
	// username and session are the logged in user.
	username string
	session  *api.Client
	// userOwners records the owner of users created by this scenario.
	userOwners map[string]string

	// current is the consumer the "my consumer" steps talk about.
	current *consumer.Registration
	// consumers holds every registration by consumer name.
	consumers map[string]*consumer.Registration
	// created lists uuids to unregister on teardown, in creation order.
	created []string
}

func newScenario(env *Environment) *Scenario {
	return &Scenario{env: env}
}

// InitializeScenario binds the step table to sc with fresh scenario state.
func (e *Environment) InitializeScenario(sc *godog.ScenarioContext) {
	s := newScenario(e)
	sc.Before(s.before)
	sc.After(s.after)
	for _, st := range s.steps() {
		sc.Step(st.pattern, st.handler)
	}
}

func (s *Scenario) before(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	s.admin = s.env.admin()
	s.username = s.env.AdminUsername
	s.session = s.admin
	s.userOwners = map[string]string{}
	s.current = nil
	s.consumers = map[string]*consumer.Registration{}
	s.created = nil
	log.Logger.Debugw("starting scenario", "scenario", sc.Name)
	return ctx, nil
}

// after unregisters what the scenario registered. Failures are logged and
// don't fail the scenario.
func (s *Scenario) after(ctx context.Context, sc *godog.Scenario, _ error) (context.Context, error) {
	for i := len(s.created) - 1; i >= 0; i-- {
		id := s.created[i]
		if err := s.admin.Unregister(ctx, id); err != nil && !api.IsNotFound(err) {
			log.Logger.Warnw("unregistering consumer", "scenario", sc.Name, "uuid", id, "error", err)
		}
	}
	return ctx, nil
}

// orchestrator registers as the logged in user.
func (s *Scenario) orchestrator() *consumer.Orchestrator {
	owner := s.userOwners[s.username]
	if s.username == s.env.AdminUsername || owner == "" {
		owner = s.env.Owner
	}
	return consumer.New(s.session, s.env.Connect, owner)
}

func (s *Scenario) register(ctx context.Context, d consumer.Descriptor) error {
	reg, err := s.orchestrator().Register(ctx, d)
	if err != nil {
		return err
	}
	s.setConsumer(reg)
	return nil
}

func (s *Scenario) setConsumer(reg *consumer.Registration) {
	s.current = reg
	s.consumers[reg.Consumer.Name] = reg
	s.created = append(s.created, reg.Consumer.UUID)
}

func (s *Scenario) currentConsumer() (*consumer.Registration, error) {
	if s.current == nil {
		return nil, errNoConsumer
	}
	return s.current, nil
}

// expectStatus checks err is an HTTP failure with the wanted status and
// wraps sentinel.
func expectStatus(err error, sentinel error, want int) error {
	if err == nil {
		return fmt.Errorf("expected HTTP %d %s, the request succeeded", want, http.StatusText(want))
	}
	code, ok := api.StatusCode(err)
	if !ok {
		return fmt.Errorf("expected HTTP %d %s: %w", want, http.StatusText(want), err)
	}
	if code != want {
		return fmt.Errorf("expected HTTP %d %s, got %d: %w", want, http.StatusText(want), code, err)
	}
	if sentinel != nil && !errors.Is(err, sentinel) {
		return fmt.Errorf("expected %v: %w", sentinel, err)
	}
	return nil
}
