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
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/PaesslerAG/jsonpath"

	"github.com/candlepin/candlepin-bdd/pkg/idcert"
)

func (s *Scenario) myConsumerShouldHaveAnIdentityCertificate() error {
	reg, err := s.currentConsumer()
	if err != nil {
		return err
	}
	if reg.Consumer.IDCert == nil {
		return fmt.Errorf("consumer %s has no identity certificate", reg.Consumer.UUID)
	}
	if !idcert.HasPEMHeader(reg.Consumer.IDCert.Cert) {
		return fmt.Errorf("identity certificate does not start with %q: %.20q", idcert.PEMHeaderPrefix, reg.Consumer.IDCert.Cert)
	}
	if !idcert.HasPEMHeader(reg.Consumer.IDCert.Key) {
		return fmt.Errorf("identity key does not start with %q", idcert.PEMHeaderPrefix)
	}
	return nil
}

func (s *Scenario) subjectFieldIsMyConsumersUUID(key string) error {
	reg, err := s.currentConsumer()
	if err != nil {
		return err
	}
	return s.subjectFieldIs(key, reg.Consumer.UUID)
}

func (s *Scenario) subjectFieldIs(key, expected string) error {
	reg, err := s.currentConsumer()
	if err != nil {
		return err
	}
	got, err := reg.Certificate.SubjectValue(key)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("subject %s is %q, expected %q (subject %s)", key, got, expected, reg.Certificate.SubjectString())
	}
	return nil
}

func (s *Scenario) theConsumersNameInTheCertificateIs(name string) error {
	reg, err := s.currentConsumer()
	if err != nil {
		return err
	}
	got, err := reg.Certificate.DisplayName()
	if err != nil {
		return err
	}
	if got != name {
		return fmt.Errorf("certificate names consumer %q, expected %q", got, name)
	}
	return nil
}

// myConsumersFieldIs evaluates a JSONPath expression over the consumer
// record as the server returned it.
func (s *Scenario) myConsumersFieldIs(path, expected string) error {
	reg, err := s.currentConsumer()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(reg.Consumer)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", path, err)
	}
	if got := render(v); got != expected {
		return fmt.Errorf("%s is %q, expected %q", path, got, expected)
	}
	return nil
}

func render(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
