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

// step pairs a sentence pattern with the handler godog calls for it.
type step struct {
	pattern string
	handler interface{}
}

// steps is the closed table of sentences the suite understands.
func (s *Scenario) steps() []step {
	return []step{
		// sessions
		{`^I am logged in as "([^"]*)"$`, s.iAmLoggedInAs},
		{`^owner "([^"]*)" exists$`, s.ownerExists},
		{`^user "([^"]*)" exists in owner "([^"]*)"$`, s.userExistsInOwner},
		{`^I act as consumer "([^"]*)"$`, s.iActAsConsumer},

		// registration
		{`^I am a consumer "([^"]*)"$`, s.iAmAConsumer},
		{`^I am a consumer "([^"]*)" registered by "([^"]*)"$`, s.iAmAConsumerRegisteredBy},
		{`^I register a consumer "([^"]*)" with the following facts:$`, s.iRegisterAConsumerWithFacts},
		{`^I am a consumer "([^"]*)" of type "([^"]*)" with facts:$`, s.iAmAConsumerOfTypeWithFacts},
		{`^I am a consumer "([^"]*)" of type "([^"]*)"$`, s.iAmAConsumerOfType},
		{`^I register a consumer "(\w+)"$`, s.iRegisterAConsumer},
		{`^I register a consumer "([^"]*)" with uuid "([^"]*)"$`, s.iRegisterAConsumerWithUUID},
		{`^I register a personal consumer$`, s.iRegisterAPersonalConsumer},
		{`^I have registered a personal consumer with uuid "([^"]*)"$`, s.iHaveRegisteredAPersonalConsumerWithUUID},
		{`^Consumer "([^"]*)" exists with uuid "([^"]*)"$`, s.consumerExistsWithUUID},

		// rejections
		{`^registering another consumer with uuid "([^"]*)" causes a bad request$`, s.registeringAnotherConsumerCausesABadRequest},
		{`^I should not be able to register a new personal consumer$`, s.iShouldNotBeAbleToRegisterANewPersonalConsumer},
		{`^searching for a consumer with uuid "([^"]*)" causes a not found$`, s.searchingForAConsumerCausesANotFound},

		// entitlements
		{`^I revoke all my entitlements$`, s.iRevokeAllMyEntitlements},
		{`^I consume product "([^"]*)"$`, s.iConsumeProduct},
		{`^I should have (\d+) entitlements?$`, s.iShouldHaveEntitlements},

		// identity certificate
		{`^my consumer should have an identity certificate$`, s.myConsumerShouldHaveAnIdentityCertificate},
		{`^the "([^"]*)" on my identity certificate's subject is my consumer's UUID$`, s.subjectFieldIsMyConsumersUUID},
		{`^the consumers name in the certificate is "([^"]*)"$`, s.theConsumersNameInTheCertificateIs},
		{`^the "([^"]*)" on my identity certificate's subject is "([^"]*)"$`, s.subjectFieldIs},
		{`^my consumer's "([^"]*)" is "([^"]*)"$`, s.myConsumersFieldIs},
	}
}

// Patterns lists the step sentences in registration order.
func Patterns() []string {
	var out []string
	for _, st := range newScenario(nil).steps() {
		out = append(out, st.pattern)
	}
	return out
}
