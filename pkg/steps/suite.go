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
	"embed"

	"github.com/cucumber/godog"
)

// Features are the feature files shipped with the suite.
//
//go:embed features/*.feature
var Features embed.FS

// NewSuite returns a godog suite running against env. When opts names no
// paths the embedded features are used.
func NewSuite(env *Environment, opts godog.Options) godog.TestSuite {
	if len(opts.Paths) == 0 {
		opts.FS = Features
		opts.Paths = []string{"features"}
	}
	if opts.Format == "" {
		opts.Format = "pretty"
	}
	return godog.TestSuite{
		Name:                "candlepin",
		ScenarioInitializer: env.InitializeScenario,
		Options:             &opts,
	}
}
