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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var validYAML = `
server-url: https://cp.example.com:8443/candlepin
username: superuser
password: secret
owner: acme
timeout: 5s
`

var validTOML = `
server-url = "http://localhost:8080/candlepin"
owner = "snowwhite"
insecure = true
`

var validProperties = `
candlepin.url = https://cp.example.com/candlepin
candlepin.username = duke
candlepin.owner = acme
candlepin.timeout = 1m
candlepin.insecure = true
`

func TestLoad(t *testing.T) {
	td := t.TempDir()
	cfgPath := filepath.Join(td, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(validYAML), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Load(cfgPath); err != nil {
		t.Fatal(err)
	}

	cfg := Config()
	if cfg.ServerURL != "https://cp.example.com:8443/candlepin" {
		t.Errorf("unexpected server url %s", cfg.ServerURL)
	}
	if cfg.Username != "superuser" || cfg.Password != "secret" {
		t.Errorf("unexpected credentials %s/%s", cfg.Username, cfg.Password)
	}
	if cfg.Owner != "acme" {
		t.Errorf("expected acme, got %s", cfg.Owner)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.Timeout)
	}
	// untouched keys keep their defaults
	if cfg.UserPassword != DefaultConfig.UserPassword {
		t.Errorf("expected default user password, got %s", cfg.UserPassword)
	}
}

func TestLoadDefaults(t *testing.T) {
	td := t.TempDir()

	// Don't put anything here!
	cfgPath := filepath.Join(td, "config.yaml")
	if err := Load(cfgPath); err != nil {
		t.Fatal(err)
	}

	cfg := Config()

	if diff := cmp.Diff(DefaultConfig, cfg); diff != "" {
		t.Errorf("DefaultConfig(): -want +got: %s", diff)
	}
}

func TestParseConfig(t *testing.T) {
	tests := map[string]struct {
		input  string
		format Format
		want   func() SuiteConfig
	}{
		"yaml": {
			input:  validYAML,
			format: FormatYAML,
			want: func() SuiteConfig {
				c := DefaultConfig
				c.ServerURL = "https://cp.example.com:8443/candlepin"
				c.Username = "superuser"
				c.Password = "secret"
				c.Owner = "acme"
				c.Timeout = 5 * time.Second
				return c
			},
		},
		"empty yaml": {
			input:  "",
			format: FormatYAML,
			want:   func() SuiteConfig { return DefaultConfig },
		},
		"toml": {
			input:  validTOML,
			format: FormatTOML,
			want: func() SuiteConfig {
				c := DefaultConfig
				c.ServerURL = "http://localhost:8080/candlepin"
				c.Owner = "snowwhite"
				c.Insecure = true
				return c
			},
		},
		"properties": {
			input:  validProperties,
			format: FormatProperties,
			want: func() SuiteConfig {
				c := DefaultConfig
				c.ServerURL = "https://cp.example.com/candlepin"
				c.Username = "duke"
				c.Owner = "acme"
				c.Timeout = time.Minute
				c.Insecure = true
				return c
			},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseConfig([]byte(test.input), test.format)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want(), got); diff != "" {
				t.Errorf("ParseConfig(): -want +got: %s", diff)
			}
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := map[string]struct {
		input  string
		format Format
	}{
		"unknown yaml key": {input: "bogus: true", format: FormatYAML},
		"bad scheme":       {input: "server-url: ftp://example.com", format: FormatYAML},
		"empty owner":      {input: `owner = ""`, format: FormatTOML},
		"negative timeout": {input: "candlepin.timeout = -1s", format: FormatProperties},
		"unknown format":   {input: "", format: Format("ini")},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(test.input), test.format); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.yaml":         FormatYAML,
		"a.YML":          FormatYAML,
		"b.toml":         FormatTOML,
		"candlepin.conf": FormatProperties,
		"x.properties":   FormatProperties,
	} {
		got, err := FormatFromPath(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if got != want {
			t.Errorf("%s: expected %s, got %s", path, want, got)
		}
	}

	if _, err := FormatFromPath("config.json"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
