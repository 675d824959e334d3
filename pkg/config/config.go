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
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/candlepin/candlepin-bdd/pkg/log"
)

// SuiteConfig describes the entitlement server the feature suite talks to.
type SuiteConfig struct {
	// ServerURL is the API root, including the context path (e.g. /candlepin).
	ServerURL string `yaml:"server-url" toml:"server-url"`
	// Username and Password identify the super admin used by negative lookups.
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	// Owner is the owner key used when a step does not name one.
	Owner string `yaml:"owner" toml:"owner"`
	// UserPassword is given to users created by the suite.
	UserPassword string        `yaml:"user-password" toml:"user-password"`
	CACertPath   string        `yaml:"ca-cert" toml:"ca-cert"`
	Insecure     bool          `yaml:"insecure" toml:"insecure"`
	Timeout      time.Duration `yaml:"timeout" toml:"timeout"`
	UserAgent    string        `yaml:"user-agent" toml:"user-agent"`
}

// Format names a config file syntax.
type Format string

const (
	FormatYAML       Format = "yaml"
	FormatTOML       Format = "toml"
	FormatProperties Format = "properties"
)

// Keys recognised in candlepin.conf style properties files.
const (
	propURL          = "candlepin.url"
	propUsername     = "candlepin.username"
	propPassword     = "candlepin.password"
	propOwner        = "candlepin.owner"
	propUserPassword = "candlepin.user_password"
	propCACert       = "candlepin.ca_cert"
	propInsecure     = "candlepin.insecure"
	propTimeout      = "candlepin.timeout"
	propUserAgent    = "candlepin.user_agent"
)

var DefaultConfig = SuiteConfig{
	ServerURL:    "https://localhost:8443/candlepin",
	Username:     "admin",
	Password:     "admin",
	Owner:        "admin",
	UserPassword: "password",
	Timeout:      30 * time.Second,
	UserAgent:    "candlepin-bdd",
}

var ErrUnknownFormat = errors.New("unknown config format")

// FormatFromPath picks the config syntax from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".properties", ".conf":
		return FormatProperties, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// ParseConfig parses b on top of DefaultConfig.
func ParseConfig(b []byte, format Format) (SuiteConfig, error) {
	cfg := DefaultConfig
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return SuiteConfig{}, fmt.Errorf("parsing yaml config: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(b), &cfg); err != nil {
			return SuiteConfig{}, fmt.Errorf("parsing toml config: %w", err)
		}
	case FormatProperties:
		p, err := properties.Load(b, properties.UTF8)
		if err != nil {
			return SuiteConfig{}, fmt.Errorf("parsing properties config: %w", err)
		}
		cfg.ServerURL = p.GetString(propURL, cfg.ServerURL)
		cfg.Username = p.GetString(propUsername, cfg.Username)
		cfg.Password = p.GetString(propPassword, cfg.Password)
		cfg.Owner = p.GetString(propOwner, cfg.Owner)
		cfg.UserPassword = p.GetString(propUserPassword, cfg.UserPassword)
		cfg.CACertPath = p.GetString(propCACert, cfg.CACertPath)
		cfg.Insecure = p.GetBool(propInsecure, cfg.Insecure)
		cfg.Timeout = p.GetParsedDuration(propTimeout, cfg.Timeout)
		cfg.UserAgent = p.GetString(propUserAgent, cfg.UserAgent)
	default:
		return SuiteConfig{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := cfg.Validate(); err != nil {
		return SuiteConfig{}, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting.
func (c SuiteConfig) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server-url %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server-url %q: scheme must be http or https", c.ServerURL)
	}
	if c.Username == "" {
		return errors.New("username must be set")
	}
	if c.Owner == "" {
		return errors.New("owner must be set")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

var config *SuiteConfig

func Config() SuiteConfig {
	if config == nil {
		log.Logger.Panic("Config() called without loading config first")
	}
	return *config
}

// Load a config from disk, or use defaults
func Load(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Logger.Infof("No config at %s, using defaults", configPath)
		cfg := DefaultConfig
		config = &cfg
		return nil
	}
	format, err := FormatFromPath(configPath)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return err
	}
	cfg, err := ParseConfig(b, format)
	if err != nil {
		return err
	}
	config = &cfg
	log.Logger.Infof("Loaded config for %s from %s", cfg.ServerURL, configPath)
	return nil
}

// Set replaces the loaded config, for callers that build it from flags.
func Set(cfg SuiteConfig) {
	config = &cfg
}
