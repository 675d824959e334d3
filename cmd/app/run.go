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

package app

import (
	"fmt"
	"os"

	"github.com/cucumber/godog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/candlepin/candlepin-bdd/pkg/config"
	"github.com/candlepin/candlepin-bdd/pkg/log"
	"github.com/candlepin/candlepin-bdd/pkg/steps"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [feature paths...]",
		Short: "run the feature suite against a server",
		Long: `Runs the consumer registration features against the configured server.
Without paths the features built into the binary are used.`,
		RunE: runSuite,
	}

	cmd.Flags().String("server-url", "", "API root of the server, e.g. https://localhost:8443/candlepin")
	cmd.Flags().String("username", "", "super admin username")
	cmd.Flags().String("password", "", "super admin password")
	cmd.Flags().String("owner", "", "owner key consumers are registered into")
	cmd.Flags().String("user-password", "", "password given to users the suite creates")
	cmd.Flags().String("ca-cert", "", "PEM file with the CA that signed the server certificate")
	cmd.Flags().Bool("insecure", false, "skip server certificate verification")
	cmd.Flags().Duration("timeout", 0, "per request timeout")
	cmd.Flags().String("user-agent", "", "User-Agent sent with every request")
	cmd.Flags().String("format", "pretty", "godog output format (pretty, progress, cucumber, junit)")
	cmd.Flags().String("tags", "", "only run scenarios matching this tag expression")
	cmd.Flags().Bool("strict", true, "fail on pending or undefined steps")
	cmd.Flags().Bool("list-steps", false, "print the step sentences and exit")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		log.Logger.Fatal(err)
	}
	return cmd
}

func runSuite(cmd *cobra.Command, args []string) error {
	if viper.GetBool("list-steps") {
		for _, p := range steps.Patterns() {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	}

	cfg, err := loadSuiteConfig()
	if err != nil {
		return err
	}
	env, err := steps.NewEnvironment(cfg)
	if err != nil {
		return err
	}

	suite := steps.NewSuite(env, godog.Options{
		Format: viper.GetString("format"),
		Tags:   viper.GetString("tags"),
		Strict: viper.GetBool("strict"),
		Paths:  args,
		Output: cmd.OutOrStdout(),
	})
	log.Logger.Infof("running features against %s", cfg.ServerURL)
	if status := suite.Run(); status != 0 {
		os.Exit(status)
	}
	return nil
}

// loadSuiteConfig reads the config file and lays any flags that were set on
// top of it.
func loadSuiteConfig() (config.SuiteConfig, error) {
	path, err := configPath()
	if err != nil {
		return config.SuiteConfig{}, err
	}
	if err := config.Load(path); err != nil {
		return config.SuiteConfig{}, fmt.Errorf("error loading config: %w", err)
	}
	cfg := config.Config()

	overrides := []struct {
		flag string
		set  func()
	}{
		{"server-url", func() { cfg.ServerURL = viper.GetString("server-url") }},
		{"username", func() { cfg.Username = viper.GetString("username") }},
		{"password", func() { cfg.Password = viper.GetString("password") }},
		{"owner", func() { cfg.Owner = viper.GetString("owner") }},
		{"user-password", func() { cfg.UserPassword = viper.GetString("user-password") }},
		{"ca-cert", func() { cfg.CACertPath = viper.GetString("ca-cert") }},
		{"insecure", func() { cfg.Insecure = viper.GetBool("insecure") }},
		{"timeout", func() { cfg.Timeout = viper.GetDuration("timeout") }},
		{"user-agent", func() { cfg.UserAgent = viper.GetString("user-agent") }},
	}
	for _, o := range overrides {
		if viper.IsSet(o.flag) {
			o.set()
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.SuiteConfig{}, err
	}
	config.Set(cfg)
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
