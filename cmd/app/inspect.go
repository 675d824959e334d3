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
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/candlepin/candlepin-bdd/pkg/idcert"
)

func newInspectCmd() *cobra.Command {
	var field string
	var displayName bool

	cmd := &cobra.Command{
		Use:   "inspect [cert.pem]",
		Short: "print an identity certificate",
		Long: `Prints the subject and extensions of an identity certificate the way
the feature steps read them. Reads stdin when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(filepath.Clean(args[0]))
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			data, err := io.ReadAll(in)
			if err != nil {
				return err
			}
			cert, err := idcert.Parse(string(data))
			if err != nil {
				return err
			}
			return printCertificate(cmd.OutOrStdout(), cert, field, displayName)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "print only this subject field")
	cmd.Flags().BoolVar(&displayName, "display-name", false, "print only the consumer name carried in subjectAltName")
	return cmd
}

func printCertificate(w io.Writer, cert *idcert.Certificate, field string, displayName bool) error {
	switch {
	case field != "":
		v, err := cert.SubjectValue(field)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, v)
		return err
	case displayName:
		v, err := cert.DisplayName()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, v)
		return err
	}

	fmt.Fprintf(w, "subject: %s\n", cert.SubjectString())
	for _, a := range cert.Subject {
		fmt.Fprintf(w, "  %s: %s\n", a.Key, a.Value)
	}
	names := make([]string, 0, len(cert.Extensions))
	for name := range cert.Extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "extensions:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, cert.Extensions[name])
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newInspectCmd())
}
