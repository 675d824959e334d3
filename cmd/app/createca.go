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
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"os"
	"time"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.step.sm/crypto/pemutil"

	"github.com/candlepin/candlepin-bdd/pkg/ca"
	"github.com/candlepin/candlepin-bdd/pkg/log"
)

type rootOptions struct {
	CommonName   string
	Organization string
	Country      string
	Locality     string
	Years        int
	Password     string
}

// createRootCA returns a self-signed root certificate and its private key,
// both PEM encoded. The key is encrypted when a password is given.
func createRootCA(opts rootOptions) (certPEM, keyPEM []byte, err error) {
	if opts.Years <= 0 {
		return nil, nil, errors.New("root CA validity must be at least one year")
	}
	signer, err := ca.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	serialNumber, err := cryptoutils.GenerateSerialNumber()
	if err != nil {
		return nil, nil, err
	}

	name := pkix.Name{CommonName: opts.CommonName}
	if opts.Organization != "" {
		name.Organization = []string{opts.Organization}
	}
	if opts.Country != "" {
		name.Country = []string{opts.Country}
	}
	if opts.Locality != "" {
		name.Locality = []string{opts.Locality}
	}
	rootCA := &x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               name,
		NotBefore:             time.Now(),
		NotAfter:              time.Now().AddDate(opts.Years, 0, 0),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		MaxPathLen:            1,
	}

	caBytes, err := x509.CreateCertificate(rand.Reader, rootCA, rootCA, signer.Public(), signer)
	if err != nil {
		return nil, nil, err
	}
	root, err := x509.ParseCertificate(caBytes)
	if err != nil {
		return nil, nil, err
	}
	certPEM, err = cryptoutils.MarshalCertificateToPEM(root)
	if err != nil {
		return nil, nil, err
	}

	var pemOpts []pemutil.Options
	if opts.Password != "" {
		pemOpts = append(pemOpts, pemutil.WithPassword([]byte(opts.Password)))
	}
	block, err := pemutil.Serialize(signer, pemOpts...)
	if err != nil {
		return nil, nil, err
	}
	return certPEM, pem.EncodeToMemory(block), nil
}

func newCreateCACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createca",
		Short: "Create a root CA on disk",
		Long: `Create a self-signed x509 root CA and write the certificate and
private key as PEM files. The pair can then be served by "stub --ca fileca".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			certPEM, keyPEM, err := createRootCA(rootOptions{
				CommonName:   viper.GetString("cn"),
				Organization: viper.GetString("org"),
				Country:      viper.GetString("country"),
				Locality:     viper.GetString("locality"),
				Years:        viper.GetInt("years"),
				Password:     viper.GetString("key-passwd"),
			})
			if err != nil {
				return err
			}
			certOut, keyOut := viper.GetString("cert-out"), viper.GetString("key-out")
			if err := os.WriteFile(certOut, certPEM, 0644); err != nil { //nolint:gosec
				return err
			}
			if err := os.WriteFile(keyOut, keyPEM, 0600); err != nil {
				return err
			}
			log.CliLogger.Infof("root CA saved to %s, key saved to %s", certOut, keyOut)
			return nil
		},
	}

	cmd.Flags().String("cn", "candlepin-bdd root CA", "Common name for root CA")
	cmd.Flags().String("org", "candlepin", "Organization name for root CA")
	cmd.Flags().String("country", "", "Country name for root CA")
	cmd.Flags().String("locality", "", "Locality name for root CA")
	cmd.Flags().Int("years", 10, "Validity of the root CA in years")
	cmd.Flags().String("key-passwd", "", "Password used to encrypt the private key")
	cmd.Flags().String("cert-out", "ca.crt", "output root CA certificate to file")
	cmd.Flags().String("key-out", "ca.key", "output root CA private key to file")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		log.Logger.Fatal(err)
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(newCreateCACmd())
}
