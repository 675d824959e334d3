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
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/candlepin/candlepin-bdd/pkg/ca"
	"github.com/candlepin/candlepin-bdd/pkg/ca/ephemeralca"
	"github.com/candlepin/candlepin-bdd/pkg/ca/fileca"
	"github.com/candlepin/candlepin-bdd/pkg/log"
	"github.com/candlepin/candlepin-bdd/pkg/server"
)

func newStubCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "serve an in-memory entitlement server",
		Long: `Starts an in-memory entitlement server over TLS. Identity and serving
certificates are issued by the configured CA.`,
		RunE: runStub,
	}

	cmd.Flags().String("host", "localhost", "host to listen on")
	cmd.Flags().Int("port", 8443, "port to listen on")
	cmd.Flags().Int("metrics-port", 2112, "port to bind metrics endpoint")
	cmd.Flags().String("ca", "ephemeralca", "ephemeralca (for testing) | fileca")
	cmd.Flags().String("fileca-cert", "", "Path to CA certificate")
	cmd.Flags().String("fileca-key", "", "Path to CA encrypted private key")
	cmd.Flags().String("fileca-key-passwd", "", "Password to decrypt CA private key")
	cmd.Flags().Bool("fileca-watch", true, "Watch filesystem for updates")
	cmd.Flags().String("ca-out", "", "write the CA root certificate to this file")
	cmd.Flags().String("admin-username", "admin", "super admin username")
	cmd.Flags().String("admin-password", "admin", "super admin password")
	cmd.Flags().String("default-owner", "admin", "owner created at startup")
	cmd.Flags().Int("store-size", 4096, "maximum number of consumers kept")
	cmd.Flags().Duration("idle-connection-timeout", 30*time.Second, "The time allowed for connections to remain idle")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		log.Logger.Fatal(err)
	}
	return cmd
}

func newCA() (ca.CertificateAuthority, error) {
	switch viper.GetString("ca") {
	case "ephemeralca":
		return ephemeralca.NewEphemeralCA()
	case "fileca":
		if !viper.IsSet("fileca-cert") {
			return nil, errors.New("fileca-cert must be set to certificate path when using fileca")
		}
		if !viper.IsSet("fileca-key") {
			return nil, errors.New("fileca-key must be set to private key path when using fileca")
		}
		return fileca.NewFileCA(
			viper.GetString("fileca-cert"),
			viper.GetString("fileca-key"),
			viper.GetString("fileca-key-passwd"),
			viper.GetBool("fileca-watch"),
		)
	default:
		return nil, fmt.Errorf("unknown CA: %s", viper.GetString("ca"))
	}
}

func runStub(cmd *cobra.Command, _ []string) error {
	authority, err := newCA()
	if err != nil {
		return err
	}
	defer authority.Close()

	if out := viper.GetString("ca-out"); out != "" {
		root, err := authority.Root(cmd.Context())
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, root, 0644); err != nil { //nolint:gosec
			return err
		}
		log.Logger.Infof("wrote CA root to %s", out)
	}

	srv, err := server.New(authority,
		server.WithAdmin(viper.GetString("admin-username"), viper.GetString("admin-password")),
		server.WithDefaultOwner(viper.GetString("default-owner")),
		server.WithStoreSize(viper.GetInt("store-size")),
	)
	if err != nil {
		return err
	}

	host := viper.GetString("host")
	serving, err := authority.IssueServerCertificate(cmd.Context(), []string{host})
	if err != nil {
		return fmt.Errorf("issuing serving certificate: %w", err)
	}

	endpoint := net.JoinHostPort(host, strconv.Itoa(viper.GetInt("port")))
	api := createHTTPServer(endpoint, srv, serving)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%v", viper.GetString("metrics-port")),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		Handler:           promhttp.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Logger.Errorf("metrics server: %v", err)
		}
	}()

	var wg sync.WaitGroup
	api.startListener(&wg)
	wg.Wait()
	return metricsServer.Shutdown(context.Background())
}

type httpServer struct {
	*http.Server
	httpServerEndpoint string
}

func createHTTPServer(endpoint string, srv *server.Server, serving *tls.Certificate) httpServer {
	// enable CORS
	// cors.Default() configures to accept requests for all domains
	handler := cors.Default().Handler(srv.Handler())

	api := http.Server{
		Addr:    endpoint,
		Handler: handler,
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{*serving},
			// Peer certificates are verified per request against the CA.
			ClientAuth: tls.RequestClientCert,
			MinVersion: tls.VersionTLS12,
		},

		// Timeouts
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       viper.GetDuration("idle-connection-timeout"),
	}
	return httpServer{&api, endpoint}
}

func (h httpServer) startListener(wg *sync.WaitGroup) {
	log.Logger.Infof("listening on https at %s%s", h.httpServerEndpoint, server.PathPrefix)

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint

		// received an interrupt signal, shut down
		if err := h.Shutdown(context.Background()); err != nil {
			// error from closing listeners, or context timeout
			log.Logger.Errorf("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
		log.Logger.Info("stopped http server")
	}()

	wg.Add(1)
	go func() {
		if err := h.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Logger.Fatal(err)
		}
		<-idleConnsClosed
		wg.Done()
		log.Logger.Info("http server shutdown")
	}()
}

func init() {
	rootCmd.AddCommand(newStubCmd())
}
