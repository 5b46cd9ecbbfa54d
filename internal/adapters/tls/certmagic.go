// Package tls terminates HTTPS for the transform API with certificates
// obtained automatically through ACME.
package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/libdns/azure"
)

// Config controls automatic TLS termination.
type Config struct {
	Enabled  bool
	Domains  []string
	Email    string
	CacheDir string
	Staging  bool // issue against the Let's Encrypt staging CA
	DNS      DNSConfig
}

// DNSConfig identifies the Azure DNS zone used to answer DNS-01
// challenges.
type DNSConfig struct {
	SubscriptionID    string
	ResourceGroupName string
	ClientID          string // user-assigned managed identity; empty selects the system-assigned one
}

// Server serves a handler over HTTPS when enabled, plain HTTP
// otherwise, so callers need no TLS branching of their own.
type Server struct {
	config    Config
	handler   http.Handler
	logger    *slog.Logger
	tlsConfig *tls.Config
}

// NewServer creates the server and, when TLS is enabled, wires up
// certificate management for the configured domains.
func NewServer(cfg Config, handler http.Handler, logger *slog.Logger) (*Server, error) {
	s := &Server{config: cfg, handler: handler, logger: logger}
	if !cfg.Enabled {
		return s, nil
	}

	if len(cfg.Domains) == 0 {
		return nil, fmt.Errorf("TLS enabled without domains")
	}
	if cfg.Email == "" {
		return nil, fmt.Errorf("TLS enabled without an ACME account email")
	}

	tlsConfig, err := acmeTLS(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring TLS: %w", err)
	}
	s.tlsConfig = tlsConfig

	return s, nil
}

// acmeTLS sets the package-level CertMagic defaults and returns a TLS
// configuration managing certificates for the given domains. DNS-01 is
// the only challenge type wired up: the service may sit behind a load
// balancer that HTTP-01 cannot reach.
func acmeTLS(cfg Config) (*tls.Config, error) {
	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = cfg.Email
	certmagic.DefaultACME.DNS01Solver = &certmagic.DNS01Solver{
		DNSManager: certmagic.DNSManager{
			DNSProvider: &azure.Provider{
				SubscriptionId:    cfg.DNS.SubscriptionID,
				ResourceGroupName: cfg.DNS.ResourceGroupName,
				ClientId:          cfg.DNS.ClientID,
			},
		},
	}

	if cfg.Staging {
		certmagic.DefaultACME.CA = certmagic.LetsEncryptStagingCA
	}
	if cfg.CacheDir != "" {
		certmagic.Default.Storage = &certmagic.FileStorage{Path: cfg.CacheDir}
	}

	return certmagic.TLS(cfg.Domains)
}

// ListenAndServe blocks serving the handler on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if !s.config.Enabled {
		s.logger.Info("serving plain HTTP", "address", addr)
		return srv.ListenAndServe()
	}

	srv.TLSConfig = s.tlsConfig
	s.logger.Info("serving HTTPS", "address", addr, "domains", s.config.Domains)
	return srv.ListenAndServeTLS("", "")
}

// ManageCertificates obtains certificates for the configured domains
// up front, so the first request does not pay the issuance delay.
func (s *Server) ManageCertificates(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.logger.Info("obtaining certificates", "domains", s.config.Domains)
	if err := certmagic.ManageSync(ctx, s.config.Domains); err != nil {
		return fmt.Errorf("managing certificates: %w", err)
	}
	s.logger.Info("certificates obtained")
	return nil
}
