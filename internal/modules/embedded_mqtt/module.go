package embeddedmqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"

	mqtt "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"go.uber.org/zap"
)

// Config configures the embedded MQTT broker.
type Config struct {
	Listen         string
	AllowAnonymous bool
	Username       string
	Password       string
	TLSCA          string
	TLSCert        string
	TLSKey         string
}

// Module runs an in-process MQTT broker so a single node can host its own
// thread feed without an external broker.
type Module struct {
	log    *zap.Logger
	server *mqtt.Server
	config Config
}

// NewModule creates a new embedded broker module.
func NewModule(log *zap.Logger, cfg Config) (*Module, error) {
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = "127.0.0.1:1883"
	}

	server, err := newServer(log, cfg)
	if err != nil {
		return nil, err
	}
	return &Module{log: log, server: server, config: cfg}, nil
}

// Run starts the embedded broker and blocks until the context is cancelled.
func (m *Module) Run(ctx context.Context) error {
	listenerConfig := listeners.Config{ID: "nekotv-embedded", Address: m.config.Listen}
	if m.tlsConfigured() {
		tlsConfig, err := buildTLSConfig(m.config.TLSCA, m.config.TLSCert, m.config.TLSKey)
		if err != nil {
			return err
		}
		listenerConfig.TLSConfig = tlsConfig
	}

	if err := m.server.AddListener(listeners.NewTCP(listenerConfig)); err != nil {
		return err
	}

	go func() {
		if err := m.server.Serve(); err != nil {
			m.log.Error("embedded broker stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	return m.server.Close()
}

func (m *Module) tlsConfigured() bool {
	return m.config.TLSCert != "" || m.config.TLSKey != "" || m.config.TLSCA != ""
}

func newServer(log *zap.Logger, cfg Config) (*mqtt.Server, error) {
	server := mqtt.New(&mqtt.Options{
		InlineClient: true,
		Logger:       newBridgeLogger(log),
	})
	if err := addAuthHook(server, cfg); err != nil {
		return nil, err
	}
	return server, nil
}

func addAuthHook(server *mqtt.Server, cfg Config) error {
	if cfg.AllowAnonymous {
		return server.AddHook(new(auth.AllowHook), nil)
	}
	if cfg.Username == "" {
		return errors.New("embedded mqtt requires allow_anonymous or username")
	}

	ledger := &auth.Ledger{
		Auth: auth.AuthRules{{
			Username: auth.RString(cfg.Username),
			Password: auth.RString(cfg.Password),
			Allow:    true,
		}},
		ACL: auth.ACLRules{{
			Username: auth.RString(cfg.Username),
			Filters:  auth.Filters{auth.RString("#"): auth.ReadWrite},
		}},
	}
	return server.AddHook(new(auth.Hook), &auth.Options{Ledger: ledger})
}

func buildTLSConfig(caPath, certPath, keyPath string) (*tls.Config, error) {
	config := &tls.Config{}

	if caPath != "" {
		pem, err := os.ReadFile(caPath)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("failed to parse CA bundle")
		}
		config.RootCAs = pool
	}

	if certPath != "" || keyPath != "" {
		if certPath == "" || keyPath == "" {
			return nil, errors.New("both tls cert and key are required")
		}
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return nil, err
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}

// BrokerURL returns the broker URL clients should use for a listen address.
func BrokerURL(listen string, tlsEnabled bool) string {
	scheme := "mqtt"
	if tlsEnabled {
		scheme = "mqtts"
	}
	return fmt.Sprintf("%s://%s", scheme, listen)
}
