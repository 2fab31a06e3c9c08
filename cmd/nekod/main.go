package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mikey-austin/nekotv/internal/adapters/mqttfeed"
	"github.com/mikey-austin/nekotv/internal/adapters/prefs"
	"github.com/mikey-austin/nekotv/internal/adapters/wsfeed"
	backendraw "github.com/mikey-austin/nekotv/internal/modules/backend_raw"
	embeddedmqtt "github.com/mikey-austin/nekotv/internal/modules/embedded_mqtt"
	playercore "github.com/mikey-austin/nekotv/internal/modules/player_core"
	"github.com/mikey-austin/nekotv/internal/modules/watch"
	"github.com/mikey-austin/nekotv/internal/nekod"
	"github.com/mikey-austin/nekotv/pkg/neko"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath  string
		broker      string
		thread      string
		nodeID      string
		logLevel    string
		logFormat   string
		printConfig bool
		dryRun      bool
	)

	defaultConfig, err := nekod.DefaultConfigPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.StringVar(&configPath, "config", defaultConfig, "config file path")
	flag.StringVar(&broker, "broker", "", "MQTT broker URL override")
	flag.StringVar(&thread, "thread", "", "thread ID override")
	flag.StringVar(&nodeID, "node", "", "node ID override")
	flag.StringVar(&logLevel, "log-level", "", "log level override")
	flag.StringVar(&logFormat, "log-format", "", "log format override (text|json)")
	flag.BoolVar(&printConfig, "print-config", false, "print resolved config and exit")
	flag.BoolVar(&dryRun, "dry-run", false, "validate config and exit")
	flag.Parse()

	cfg, err := nekod.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyOverrides(&cfg, broker, thread, nodeID, logLevel, logFormat)

	if printConfig {
		fmt.Fprintf(os.Stdout, "broker=%s node=%s thread=%s feed=%s topic_base=%s\n",
			cfg.Server.Broker, cfg.Server.NodeID, cfg.Server.Thread, cfg.Server.Feed, cfg.Server.TopicBase)
		return
	}
	if dryRun {
		return
	}

	logger := nekod.NewLogger(cfg.Logging)
	moduleLogger, err := nekod.NewModuleLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	skipEmbedded := false
	if cfg.Modules.EmbeddedMQTT.Enabled && cfg.Server.Broker == embeddedBrokerURL(cfg) {
		if err := startEmbeddedBroker(ctx, cfg, moduleLogger, cancel); err != nil {
			logger.Error("embedded mqtt failed", "error", err)
			os.Exit(1)
		}
		skipEmbedded = true
	}

	if cfg.Server.Broker == "" {
		logger.Error("broker is required")
		os.Exit(1)
	}
	if cfg.Server.Thread == "" {
		logger.Error("thread is required")
		os.Exit(1)
	}
	logger.Info("nekod starting",
		"broker", cfg.Server.Broker,
		"node", cfg.Server.NodeID,
		"thread", cfg.Server.Thread,
		"feed", cfg.Server.Feed,
		"topic_base", cfg.Server.TopicBase,
	)

	client, err := mqttfeed.NewClient(mqttfeed.Options{
		BrokerURL: cfg.Server.Broker,
		ClientID:  fmt.Sprintf("nekod-%d", time.Now().UnixNano()),
		Username:  cfg.Server.Auth.User,
		Password:  cfg.Server.Auth.Pass,
		TLSCA:     cfg.Server.TLS.CA,
		TLSCert:   cfg.Server.TLS.Cert,
		TLSKey:    cfg.Server.TLS.Key,
		Timeout:   2 * time.Second,
		Logger:    moduleLogger,
	})
	if err != nil {
		logger.Error("mqtt connection failed", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect()

	modules, err := buildModules(cfg, client, logger, moduleLogger, skipEmbedded)
	if err != nil {
		logger.Error("failed to build modules", "error", err)
		os.Exit(1)
	}

	supervisor := nekod.Supervisor{Logger: logger}
	if err := supervisor.Run(ctx, modules); err != nil {
		logger.Error("supervisor error", "error", err)
		os.Exit(1)
	}
}

func applyOverrides(cfg *nekod.Config, broker string, thread string, nodeID string, logLevel string, logFormat string) {
	if broker != "" {
		cfg.Server.Broker = broker
	}
	if thread != "" {
		cfg.Server.Thread = thread
	}
	if nodeID != "" {
		cfg.Server.NodeID = nodeID
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if cfg.Server.TopicBase == "" {
		cfg.Server.TopicBase = neko.BaseTopic
	}
	if cfg.Server.NodeID == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "nekod"
		}
		cfg.Server.NodeID = host
	}
	if cfg.Server.Feed == "" {
		cfg.Server.Feed = "mqtt"
	}
	if cfg.Server.Broker == "" && cfg.Modules.EmbeddedMQTT.Enabled {
		cfg.Server.Broker = embeddedBrokerURL(*cfg)
	}
}

func buildModules(cfg nekod.Config, client *mqttfeed.Client, logger *slog.Logger, moduleLogger *zap.Logger, skipEmbedded bool) ([]nekod.ModuleRunner, error) {
	modules := []nekod.ModuleRunner{}

	if cfg.Modules.EmbeddedMQTT.Enabled && !skipEmbedded {
		mod, err := embeddedmqtt.NewModule(moduleLogger.With(zap.String("module", "embedded_mqtt")), embeddedMQTTConfig(cfg))
		if err != nil {
			return nil, err
		}
		modules = append(modules, nekod.ModuleRunner{Name: "embedded_mqtt", Run: mod.Run})
	}

	if !cfg.Modules.Watch.Enabled {
		return modules, nil
	}

	controller, err := buildController(cfg, logger)
	if err != nil {
		return nil, err
	}

	prefsPath := cfg.Server.PrefsPath
	if prefsPath == "" {
		var err error
		prefsPath, err = prefs.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	store, err := prefs.Open(prefsPath)
	if err != nil {
		return nil, err
	}

	mod, err := watch.NewModule(moduleLogger.With(zap.String("module", "watch")), client, controller, store, watch.Config{
		NodeID:       cfg.Server.NodeID,
		Thread:       cfg.Server.Thread,
		TopicBase:    cfg.Server.TopicBase,
		PublishState: cfg.Modules.Watch.PublishState,
	})
	if err != nil {
		return nil, err
	}
	modules = append(modules, nekod.ModuleRunner{Name: "watch", Run: mod.Run})

	if strings.ToLower(cfg.Server.Feed) == "websocket" {
		if cfg.Server.FeedURL == "" {
			return nil, errors.New("feed_url required for websocket feed")
		}
		feed, err := wsfeed.New(wsfeed.Options{
			URL:    cfg.Server.FeedURL,
			Logger: moduleLogger.With(zap.String("module", "wsfeed")),
		})
		if err != nil {
			return nil, err
		}
		modules = append(modules, nekod.ModuleRunner{
			Name: "wsfeed",
			Run: func(ctx context.Context) error {
				err := feed.Run(ctx, mod.HandleMessage)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			},
		})
	}

	return modules, nil
}

func buildController(cfg nekod.Config, logger *slog.Logger) (*playercore.Controller, error) {
	backends := map[neko.VideoType]playercore.Backend{}

	if cfg.Backends.Raw.Enabled {
		driver, err := buildRawDriver(cfg.Backends.Raw)
		if err != nil {
			return nil, err
		}
		backends[neko.VideoTypeRaw] = backendraw.New(neko.VideoTypeRaw, driver, logger)
		if cfg.Backends.Raw.PlayYouTube {
			backends[neko.VideoTypeYouTube] = backendraw.New(neko.VideoTypeYouTube, driver, logger)
		}
	}

	if len(backends) == 0 {
		return nil, errors.New("no playback backends enabled")
	}
	return playercore.NewController(backends, logger), nil
}

func buildRawDriver(cfg nekod.RawBackendConfig) (backendraw.Media, error) {
	switch strings.ToLower(cfg.Driver) {
	case "vlc":
		return backendraw.NewVLCDriver(cfg.BaseURL, "", cfg.Password, 2*time.Second)
	case "kodi":
		return backendraw.NewKodiDriver(cfg.BaseURL, "", cfg.Password, 2*time.Second)
	case "gstreamer":
		return backendraw.NewGstDriver(cfg.Pipeline, cfg.Device)
	default:
		return nil, fmt.Errorf("unknown raw driver %q", cfg.Driver)
	}
}

func embeddedMQTTConfig(cfg nekod.Config) embeddedmqtt.Config {
	return embeddedmqtt.Config{
		Listen:         cfg.Modules.EmbeddedMQTT.Listen,
		AllowAnonymous: cfg.Modules.EmbeddedMQTT.AllowAnonymous,
		Username:       cfg.Modules.EmbeddedMQTT.Username,
		Password:       cfg.Modules.EmbeddedMQTT.Password,
		TLSCA:          cfg.Modules.EmbeddedMQTT.TLSCA,
		TLSCert:        cfg.Modules.EmbeddedMQTT.TLSCert,
		TLSKey:         cfg.Modules.EmbeddedMQTT.TLSKey,
	}
}

func embeddedBrokerURL(cfg nekod.Config) string {
	listen := cfg.Modules.EmbeddedMQTT.Listen
	if listen == "" {
		listen = "127.0.0.1:1883"
	}
	tlsEnabled := cfg.Modules.EmbeddedMQTT.TLSCert != "" || cfg.Modules.EmbeddedMQTT.TLSKey != "" || cfg.Modules.EmbeddedMQTT.TLSCA != ""
	return embeddedmqtt.BrokerURL(listen, tlsEnabled)
}

func startEmbeddedBroker(ctx context.Context, cfg nekod.Config, moduleLogger *zap.Logger, cancel context.CancelFunc) error {
	mod, err := embeddedmqtt.NewModule(moduleLogger.With(zap.String("module", "embedded_mqtt")), embeddedMQTTConfig(cfg))
	if err != nil {
		return err
	}
	go func() {
		if err := mod.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			moduleLogger.Error("embedded mqtt exited", zap.Error(err))
			cancel()
		}
	}()

	listen := cfg.Modules.EmbeddedMQTT.Listen
	if listen == "" {
		listen = "127.0.0.1:1883"
	}
	return waitForListen(listen, 3*time.Second)
}

func waitForListen(listen string, timeout time.Duration) error {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return err
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	addr := net.JoinHostPort(host, port)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("embedded mqtt not ready at %s", addr)
}
