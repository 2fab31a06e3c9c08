package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey-austin/nekotv/internal/adapters/clock"
	"github.com/mikey-austin/nekotv/internal/adapters/config"
	"github.com/mikey-austin/nekotv/internal/adapters/idgen"
	"github.com/mikey-austin/nekotv/internal/adapters/mqtt"
	"github.com/mikey-austin/nekotv/internal/adapters/output"
	"github.com/mikey-austin/nekotv/internal/core"
	mediainfo "github.com/mikey-austin/nekotv/internal/modules/media_info"
	"github.com/mikey-austin/nekotv/pkg/neko"
)

type app struct {
	service core.Service
	printer output.Printer
	thread  string
	node    string
	json    bool
	timeout time.Duration
}

func main() {
	root := &cobra.Command{
		Use:   "neko",
		Short: "NekoTV thread playback CLI",
	}

	var (
		broker    string
		topicBase string
		thread    string
		node      string
		identity  string
		timeout   time.Duration
		jsonOut   bool
		verbose   bool
		tlsCA     string
		tlsCert   string
		tlsKey    string
		userOpt   string
		passOpt   string
	)

	root.PersistentFlags().StringVarP(&broker, "broker", "b", "", "MQTT broker URL")
	root.PersistentFlags().StringVar(&topicBase, "topic-base", neko.BaseTopic, "MQTT topic base")
	root.PersistentFlags().StringVar(&thread, "thread", "", "thread ID")
	root.PersistentFlags().StringVarP(&node, "node", "n", "", "watch node ID")
	root.PersistentFlags().StringVarP(&identity, "identity", "i", "", "sender identity")
	root.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 2*time.Second, "command timeout")
	root.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output json")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().StringVar(&tlsCA, "tls-ca", "", "TLS CA path")
	root.PersistentFlags().StringVar(&tlsCert, "tls-cert", "", "TLS cert path")
	root.PersistentFlags().StringVar(&tlsKey, "tls-key", "", "TLS key path")
	root.PersistentFlags().StringVar(&userOpt, "user", "", "MQTT username")
	root.PersistentFlags().StringVar(&passOpt, "pass", "", "MQTT password")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		identity = defaultIdentity(identity, cfg.Identity)
		if broker == "" {
			broker = cfg.Broker
		}
		if topicBase == neko.BaseTopic && cfg.TopicBase != "" {
			topicBase = cfg.TopicBase
		}
		if broker == "" {
			return errors.New("broker is required (set --broker or config)")
		}

		clientID := fmt.Sprintf("neko-%d", time.Now().UnixNano())
		mqttClient, err := mqtt.NewClient(mqtt.Options{
			BrokerURL: broker,
			ClientID:  clientID,
			Username:  userOpt,
			Password:  passOpt,
			TLSCA:     tlsCA,
			TLSCert:   tlsCert,
			TLSKey:    tlsKey,
			TopicBase: topicBase,
			Timeout:   timeout,
		})
		if err != nil {
			return err
		}

		resolverLogger := zap.NewNop()
		if verbose {
			if logger, err := zap.NewDevelopment(); err == nil {
				resolverLogger = logger
			}
		}

		service := core.Service{
			Broker:   mqttClient,
			Resolver: mediainfo.NewResolver(resolverLogger),
			Clock:    clock.Clock{},
			IDGen:    idgen.Generator{},
			Config: core.Config{
				Broker:    broker,
				Identity:  identity,
				TopicBase: topicBase,
				Defaults: core.Defaults{
					Thread: cfg.Defaults.Thread,
					Node:   cfg.Defaults.Node,
				},
			},
		}

		var printer output.Printer
		if jsonOut {
			printer = output.JSONPrinter{}
		} else {
			printer = output.HumanPrinter{}
		}

		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{
			service: service,
			printer: printer,
			thread:  thread,
			node:    node,
			json:    jsonOut,
			timeout: timeout,
		}))
		return nil
	}

	root.AddCommand(nodesCommand())
	root.AddCommand(statusCommand())
	root.AddCommand(playlistCommand())
	root.AddCommand(addCommand())
	root.AddCommand(removeCommand())
	root.AddCommand(skipCommand())
	root.AddCommand(playCommand())
	root.AddCommand(pauseCommand())
	root.AddCommand(seekCommand())
	root.AddCommand(rateCommand())
	root.AddCommand(nextCommand())
	root.AddCommand(playItemCommand())
	root.AddCommand(clearCommand())
	root.AddCommand(lockCommand())
	root.AddCommand(muteCommand())

	if err := root.Execute(); err != nil {
		os.Exit(core.ExitCode(err))
	}
}

type appKey struct{}

func fromContext(cmd *cobra.Command) *app {
	val := cmd.Context().Value(appKey{})
	if val == nil {
		return nil
	}
	return val.(*app)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func defaultIdentity(flagVal string, cfgVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if cfgVal != "" {
		return cfgVal
	}
	usr, _ := user.Current()
	host, _ := os.Hostname()
	if usr != nil && host != "" {
		return fmt.Sprintf("%s@%s", usr.Username, host)
	}
	if host != "" {
		return host
	}
	return "neko-unknown"
}
