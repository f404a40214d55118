package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/netled/cmd"
	"github.com/smazurov/netled/internal/api"
	"github.com/smazurov/netled/internal/config"
	"github.com/smazurov/netled/internal/events"
	"github.com/smazurov/netled/internal/led"
	"github.com/smazurov/netled/internal/logging"
	"github.com/smazurov/netled/internal/metrics/exporters"
	"github.com/smazurov/netled/internal/modem"
	"github.com/smazurov/netled/internal/monitoring"
	"github.com/smazurov/netled/internal/nats"
	"github.com/smazurov/netled/internal/netstate"
	"github.com/smazurov/netled/internal/systemd"
	"github.com/smazurov/netled/internal/version"
	"github.com/spf13/cobra"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"/etc/netled/config.toml"`

	// Server settings
	Port string `help:"Address for the HTTP API" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username (empty disables auth)" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// LED mapping; empty means detect the board
	LedsWifi     string `help:"sysfs LED for Wi-Fi" default:"" toml:"leds.wifi" env:"LEDS_WIFI"`
	LedsEthernet string `help:"sysfs LED for Ethernet" default:"" toml:"leds.ethernet" env:"LEDS_ETHERNET"`
	LedsCellular string `help:"sysfs LEDs for cellular signal, comma separated: one LED or a bar graph" default:"" toml:"leds.cellular" env:"LEDS_CELLULAR"`

	// Network monitor settings
	NetmonEnabled      bool   `help:"Watch network interfaces and rfkill" default:"true" toml:"netmon.enabled" env:"NETMON_ENABLED"`
	NetmonUdev         bool   `help:"Use udev netlink events" default:"true" toml:"netmon.udev" env:"NETMON_UDEV"`
	NetmonPollInterval string `help:"Fallback poll interval" default:"30s" toml:"netmon.poll_interval" env:"NETMON_POLL_INTERVAL"`

	// Modem settings
	ModemEnabled      bool   `help:"Poll a serial modem for signal strength" default:"false" toml:"modem.enabled" env:"MODEM_ENABLED"`
	ModemDevice       string `help:"Modem AT command port" default:"/dev/ttyUSB2" toml:"modem.device" env:"MODEM_DEVICE"`
	ModemBaud         int    `help:"Modem baud rate" default:"115200" toml:"modem.baud" env:"MODEM_BAUD"`
	ModemPollInterval string `help:"Modem poll interval" default:"10s" toml:"modem.poll_interval" env:"MODEM_POLL_INTERVAL"`

	// NATS settings
	NatsEnabled bool   `help:"Accept events over NATS" default:"true" toml:"nats.enabled" env:"NATS_ENABLED"`
	NatsEmbed   bool   `help:"Run an embedded NATS server" default:"true" toml:"nats.embed" env:"NATS_EMBED"`
	NatsHost    string `help:"Embedded NATS listen host" default:"127.0.0.1" toml:"nats.host" env:"NATS_HOST"`
	NatsPort    int    `help:"Embedded NATS listen port" default:"4222" toml:"nats.port" env:"NATS_PORT"`
	NatsURL     string `help:"External NATS URL when not embedded" default:"nats://127.0.0.1:4222" toml:"nats.url" env:"NATS_URL"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingLed    string `help:"LED manager logging level" default:"info" toml:"logging.led" env:"LOGGING_LED"`
	LoggingNetmon string `help:"Network monitor logging level" default:"info" toml:"logging.netmon" env:"LOGGING_NETMON"`
	LoggingModem  string `help:"Modem logging level" default:"info" toml:"logging.modem" env:"LOGGING_MODEM"`
	LoggingNats   string `help:"NATS logging level" default:"info" toml:"logging.nats" env:"LOGGING_NATS"`
	LoggingServer string `help:"HTTP API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingConfig string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

func (o *Options) ledMapping() led.Mapping {
	return led.Mapping{
		WiFi:     o.LedsWifi,
		Ethernet: o.LedsEthernet,
		Cellular: splitList(o.LedsCellular),
	}
}

func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"led":    o.LoggingLed,
			"netmon": o.LoggingNetmon,
			"modem":  o.LoggingModem,
			"nats":   o.LoggingNats,
			"api":    o.LoggingServer,
			"http":   o.LoggingServer,
			"config": o.LoggingConfig,
		},
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(logger *slog.Logger, name, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("Invalid duration, using default", "option", name, "value", value, "default", fallback)
		return fallback
	}
	return d
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(opts.loggingConfig())
		logger := logging.GetLogger("main")
		notifier := systemd.NewNotifier(logger)

		ctx, cancel := context.WithCancel(context.Background())

		eventBus := events.New()
		probe := netstate.NewProbe()

		ledLogger := logging.GetLogger("led")
		ledManager := led.NewManager(led.New(ledLogger, opts.ledMapping()), eventBus, probe, ledLogger)

		var netMonitor *monitoring.NetMonitor
		if opts.NetmonEnabled {
			netOpts := []monitoring.Option{
				monitoring.WithPollInterval(parseDuration(logger, "netmon.poll_interval", opts.NetmonPollInterval, 30*time.Second)),
			}
			if !opts.NetmonUdev {
				netOpts = append(netOpts, monitoring.WithoutUdev())
			}
			netMonitor = monitoring.NewNetMonitor(probe, eventBus, logging.GetLogger("netmon"), netOpts...)
		}

		var modemPoller *modem.Poller
		if opts.ModemEnabled {
			modemPoller = modem.NewPoller(modem.Config{
				Device:   opts.ModemDevice,
				BaudRate: opts.ModemBaud,
				Interval: parseDuration(logger, "modem.poll_interval", opts.ModemPollInterval, 10*time.Second),
			}, eventBus, logging.GetLogger("modem"))
		}

		natsLogger := logging.GetLogger("nats")
		var natsServer *nats.Server
		var natsBridge *nats.Bridge
		if opts.NatsEnabled && opts.NatsEmbed {
			natsServer = nats.NewServer(nats.ServerOptions{
				Host:   opts.NatsHost,
				Port:   opts.NatsPort,
				Logger: natsLogger,
				Debug:  opts.LoggingNats == "debug",
			})
		}

		server := api.NewServer(&api.Options{
			AuthUsername:      opts.AuthUsername,
			AuthPassword:      opts.AuthPassword,
			EventBus:          eventBus,
			Indicators:        ledManager,
			PrometheusHandler: exporters.HTTPHandler(),
		})

		configLogger := logging.GetLogger("config")
		configWatcher := config.NewConfigWatcher(opts.Config, config.LoadFileConfig, configLogger)
		configWatcher.OnReload(func(fc config.FileConfig) {
			notifier.Reloading()
			logging.SetLevels(fc.Logging)
			mapping := fc.LEDs
			if mapping.Empty() {
				mapping = opts.ledMapping()
			}
			ledManager.SetController(led.New(ledLogger, mapping))
			notifier.Ready()
		})

		hooks.OnStart(func() {
			logger.Info("Starting netled", "version", version.String())

			// Subscribe before any source publishes so the first state reaches the LEDs.
			ledManager.Register()

			if opts.NatsEnabled {
				natsURL := opts.NatsURL
				if natsServer != nil {
					if err := natsServer.Start(); err != nil {
						logger.Error("Failed to start embedded NATS server", "error", err)
						os.Exit(1)
					}
					natsURL = natsServer.ClientURL()
				}
				natsBridge = nats.NewBridge(natsURL, eventBus, natsLogger)
				if err := natsBridge.Start(); err != nil {
					logger.Warn("NATS bridge unavailable, continuing without it", "url", natsURL, "error", err)
				}
			}

			if netMonitor != nil {
				if err := netMonitor.Start(ctx); err != nil {
					logger.Warn("Failed to start network monitor", "error", err)
				}
			}
			if modemPoller != nil {
				if err := modemPoller.Start(ctx); err != nil {
					logger.Warn("Failed to start modem poller", "error", err)
				}
			}

			if _, statErr := os.Stat(opts.Config); statErr == nil {
				if err := configWatcher.Start(ctx); err != nil {
					logger.Warn("Failed to watch config file", "path", opts.Config, "error", err)
				}
			}

			go notifier.Watchdog(ctx)
			notifier.Status(fmt.Sprintf("indicators: %s", strings.Join(channelNames(ledManager), ", ")))
			notifier.Ready()

			logger.Info("Starting HTTP server", "port", opts.Port)
			if err := server.Start(opts.Port); err != nil {
				logger.Error("Failed to start HTTP server", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			notifier.Stopping()

			if err := server.Stop(); err != nil {
				logger.Error("Error stopping HTTP server", "error", err)
			}
			_ = configWatcher.Stop()

			// Stop the LED manager first; sources may still publish while they wind down.
			ledManager.Unregister()

			if modemPoller != nil {
				modemPoller.Stop()
			}
			if netMonitor != nil {
				netMonitor.Stop()
			}
			if natsBridge != nil {
				natsBridge.Stop()
			}
			if natsServer != nil {
				natsServer.Stop()
			}
			cancel()
		})
	})

	cli.Root().Use = "netled"
	cli.Root().Short = "Drive network status LEDs from Wi-Fi, Ethernet and cellular state"
	cli.Root().Version = version.Get().Summary()
	cli.Root().SetVersionTemplate("{{.Version}}\n")

	cli.Root().AddCommand(cmd.CreateClassifyCmd())
	cli.Root().AddCommand(cmd.CreatePublishCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())
	cli.Root().AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintln(c.OutOrStdout(), version.Get().Summary())
		},
	})

	cli.Run()
}

func channelNames(m *led.Manager) []string {
	available := m.Available()
	names := make([]string, 0, len(available))
	for _, ch := range available {
		names = append(names, ch.String())
	}
	if len(names) == 0 {
		return []string{"none"}
	}
	return names
}
