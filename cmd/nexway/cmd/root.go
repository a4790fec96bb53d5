// Package cmd implements the nexway CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Shuvo786/Nexway-API/internal/config"
	"github.com/Shuvo786/Nexway-API/internal/nexway"
	"github.com/Shuvo786/Nexway-API/internal/telemetry"
	"github.com/Shuvo786/Nexway-API/pkg/logger"
)

// Version is set at build time via ldflags.
var Version = "dev"

// app carries per-invocation state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg      *config.Config
	log      *slog.Logger
	client   *nexway.Client
	shutdown telemetry.ShutdownFunc
}

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "nexway",
		Short: "Command-line client for the Nexway Connect API",
		Long: "nexway calls the Nexway Connect partner API: stock and cross-sell\n" +
			"lookups, order and subscription management, catalog queries and the\n" +
			"XML product feed. Credentials come from a config file, flags, or\n" +
			"NEXWAY_* environment variables.",
		SilenceUsage: true,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.shutdown == nil {
				return nil
			}
			return a.shutdown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.String("client-secret", "", "partner client secret for the token endpoint")
	flags.String("realm", "", "partner realm name")
	flags.String("env", "", "environment: staging or production")
	flags.String("base-url", "", "override token and API base URL (e.g. a mock server)")
	flags.String("feed-url", "", "override product feed base URL")
	flags.String("secret", "", "partner API secret sent with each call")
	flags.Duration("timeout", 0, "HTTP timeout (default 30s)")
	flags.Bool("insecure-skip-verify", false, "disable TLS verification (legacy staging only)")
	flags.String("output", "pretty", "output format (pretty, json)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.String("otlp-endpoint", "", "OTLP gRPC collector host:port for traces")

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		cobra.CheckErr(a.v.BindPFlag(f.Name, f))
	})

	a.v.SetEnvPrefix("NEXWAY")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		tokenCmd(a),
		stockCmd(a),
		crossUpSellCmd(a),
		ordersCmd(a),
		subscriptionsCmd(a),
		catalogCmd(a),
		feedCmd(a),
		versionCmd(),
	)

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

// loadConfig merges the config file (if any) with flags and environment.
func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	var cfg *config.Config
	if a.cfgFile != "" {
		loaded, err := config.Load(a.cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Defaults()
	}

	a.overlay(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	return cfg, nil
}

func (a *app) overlay(cfg *config.Config) {
	setString := func(key string, dst *string) {
		if a.v.IsSet(key) && a.v.GetString(key) != "" {
			*dst = a.v.GetString(key)
		}
	}

	setString("client-secret", &cfg.Nexway.ClientSecret)
	setString("realm", &cfg.Nexway.RealmName)
	setString("env", &cfg.Nexway.Environment)
	setString("base-url", &cfg.Nexway.BaseURL)
	setString("feed-url", &cfg.Nexway.FeedURL)
	setString("secret", &cfg.Nexway.Secret)
	setString("log-level", &cfg.Logging.Level)
	setString("log-format", &cfg.Logging.Format)
	setString("otlp-endpoint", &cfg.Tracing.Endpoint)

	if a.v.IsSet("timeout") && a.v.GetDuration("timeout") > 0 {
		cfg.Nexway.Timeout = a.v.GetDuration("timeout")
	}
	if a.v.IsSet("insecure-skip-verify") && a.v.GetBool("insecure-skip-verify") {
		cfg.Nexway.InsecureSkipVerify = true
	}
}

// nexwayClient builds the logger, tracing and API client on first use.
func (a *app) nexwayClient(cmd *cobra.Command) (*nexway.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	a.log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	shutdown, err := telemetry.Setup(cmd.Context(), telemetry.Config{
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRate:     cfg.Tracing.SampleRate,
		ServiceName:    "nexway-cli",
		ServiceVersion: Version,
		Environment:    cfg.Nexway.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}
	a.shutdown = shutdown

	opts, err := clientOptions(cfg, a.log)
	if err != nil {
		return nil, err
	}
	client, err := nexway.New(cfg.Nexway.ClientSecret, cfg.Nexway.RealmName, opts...)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func clientOptions(cfg *config.Config, log *slog.Logger) ([]nexway.Option, error) {
	env, ok := nexway.ParseEnvironment(cfg.Nexway.Environment)
	if !ok {
		return nil, fmt.Errorf("unknown environment %q", cfg.Nexway.Environment)
	}

	opts := []nexway.Option{
		nexway.WithEnvironment(env),
		nexway.WithTimeout(cfg.Nexway.Timeout),
		nexway.WithInsecureSkipVerify(cfg.Nexway.InsecureSkipVerify),
		nexway.WithLogger(log),
	}

	if base := strings.TrimRight(cfg.Nexway.BaseURL, "/"); base != "" {
		feed := cfg.Nexway.FeedURL
		if feed == "" {
			feed = base
		}
		opts = append(opts, nexway.WithEndpoints(nexway.Endpoints{
			TokenURL: base,
			HostURL:  base,
			FeedURL:  feed,
		}))
	} else if cfg.Nexway.FeedURL != "" {
		e := nexway.EndpointsFor(env)
		e.FeedURL = cfg.Nexway.FeedURL
		opts = append(opts, nexway.WithEndpoints(e))
	}

	return opts, nil
}

// secret returns the per-call API secret from flags, environment or config.
func (a *app) secret() string {
	if s := a.v.GetString("secret"); s != "" {
		return s
	}
	if a.cfg != nil {
		return a.cfg.Nexway.Secret
	}
	return ""
}

func (a *app) output() string {
	return a.v.GetString("output")
}
