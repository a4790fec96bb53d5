// Package main runs an in-memory mock of the Nexway Connect API for local
// development. Point the nexway CLI at it with --base-url.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shuvo786/Nexway-API/internal/config"
	"github.com/Shuvo786/Nexway-API/internal/mockserver"
	"github.com/Shuvo786/Nexway-API/pkg/logger"
)

func main() {
	if err := newRootCmd(serve).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd resolves the configuration from defaults, the optional config
// file and flags, then hands it to run.
func newRootCmd(run func(*config.Config) error) *cobra.Command {
	var (
		cfgFile string
		opts    config.MockConfig
		logLvl  string
		logFmt  string
	)

	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "nexway-mock",
		Short: "Serve a mock Nexway Connect API",
		Long: "nexway-mock serves the token, connect and catalog feed endpoints from\n" +
			"memory. Orders and tokens are lost on restart. Settings come from the\n" +
			"mock section of --config, overridden by flags.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := defaults
			if cfgFile != "" {
				loaded, err := config.Load(cfgFile)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				cfg = loaded
			}

			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Mock.Host = opts.Host
			}
			if flags.Changed("port") {
				cfg.Mock.Port = opts.Port
			}
			if flags.Changed("client-secret") {
				cfg.Mock.ClientSecret = opts.ClientSecret
			}
			if flags.Changed("realm") {
				cfg.Mock.RealmName = opts.RealmName
			}
			if flags.Changed("secret") {
				cfg.Mock.Secret = opts.Secret
			}
			if flags.Changed("rate-limit") {
				cfg.Mock.RateLimit = opts.RateLimit
			}
			if flags.Changed("burst") {
				cfg.Mock.Burst = opts.Burst
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLvl
			}
			if flags.Changed("log-format") {
				cfg.Logging.Format = logFmt
			}

			return run(cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (YAML)")
	f.StringVar(&opts.Host, "host", defaults.Mock.Host, "listen host")
	f.IntVar(&opts.Port, "port", defaults.Mock.Port, "listen port")
	f.StringVar(&opts.ClientSecret, "client-secret", defaults.Mock.ClientSecret, "accepted client secret")
	f.StringVar(&opts.RealmName, "realm", defaults.Mock.RealmName, "accepted realm name")
	f.StringVar(&opts.Secret, "secret", defaults.Mock.Secret, "accepted partner API secret")
	f.Float64Var(&opts.RateLimit, "rate-limit", 0, "requests per second before answering 429 (0 disables)")
	f.IntVar(&opts.Burst, "burst", defaults.Mock.Burst, "rate limit burst size")
	f.StringVar(&logLvl, "log-level", defaults.Logging.Level, "log level (debug, info, warn, error)")
	f.StringVar(&logFmt, "log-format", defaults.Logging.Format, "log format (text, json)")

	return cmd
}

func serve(cfg *config.Config) error {
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	srv := mockserver.New(mockserver.Config{
		ClientSecret: cfg.Mock.ClientSecret,
		RealmName:    cfg.Mock.RealmName,
		Secret:       cfg.Mock.Secret,
		RateLimit:    cfg.Mock.RateLimit,
		Burst:        cfg.Mock.Burst,
	}, log)

	e := srv.Echo()
	e.Server.ReadTimeout = cfg.Mock.ReadTimeout
	e.Server.WriteTimeout = cfg.Mock.WriteTimeout

	addr := cfg.Mock.Addr()
	log.Info("starting mock nexway server",
		"addr", addr,
		"realm", cfg.Mock.RealmName,
		"client_secret", cfg.Mock.ClientSecret,
		"rate_limit", cfg.Mock.RateLimit,
	)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
