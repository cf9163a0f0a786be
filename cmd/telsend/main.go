package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/telsend/internal/adapters/log"
	"github.com/bft-labs/telsend/internal/cliconfig"
	"github.com/bft-labs/telsend/pkg/telsend"
	"github.com/bft-labs/telsend/plugins/configwatcher"
)

const helpDescription = `
Send a telemetry payload with the first transport the host supports.

Transports are tried in preference order (fetch, xhr, beacon by default).
A beacon that cannot be queued falls back to one xhr request. The completion
status is printed on stdout: 200 for success, 400 for network failure, 500
for timeout, otherwise the server status.
`

var exampleUsage = strings.TrimSpace(`
  telsend --url https://collector.example.com/v1/track --data '{"event":"page_view"}'
  telsend --url https://collector.example.com/v1/track --file batch.json --mode unload --transport beacon,xhr
  telsend --config $HOME/.telsend/config.toml --file batch.json --interval 10s --watch --metrics-addr :9100
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// exitError carries a non-zero completion status out of RunE.
type exitError struct {
	status int
}

func (e exitError) Error() string {
	return fmt.Sprintf("send completed with status %d", e.status)
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var interval time.Duration

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "telsend",
		Short:         "Send telemetry payloads over beacon, fetch, xhr or xdomain",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.telsend/config.toml), then apply flag overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (TELSEND_*)
			// These override file config but are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
				log = log.Level(lvl)
			}
			log.Debug().Interface("config", cfg).Msg("configuration")

			return run(cmd.Context(), cfg, changed, cfgFile, interval, log)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.telsend/config.toml)")
	root.Flags().StringVar(&cfg.URL, "url", cfg.URL, "endpoint URL")
	root.Flags().StringVar(&cfg.Data, "data", cfg.Data, "payload body")
	root.Flags().StringVar(&cfg.File, "file", cfg.File, "read payload body from file")
	root.Flags().StringArrayVar(&cfg.Headers, "header", cfg.Headers, "request header as key=value (repeatable)")

	root.Flags().StringSliceVar(&cfg.Transports, "transport", cfg.Transports, "transport preference order")
	root.Flags().StringVar(&cfg.Mode, "mode", cfg.Mode, "send mode: async, sync or unload")
	root.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout for xhr (0 for none)")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "HTTP client timeout")
	root.Flags().IntVar(&cfg.KeepAliveQuota, "keepalive-quota", cfg.KeepAliveQuota, "aggregate keepalive byte budget")
	root.Flags().DurationVar(&cfg.UnloadGrace, "unload-grace", cfg.UnloadGrace, "how long unload sends wait for a response")
	root.Flags().DurationVar(&interval, "interval", 0, "resend the payload at this interval until interrupted")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error or off")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload the [transport] table when the config file changes (flags and env still win)")

	root.Flags().BoolVar(&cfg.DisableXhr, "disable-xhr", cfg.DisableXhr, "never use xhr or xdomain")
	root.Flags().BoolVar(&cfg.DisableBeacon, "disable-beacon", cfg.DisableBeacon, "never use beacon for async sends")
	root.Flags().BoolVar(&cfg.DisableBeaconSync, "disable-beacon-sync", cfg.DisableBeaconSync, "never use beacon for sync or unload sends")
	root.Flags().BoolVar(&cfg.DisableFetchKeepAlive, "disable-fetch-keepalive", cfg.DisableFetchKeepAlive, "never use keepalive fetch for sync sends")
	root.Flags().BoolVar(&cfg.DisableCredentials, "disable-credentials", cfg.DisableCredentials, "do not attach credentials")
	root.Flags().BoolVar(&cfg.EnableCompletionPromise, "completion-promise", cfg.EnableCompletionPromise, "wait on completion futures for async sends")
	root.Flags().BoolVar(&cfg.ManagedEndpoint, "managed-endpoint", cfg.ManagedEndpoint, "endpoint is first-party; attach credentials")

	if err := root.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			os.Exit(1)
		}
		log.Error().Err(err).Msg("telsend")
		os.Exit(1)
	}
}

func run(parent context.Context, cfg cliconfig.Config, changed map[string]bool, cfgFile string, interval time.Duration, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	body, err := cfg.Body()
	if err != nil {
		return err
	}
	headers, err := cfg.HeaderMap()
	if err != nil {
		return err
	}
	transports, err := telsend.ParseTransports(cfg.Transports)
	if err != nil {
		return err
	}
	mode, err := telsend.ParseSendMode(cfg.Mode)
	if err != nil {
		return err
	}

	libLogger, err := logAdapter.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []telsend.Option{
		telsend.WithLogger(libLogger),
		telsend.WithMetrics(reg),
	}
	if cfg.Watch {
		// Flags and TELSEND_* variables keep precedence over reloaded files.
		opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
			Overrides: func(t *telsend.TransportConfig) { cfg.OverrideTransport(t, changed) },
		}))
	}

	client, err := telsend.New(telsend.Config{
		Transports:     transports,
		Transport:      cfg.TransportConfig(),
		HTTPTimeout:    cfg.HTTPTimeout,
		KeepAliveQuota: int64(cfg.KeepAliveQuota),
		UnloadGrace:    cfg.UnloadGrace,
		ConfigPath:     cfgFile,
	}, opts...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("close client")
		}
	}()

	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("start client: %w", err)
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
		defer srv.Close()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
	}

	payload := telsend.Payload{
		URL:     cfg.URL,
		Data:    body,
		Headers: headers,
		Timeout: cfg.Timeout,
	}

	status, err := sendOnce(ctx, client, payload, mode)
	if err != nil {
		return err
	}
	if interval <= 0 {
		if status >= 400 {
			return exitError{status: status}
		}
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("received signal, stopping...")
			return nil
		case <-ticker.C:
			if _, err := sendOnce(ctx, client, payload, mode); err != nil {
				log.Warn().Err(err).Msg("send")
			}
		}
	}
}

// sendOnce sends payload and prints its completion status.
func sendOnce(ctx context.Context, client *telsend.Client, payload telsend.Payload, mode telsend.SendMode) (int, error) {
	done := make(chan int, 1)
	future, err := client.Send(ctx, payload, mode, func(status int, _ map[string]string, body string) {
		fmt.Println(status)
		if body != "" && status >= 400 {
			fmt.Fprintln(os.Stderr, body)
		}
		done <- status
	})
	if err != nil {
		return telsend.StatusNetworkFailure, err
	}

	var status int
	select {
	case status = <-done:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	if future != nil {
		if _, ferr := future.Wait(ctx); ferr != nil {
			return status, ferr
		}
	}
	return status, nil
}
