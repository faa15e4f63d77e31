// Command fingerprintd runs the passive TLS/HTTP2 fingerprinting
// server: it terminates TLS itself so it can observe the raw
// ClientHello and HTTP/2 frame log for every connection, then serves
// the resulting fingerprint report over the same connection.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"github.com/picohz/fingerprintd/internal/config"
	"github.com/picohz/fingerprintd/internal/httpd"
	"github.com/picohz/fingerprintd/internal/obs"
	"github.com/picohz/fingerprintd/internal/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "fingerprintd",
		Short: "Passive TLS/HTTP2 fingerprinting endpoint",
	}
	root.AddCommand(newServeCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var flags config.Flags
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fingerprinting server in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flags, configFile)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&flags.Addr, "addr", "", "address to listen on for TLS connections (default :8443)")
	fs.StringVar(&flags.MetricsAddr, "metrics-addr", "", "address to serve /metrics on (default :9090)")
	fs.StringVar(&flags.CertFile, "cert", "", "TLS certificate PEM file")
	fs.StringVar(&flags.KeyFile, "key", "", "TLS private key PEM file")
	fs.StringVar(&flags.LogFile, "log-file", "", "optional rotating log file, in addition to stderr")
	fs.BoolVar(&flags.Development, "development", false, "use a human-readable console log encoder")
	fs.StringVar(&configFile, "config", "", "optional TOML config file; flags win over its values")

	return cmd
}

func runServe(flags config.Flags, configFile string) error {
	cfg, err := config.Load(config.Default(), configFile)
	if err != nil {
		return err
	}
	cfg = config.ApplyFlags(cfg, flags)

	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return fmt.Errorf("serve: --cert and --key are required")
	}

	logger, err := obs.NewLogger(obs.Options{Development: cfg.Development, LogFile: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	undoMaxProcs, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof))
	defer undoMaxProcs()
	if err != nil {
		logger.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	_, err = memlimit.SetGoMemLimitWithOpts(
		memlimit.WithLogger(slog.New(zapslog.NewHandler(logger.Core()))),
		memlimit.WithProvider(memlimit.ApplyFallback(memlimit.FromCgroup, memlimit.FromSystem)),
	)
	if err != nil {
		logger.Warn("failed to set GOMEMLIMIT", zap.Error(err))
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return fmt.Errorf("loading TLS certificate: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr, err)
	}

	srv := &server.Server{
		Listener: listener,
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{"h2", "http/1.1"},
			MinVersion:   tls.VersionTLS12,
			MaxVersion:   tls.VersionTLS13,
		},
		Handler: httpd.Handler(),
		Logger:  logger,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: httpd.MetricsHandler()}
	go func() {
		logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		_ = metricsSrv.Close()
	}()

	logger.Info("serving", zap.String("addr", cfg.Addr))
	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
