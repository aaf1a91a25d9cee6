package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkt.systems/pslog"

	leaseauth "github.com/MrEthical07/leaseauth"
	"github.com/MrEthical07/leaseauth/metrics/export/prometheus"
)

func newLoginCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Create a remote lease and wait for it to be approved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, v)
		},
	}
	flags := cmd.Flags()
	flags.Duration("poll-interval", 0, "status poll interval (0 uses the configured default)")
	flags.Duration("timeout", 0, "give up after this long (0 uses the configured default)")
	flags.String("qr-out", "", "write the redirect QR code PNG to this file")
	flags.String("metrics-listen", "", "serve Prometheus metrics on this address while waiting")
	bindFlags(v, flags)
	return cmd
}

func runLogin(cmd *cobra.Command, v *viper.Viper) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := newLogger(cmd, v)

	cfg, err := engineConfig(v)
	if err != nil {
		return err
	}
	if v.GetString("metrics-listen") != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.EnableLatencyHistograms = true
	}

	builder := leaseauth.New().WithConfig(cfg).WithLogger(logger)
	if addr := strings.TrimSpace(v.GetString("redis-addr")); addr != "" {
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		defer rdb.Close()
		builder = builder.WithRedis(rdb)
	}
	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	if listen := v.GetString("metrics-listen"); listen != "" {
		stop, err := serveMetrics(listen, engine, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	qrOut := v.GetString("qr-out")
	done := make(chan leaseauth.LeaseResult, 1)
	h, err := engine.StartLeaseProcess(ctx, leaseauth.LeaseOptions{
		PollInterval: v.GetDuration("poll-interval"),
		Timeout:      v.GetDuration("timeout"),
		OnLeaseIntent: func(d leaseauth.LeaseDescriptor) {
			fmt.Fprintf(out, "code: %s\n", d.Code)
			if d.RedirectURL != "" {
				fmt.Fprintf(out, "open: %s\n", d.RedirectURL)
			} else if d.DisplayURL != "" {
				fmt.Fprintf(out, "open: %s and enter the code\n", d.DisplayURL)
			}
			if qrOut != "" && len(d.QRCode) > 0 {
				if err := os.WriteFile(qrOut, d.QRCode, 0o644); err != nil {
					logger.Warn("write qr code", "path", qrOut, "error", err)
				}
			}
		},
		OnProgress: func(u leaseauth.ProgressUpdate) {
			logger.Info("waiting for approval", "status", u.Status.String())
		},
		OnComplete: func(res leaseauth.LeaseResult) {
			done <- res
		},
	})
	if err != nil {
		return err
	}

	var res leaseauth.LeaseResult
	select {
	case res = <-done:
	case <-ctx.Done():
		engine.Cancel(h)
		res = <-done
	}

	if res.Status != leaseauth.LeaseStatusAuthorized {
		return fmt.Errorf("login %s: %w", res.Status, res.Err)
	}
	creds := res.Credentials
	fmt.Fprintf(out, "authorized: %s", creds.PlayerIdentifier)
	if creds.PlayerName != "" {
		fmt.Fprintf(out, " (%s)", creds.PlayerName)
	}
	fmt.Fprintln(out)
	return nil
}

func serveMetrics(listen string, engine *leaseauth.Engine, logger pslog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", listen, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewPrometheusExporter(engine).Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()
	logger.Info("metrics enabled", "listen", ln.Addr().String())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
