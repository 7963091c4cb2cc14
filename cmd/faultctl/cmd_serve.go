// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/faultkit/services/faultinject/config"
	"github.com/AleutianAI/faultkit/services/faultinject/diagnostics"
	"github.com/AleutianAI/faultkit/services/faultinject/handlers"
	"github.com/AleutianAI/faultkit/services/faultinject/registry"
	"github.com/AleutianAI/faultkit/services/faultinject/telemetry"
)

// =============================================================================
// CONSTANTS AND TYPES
// =============================================================================

const (
	defaultAddr            = ":8088"
	defaultShutdownTimeout = 10 * time.Second
	serviceName            = "faultkit"
)

// serveFlags holds the flags of the serve command.
type serveFlags struct {
	addr            string
	plan            string
	profile         string
	watch           bool
	touchEnv        bool
	maxAuditBatch   int
	shutdownTimeout time.Duration
}

// server is the assembled admin API with everything it owns.
type server struct {
	http              *http.Server
	reg               *registry.Registry
	watcher           *config.Watcher
	logger            *slog.Logger
	shutdownTelemetry func(context.Context) error
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

func newServeCmd(a *app) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fault-injection admin API",
		Long: `Run the admin HTTP API over a fault registry.

The registry starts empty, or from --profile, or from --plan (which also
defaults to $` + config.EnvPlan + `). With --watch the plan file is re-applied
whenever it changes. Prometheus metrics are served on /metrics.

Examples:
  faultctl serve
  faultctl serve --addr 127.0.0.1:9000 --profile map-outage
  faultctl serve --plan faults.yaml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := newServer(ctx, a, f)
			if err != nil {
				return err
			}
			return s.run(ctx, f.shutdownTimeout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.addr, "addr", defaultAddr, "Listen address")
	flags.StringVar(&f.plan, "plan", os.Getenv(config.EnvPlan), "Plan file applied at start (YAML or TOML)")
	flags.StringVar(&f.profile, "profile", "", "Built-in profile applied at start")
	flags.BoolVar(&f.watch, "watch", false, "Re-apply the plan file when it changes")
	flags.BoolVar(&f.touchEnv, "touch-env", false,
		"Let environment faults unset variables of this process")
	flags.IntVar(&f.maxAuditBatch, "max-audit-batch", handlers.DefaultMaxAuditBatch,
		"Largest batch accepted by POST /v1/errors/audit")
	flags.DurationVar(&f.shutdownTimeout, "shutdown-timeout", defaultShutdownTimeout,
		"Grace period for in-flight requests on shutdown")
	cmd.MarkFlagsMutuallyExclusive("plan", "profile")
	return cmd
}

// =============================================================================
// SERVER ASSEMBLY
// =============================================================================

// newServer loads the startup plan, initializes telemetry and builds the
// router. Nothing listens until run is called.
func newServer(ctx context.Context, a *app, f *serveFlags) (*server, error) {
	if f.watch && f.plan == "" {
		return nil, errors.New("--watch requires --plan")
	}

	var plan *config.Plan
	switch {
	case f.plan != "":
		p, err := config.LoadPlan(ctx, f.plan)
		if err != nil {
			return nil, err
		}
		plan = p
	case f.profile != "":
		p, err := config.Profile(f.profile)
		if err != nil {
			return nil, err
		}
		plan = p
	}

	level, logJSON := "info", a.logJSON
	if plan != nil {
		if plan.Logging.Level != "" {
			level = plan.Logging.Level
		}
		logJSON = logJSON || plan.Logging.JSON
	}
	if err := a.setupLogging(level, logJSON); err != nil {
		return nil, err
	}
	logger := a.logger.Slog().With(slog.String("component", "server"))

	tcfg := telemetryConfig(plan)
	shutdownTelemetry, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	metrics, err := telemetry.NewMetrics(otel.Meter(serviceName))
	if err != nil {
		_ = shutdownTelemetry(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	env := registry.Environment(registry.NoEnvironment{})
	if f.touchEnv {
		env = registry.ProcessEnvironment{}
	}
	reg := registry.New(
		registry.WithLogger(a.logger.Slog()),
		registry.WithEnvironment(env),
		registry.WithRecorder(metrics),
	)
	factory := diagnostics.NewFactory(diagnostics.WithRecorder(metrics))

	if plan != nil {
		if err := plan.Apply(ctx, reg); err != nil {
			_ = shutdownTelemetry(ctx)
			return nil, err
		}
		logger.Info("startup plan applied", "plan", plan.Name, "faults", len(plan.Faults))
	}

	s := &server{
		reg:               reg,
		logger:            logger,
		shutdownTelemetry: shutdownTelemetry,
	}
	if f.watch {
		s.watcher, err = config.NewWatcher(f.plan, reg, config.WithWatcherLogger(a.logger.Slog()))
		if err != nil {
			_ = shutdownTelemetry(ctx)
			return nil, err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	h := handlers.NewHandlers(reg, factory,
		handlers.WithLogger(a.logger.Slog()),
		handlers.WithAuditRecorder(metrics),
		handlers.WithMaxAuditBatch(f.maxAuditBatch),
	)
	s.http = &http.Server{
		Addr:              f.addr,
		Handler:           handlers.NewRouter(h, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// telemetryConfig starts from the environment defaults and applies the
// plan's telemetry settings on top.
func telemetryConfig(plan *config.Plan) telemetry.Config {
	cfg := telemetry.DefaultConfig()
	if plan == nil {
		return cfg
	}
	if t := plan.Telemetry; t.TracesExporter != "" {
		cfg.TraceExporter = t.TracesExporter
	}
	if t := plan.Telemetry; t.MetricsExporter != "" {
		cfg.MetricExporter = t.MetricsExporter
	}
	if t := plan.Telemetry; t.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = t.OTLPEndpoint
	}
	return cfg
}

// =============================================================================
// SERVER LIFECYCLE
// =============================================================================

// run serves until ctx is cancelled, then drains requests for up to timeout
// and flushes telemetry.
func (s *server) run(ctx context.Context, timeout time.Duration) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		_ = s.shutdownTelemetry(context.Background())
		return err
	}
	return s.serve(ctx, ln, timeout)
}

func (s *server) serve(ctx context.Context, ln net.Listener, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("admin API listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving admin API: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("shutting down admin API")
		return s.http.Shutdown(shutdownCtx)
	})

	if s.watcher != nil {
		g.Go(func() error {
			defer s.watcher.Close()
			return s.watcher.Run(gctx)
		})
	}

	err := g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if terr := s.shutdownTelemetry(flushCtx); terr != nil {
		s.logger.Warn("telemetry shutdown failed", "error", terr)
	}
	return err
}
