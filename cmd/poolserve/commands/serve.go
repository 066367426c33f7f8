package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/poolserve/internal/admin"
	"github.com/utkarsh5026/poolserve/internal/config"
	"github.com/utkarsh5026/poolserve/internal/logging"
	"github.com/utkarsh5026/poolserve/internal/metrics"
	"github.com/utkarsh5026/poolserve/internal/server"
	"github.com/utkarsh5026/poolserve/pool"
)

func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept connections and serve them from the worker pool",
		Example: `  poolserve serve --pool-size 4 --root ./public
  poolserve serve --config poolserve.yaml --admin
  POOLSERVE_SERVER_MAX_CONNECTIONS=2 poolserve serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.DefaultSources(configFile, cmd.Flags())...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "configuration file path (YAML)")
	config.RegisterFlags(cmd.Flags())

	return cmd
}

// poolOptions maps the pool section of the configuration to pool options.
func poolOptions(cfg config.PoolConfig, log zerolog.Logger, m *metrics.Collector) []pool.Option {
	opts := []pool.Option{pool.WithLogger(log)}
	if m != nil {
		opts = append(opts, m.PoolOptions()...)
	}
	if cfg.OSThreads || cfg.PinCPU {
		opts = append(opts, pool.WithOSThreads(cfg.PinCPU))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, pool.WithRateLimit(cfg.RateLimit, max(cfg.RateBurst, 1)))
	}
	return opts
}

func runServe(ctx context.Context, cfg config.Config, out, errOut io.Writer) error {
	logger, err := logging.New(cfg.Log, errOut)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	p, err := pool.Build(cfg.Pool.Size, poolOptions(cfg.Pool, logging.Component(logger, "pool"), m)...)
	if err != nil {
		return fmt.Errorf("creating pool: %w", err)
	}
	m.WatchPool(p)

	srvOpts := server.OptionsFromConfig(cfg.Server)
	srvOpts.Logger = logging.Component(logger, "server")
	srvOpts.Metrics = m
	srv := server.New(p, srvOpts)

	_, _ = color.New(color.FgGreen, color.Bold).Fprintf(out, "poolserve listening on %s with %d workers\n",
		cfg.Server.Addr, p.Size())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return srv.ListenAndServe(gctx, cfg.Server.Addr)
	})
	if cfg.Admin.Enabled {
		adm := admin.NewServer(p, reg, logging.Component(logger, "admin"))
		g.Go(func() error {
			return adm.ListenAndServe(gctx, cfg.Admin.Addr)
		})
	}

	runErr := g.Wait()

	logger.Info().Msg("Shutting down.")
	if err := p.Shutdown(cfg.Pool.ShutdownTimeout); err != nil {
		if errors.Is(err, pool.ErrShutdownTimeout) {
			logger.Warn().Dur("timeout", cfg.Pool.ShutdownTimeout).Msg("workers still busy; giving up waiting")
		}
		return errors.Join(runErr, fmt.Errorf("shutting down pool: %w", err))
	}
	return runErr
}
