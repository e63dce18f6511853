package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"projecthub/internal/platform/httpserver"
)

const (
	shutdownTimeout      = 10 * time.Second
	revocationSweepEvery = time.Minute
)

// NewServeCommand runs the HTTP API and the invitation mail worker.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notification worker",
		Long: `Run the HTTP API and the invitation mail outbox worker in one process.

The schema is applied on startup. SIGINT or SIGTERM stops both; in-flight
requests get a short drain window before the database pool and the Redis
client are closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(log)

	srv := httpserver.New(cfg.Server, a.router, log).WithDrain(shutdownTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting projecthub", "addr", cfg.Server.Addr, "environment", cfg.Server.Environment)
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return ignoreCanceled(a.worker.Run(gctx))
	})
	if a.memTRL != nil {
		g.Go(func() error {
			return ignoreCanceled(a.memTRL.StartCleanup(gctx, revocationSweepEvery))
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("projecthub stopped")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
