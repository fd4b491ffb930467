// Package serve implements the command that runs the HTTP API.
package serve

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	api "github.com/wildwatch/sightings/internal/api/v1"
	"github.com/wildwatch/sightings/internal/config"
	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/httpclient"
	"github.com/wildwatch/sightings/internal/httpserver"
	"github.com/wildwatch/sightings/internal/legacy"
	"github.com/wildwatch/sightings/internal/logger"
	"github.com/wildwatch/sightings/internal/observability"
	"github.com/wildwatch/sightings/internal/sighting"
	"github.com/wildwatch/sightings/internal/species"
)

const poolStatsInterval = 15 * time.Second

// Command creates the serve command
func Command(ctx *config.Context) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sightings HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(runCtx, ctx, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply database migrations before serving")

	return cmd
}

func run(ctx context.Context, app *config.Context, migrate bool) error {
	settings := app.Settings
	log := app.Logger().Module("serve")

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}
	errors.AddErrorHook(m.Errors.Hook())
	defer errors.ClearErrorHooks()

	store, err := app.OpenStore(ctx, m.Datastore)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close database", logger.Error(err))
		}
	}()

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	var (
		mirror sighting.Mirror
		opts   []api.Option
	)
	opts = append(opts, api.WithHealthCheck(store, app.Build))

	if settings.Legacy.Enabled {
		hc := httpclient.New(&httpclient.Config{
			DefaultTimeout: settings.Legacy.Timeout,
			UserAgent:      "sightings/" + app.Build.Version(),
		})
		defer hc.Close()
		m.InstrumentClient(hc, app.Logger())

		client, err := legacy.New(&settings.Legacy, hc, app.Logger())
		if err != nil {
			return err
		}
		mirror = client
		opts = append(opts, api.WithLegacyProxy(client))
		log.Info("legacy mirror enabled", logger.String("uri", settings.Legacy.URI))
	} else {
		log.Info("legacy mirror disabled")
	}

	svc := sighting.NewService(
		species.NewResolver(store.Species()),
		store.Sightings(),
		mirror,
		m.Sightings,
		app.Logger(),
	)

	server := httpserver.New(settings, app.Logger(), m.HTTP)
	api.New(server.Echo, svc, app.Logger(), opts...)
	if settings.Telemetry.Enabled {
		server.Mount(settings.Telemetry.Path, m.Handler())
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		<-gctx.Done()
		// the parent context is already cancelled here
		return server.Shutdown(context.WithoutCancel(gctx))
	})

	g.Go(func() error {
		return m.CollectPoolStats(gctx, poolStatsInterval, store.Stats)
	})

	log.Info("sightings service started",
		logger.String("version", app.Build.Version()),
		logger.String("address", settings.ListenAddress()),
		logger.Bool("telemetry", settings.Telemetry.Enabled))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("sightings service stopped")
	return nil
}
