package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Mendozape/PayComMobile/config"
	"github.com/Mendozape/PayComMobile/internal/data"
	"github.com/Mendozape/PayComMobile/internal/observability/statsd"
	"github.com/Mendozape/PayComMobile/internal/service"
)

// App holds the wired services and the resources they keep open.
type App struct {
	Config    config.AppConfig
	Logger    *slog.Logger
	Sessions  *service.SessionService
	Resources *service.ResourceService
	Payments  *service.PaymentService
	Metrics   *statsd.Client
	StoreKind config.StoreKind

	store *SessionStoreHandle
}

// AppDeps groups the inputs of NewApp. Clock defaults to wall time.
type AppDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
	Clock  data.TimeProvider
}

// NewApp builds every service from configuration.
func NewApp(ctx context.Context, deps AppDeps) (*App, error) {
	if err := ValidateConfig(deps.Config); err != nil {
		return nil, err
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = data.RealTimeProvider{}
	}

	app := &App{Config: *cfg, Logger: logger, Metrics: buildMetrics(logger, cfg.Observability)}

	backends, err := BuildBackends(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("build backend: %w", err), app.Close())
	}

	handle, err := BuildSessionStore(ctx, StoreDeps{Config: cfg, Logger: logger, Clock: clock})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("build session store: %w", err), app.Close())
	}
	app.store, app.StoreKind = handle, handle.Kind

	if err := app.wireServices(backends, handle, clock); err != nil {
		return nil, errors.Join(err, app.Close())
	}
	return app, nil
}

func (a *App) wireServices(backends Backends, handle *SessionStoreHandle, clock data.TimeProvider) error {
	var sink statsd.Sink
	if a.Metrics != nil {
		sink = a.Metrics
	}

	sessions, err := service.NewSessionService(service.SessionServiceOptions{
		Store:          handle.Store,
		Backend:        backends.Auth,
		Photos:         service.PhotoURLBuilder{Origin: backends.Origin},
		ProfileTimeout: a.Config.API.ProfileTimeout,
		Logger:         a.Logger,
		Metrics:        sink,
		Clock:          clock,
	})
	if err != nil {
		return fmt.Errorf("session service: %w", err)
	}

	resources, err := service.NewResourceService(service.ResourceServiceOptions{
		Backend:  backends.Resources,
		Sessions: sessions,
		Logger:   a.Logger,
		Metrics:  sink,
	})
	if err != nil {
		return fmt.Errorf("resource service: %w", err)
	}

	payments, err := service.NewPaymentService(service.PaymentServiceOptions{
		Backend:  backends.Resources,
		Sessions: sessions,
		Clock:    clock,
		Logger:   a.Logger,
		Metrics:  sink,
	})
	if err != nil {
		return fmt.Errorf("payment service: %w", err)
	}

	a.Sessions, a.Resources, a.Payments = sessions, resources, payments
	return nil
}

// Close releases the store connections and the metrics socket.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.Metrics != nil {
		errs = append(errs, a.Metrics.Close())
	}
	return errors.Join(errs...)
}

// buildMetrics returns nil when metrics are disabled or the client fails to
// start; services treat a nil sink as silent.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityConfig) *statsd.Client {
	if !cfg.Metrics.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}
