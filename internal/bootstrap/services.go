package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/target/mmk-unsubscribe/config"
	redislock "github.com/target/mmk-unsubscribe/internal/adapters/redis"
	"github.com/target/mmk-unsubscribe/internal/core"
	"github.com/target/mmk-unsubscribe/internal/data"
	"github.com/target/mmk-unsubscribe/internal/observability/metrics"
	"github.com/target/mmk-unsubscribe/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs         *service.JobService
	Orchestrator *service.Orchestrator
	Resumer      *service.ResumerService
	Store        *data.JobStore
	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	Metrics  *metrics.Recorder
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	// Strategies overrides the strategies built from Config; used by tests.
	Strategies *service.Strategies
}

// buildMetrics creates the Prometheus registry and recorder when enabled.
func buildMetrics(cfg config.ObservabilityMetricsConfig) (*prometheus.Registry, *metrics.Recorder, error) {
	if !cfg.IsEnabled() {
		return nil, nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("register metrics: %w", err)
	}
	return reg, rec, nil
}

// buildRunLock picks the Redis lock when a client is available.
//
//nolint:ireturn // callers only need the core.RunLock port.
func buildRunLock(client redis.UniversalClient, logger *slog.Logger) core.RunLock {
	if client == nil {
		logger.Info("redis disabled; using in-process run lock")
		return &service.LocalRunLock{}
	}
	return redislock.NewRunLock(client, logger)
}

// NewServices builds the job store, strategies, orchestrator and job services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg, rec, err := buildMetrics(cfg.Observability.Metrics)
	if err != nil {
		return ServiceContainer{}, err
	}

	var strategies service.Strategies
	if deps.Strategies != nil {
		strategies = *deps.Strategies
	} else {
		strategies, err = BuildStrategies(StrategyConfig{
			Unsubscribe: cfg.Unsubscribe,
			Gmail:       cfg.Gmail,
			Logger:      logger,
		})
		if err != nil {
			return ServiceContainer{}, err
		}
	}

	store := data.NewJobStore(deps.DB, data.StoreConfig{Logger: logger})
	orch, err := service.NewOrchestrator(service.OrchestratorOptions{
		Store:               store,
		Strategies:          strategies,
		OneClickConcurrency: cfg.Unsubscribe.OneClickConcurrency,
		BrowserConcurrency:  cfg.Unsubscribe.BrowserConcurrency,
		Lock:                buildRunLock(deps.RedisClient, logger),
		LockTTL:             cfg.Redis.LockTTL,
		Metrics:             rec,
		Logger:              logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create orchestrator: %w", err)
	}

	jobs, err := service.NewJobService(service.JobServiceOptions{
		Store:   store,
		Runner:  orch,
		Metrics: rec,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create job service: %w", err)
	}

	resumer, err := service.NewResumerService(service.ResumerServiceOptions{Jobs: jobs, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create resumer: %w", err)
	}

	return ServiceContainer{
		Jobs:         jobs,
		Orchestrator: orch,
		Resumer:      resumer,
		Store:        store,
		Registry:     reg,
		Metrics:      rec,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
const shutdownWaitTimeout = 15 * time.Second

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error",
					"service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return done
}

func startBackgroundServices(
	ctx context.Context,
	deps *serviceStartupDeps,
	services []backgroundService,
) []backgroundServiceHandle {
	handles := make([]backgroundServiceHandle, 0, len(services))
	for _, svc := range services {
		if done := launchBackground(ctx, deps, svc); done != nil {
			handles = append(handles, backgroundServiceHandle{mode: svc.mode, name: svc.name, done: done})
		}
	}
	return handles
}

func newResumerBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeResumer,
		name: "resumer",
		start: func(ctx context.Context) error {
			if deps.cfg.Services.Resumer == nil {
				return errors.New("resumer service not configured")
			}
			return deps.cfg.Services.Resumer.Run(ctx)
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newResumerBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

func startServices(ctx context.Context, deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(ctx, deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	result := startServices(serviceCtx, &serviceStartupDeps{
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	return waitForShutdown(shutdownConfig{
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		jobService:  cfg.Services.Jobs,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	jobService  *service.JobService
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop stops the HTTP server, then waits for background services and
// in-flight job runs. A run cut short here is picked up by the next resumer.
func gracefulStop(cfg shutdownConfig) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()

	if cfg.httpServer != nil {
		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	if cfg.jobService != nil {
		if err := cfg.jobService.Wait(shutdownCtx); err != nil {
			cfg.logger.Warn("job runs still in flight at shutdown", "error", err)
		}
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
