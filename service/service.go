package service

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/app"
	"github.com/saiset-co/sai-dispatch/config"
	"github.com/saiset-co/sai-dispatch/docs"
	"github.com/saiset-co/sai-dispatch/logger"
	"github.com/saiset-co/sai-dispatch/metrics"
	"github.com/saiset-co/sai-dispatch/middleware"
	"github.com/saiset-co/sai-dispatch/server"
	"github.com/saiset-co/sai-dispatch/types"
)

type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

// Service wires configuration, logging, metrics, the application engine and
// the transport into one lifecycle. All collaborators receive their
// dependencies explicitly; nothing is discovered through globals.
type Service struct {
	ctx        context.Context
	cancel     context.CancelFunc
	configMgr  *config.ConfigurationManager
	logger     types.LoggerManager
	app        *app.Application
	metricsMgr types.MetricsManager
	docsMgr    *docs.DocumentationManager
	httpServer *server.FastHTTPServer
	state      atomic.Value
}

func NewService(ctx context.Context, configPath string) (*Service, error) {
	if configPath == "" {
		return nil, types.ErrConfigInvalidPath
	}

	serviceCtx, cancel := context.WithCancel(ctx)

	configMgr, err := config.NewConfigurationManager(configPath)
	if err != nil {
		cancel()
		return nil, types.WrapError(err, "failed to create config manager")
	}
	cfg := configMgr.GetConfig()

	loggerMgr, err := logger.NewManager(serviceCtx, cfg.Logger)
	if err != nil {
		cancel()
		return nil, types.WrapError(err, "failed to create logger")
	}

	s := &Service{
		ctx:       serviceCtx,
		cancel:    cancel,
		configMgr: configMgr,
		logger:    loggerMgr,
		app:       app.New(loggerMgr),
	}
	s.state.Store(StateStopped)

	if err := s.registerMiddlewares(cfg); err != nil {
		cancel()
		return nil, types.WrapError(err, "failed to register middlewares")
	}

	if err := s.registerCollaborators(cfg); err != nil {
		cancel()
		return nil, types.WrapError(err, "failed to register collaborators")
	}

	httpServer, err := server.NewHTTPServer(serviceCtx, loggerMgr, cfg.Server.HTTP, s.app, s.metricsMgr)
	if err != nil {
		cancel()
		return nil, types.WrapError(err, "failed to create HTTP server")
	}
	s.httpServer = httpServer

	return s, nil
}

// App exposes the application engine for route and middleware registration.
// Registration must finish before Start; the engine is read-only while
// serving.
func (s *Service) App() *app.Application {
	return s.app
}

func (s *Service) Logger() types.Logger {
	return s.logger
}

func (s *Service) Config() types.ConfigManager {
	return s.configMgr
}

func (s *Service) Start() error {
	if !s.transitionState(StateStopped, StateStarting) {
		return types.ErrServerAlreadyRunning
	}

	if err := s.logger.Start(); err != nil {
		s.setState(StateStopped)
		return types.WrapError(err, "failed to start logger")
	}

	if s.metricsMgr != nil {
		if err := s.metricsMgr.Start(); err != nil {
			s.setState(StateStopped)
			return types.WrapError(err, "failed to start metrics")
		}
	}

	if s.docsMgr != nil {
		if err := s.docsMgr.Start(); err != nil {
			s.setState(StateStopped)
			return types.WrapError(err, "failed to start documentation")
		}
	}

	if err := s.httpServer.Start(); err != nil {
		s.setState(StateStopped)
		return types.WrapError(err, "failed to start HTTP server")
	}

	s.setState(StateRunning)
	s.logger.Info("Service started",
		zap.String("name", s.configMgr.GetConfig().Name),
		zap.String("version", s.configMgr.GetConfig().Version))

	return nil
}

func (s *Service) Stop() error {
	if !s.transitionState(StateRunning, StateStopping) {
		return types.ErrServerNotRunning
	}

	defer func() {
		s.setState(StateStopped)
		s.cancel()
	}()

	if err := s.httpServer.Stop(); err != nil {
		s.logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	if s.docsMgr != nil {
		_ = s.docsMgr.Stop()
	}

	if s.metricsMgr != nil {
		_ = s.metricsMgr.Stop()
	}

	s.logger.Info("Service stopped")

	// Flush buffered log entries last.
	_ = s.logger.Stop()

	return nil
}

func (s *Service) IsRunning() bool {
	return s.getState() == StateRunning
}

// Run starts the service and blocks until the context is cancelled or an
// interrupt arrives.
func (s *Service) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		s.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case <-s.ctx.Done():
	}

	return s.Stop()
}

func (s *Service) registerMiddlewares(cfg *types.ServiceConfig) error {
	if cfg.Middlewares == nil {
		return nil
	}

	if item := cfg.Middlewares.Metadata; item != nil && item.Enabled {
		s.app.Use(middleware.NewMetadataMiddleware(s.logger, item.Params))
		s.logger.Info("Metadata middleware registered")
	}

	if item := cfg.Middlewares.Logging; item != nil && item.Enabled {
		s.app.Use(middleware.NewLoggingMiddleware(s.logger, item.Params))
		s.logger.Info("Logging middleware registered")
	}

	if item := cfg.Middlewares.Compression; item != nil && item.Enabled {
		s.app.Use(middleware.NewCompressionMiddleware(s.logger, item.Params))
		s.logger.Info("Compression middleware registered")
	}

	return nil
}

func (s *Service) registerCollaborators(cfg *types.ServiceConfig) error {
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsMgr, err := metrics.NewPrometheusMetrics(s.logger, cfg.Metrics)
		if err != nil {
			return err
		}
		if pm, ok := metricsMgr.(*metrics.PrometheusMetrics); ok {
			if err := pm.RegisterRoutes(s.app); err != nil {
				return err
			}
		}
		s.metricsMgr = metricsMgr
	}

	if cfg.Docs != nil && cfg.Docs.Enabled {
		docsMgr := docs.NewDocumentationManager(s.logger, cfg.Name, cfg.Version, s.app)
		if err := docsMgr.RegisterRoutes(s.app, cfg.Docs.Path); err != nil {
			return err
		}
		s.docsMgr = docsMgr
	}

	return nil
}

func (s *Service) getState() State {
	return s.state.Load().(State)
}

func (s *Service) setState(newState State) bool {
	currentState := s.getState()
	return s.state.CompareAndSwap(currentState, newState)
}

func (s *Service) transitionState(from, to State) bool {
	return s.state.CompareAndSwap(from, to)
}
