// app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/emailcheck/config"
	"github.com/dalemusser/emailcheck/httputil"
	"github.com/dalemusser/emailcheck/logging"
	"github.com/dalemusser/emailcheck/metrics"
	"github.com/dalemusser/emailcheck/server"
	"go.uber.org/zap"
)

// Hooks defines the integration points a service provides to Run.
type Hooks struct {
	// Name is used only for logging/diagnostics.
	Name string

	// LoadConfig returns the core config, typically via config.Load.
	LoadConfig func(logger *zap.Logger) (*config.CoreConfig, error)

	// BuildHandler constructs the final http.Handler: router, middleware
	// and routes.
	BuildHandler func(core *config.CoreConfig, logger *zap.Logger) (http.Handler, error)
}

// Run executes the startup sequence:
//
//  1. Bootstrap logger
//  2. Load config (Hooks.LoadConfig)
//  3. Build final logger based on config
//  4. Register default metrics
//  5. Wire shutdown signals to a context
//  6. Build the HTTP handler (Hooks.BuildHandler)
//  7. Start the HTTP server and block until shutdown
func Run(ctx context.Context, hooks Hooks) error {
	if hooks.LoadConfig == nil || hooks.BuildHandler == nil {
		return errors.New("app: LoadConfig and BuildHandler are required")
	}

	// 1) Bootstrap logger for early startup
	bootstrap := logging.BootstrapLogger()
	defer bootstrap.Sync()
	bootstrap.Info("bootstrap logger initialized", zap.String("app", hooks.Name))

	// 2) Load config
	coreCfg, err := hooks.LoadConfig(bootstrap)
	if err != nil {
		bootstrap.Error("config load failed", zap.Error(err))
		return fmt.Errorf("load config: %w", err)
	}
	bootstrap.Info("config loaded",
		zap.String("env", coreCfg.Env),
		zap.String("log_level", coreCfg.LogLevel),
	)

	// 3) Build final logger
	logger, err := logging.BuildLogger(coreCfg.LogLevel, coreCfg.Env)
	if err != nil {
		bootstrap.Error("logger build failed", zap.Error(err))
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	logger.Info("logger initialized", zap.String("app", hooks.Name))
	httputil.SetLogger(logger)

	// 4) Register default metrics (Go, process, HTTP, validation)
	if coreCfg.EnableMetrics {
		metrics.RegisterDefault(logger)
	}

	// 5) Wire shutdown signals → context
	ctx, cancel := server.WithShutdownSignals(ctx, logger)
	defer cancel()

	// 6) Build HTTP handler (router + middleware + routes)
	handler, err := hooks.BuildHandler(coreCfg, logger)
	if err != nil {
		logger.Error("handler build failed", zap.Error(err))
		return fmt.Errorf("build handler: %w", err)
	}

	// 7) Start HTTP server
	if err := server.ListenAndServeWithContext(ctx, coreCfg, handler, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
