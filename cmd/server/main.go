package main

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/isdmx/codescore/config"
	"github.com/isdmx/codescore/evaluator"
	"github.com/isdmx/codescore/httpapi"
	"github.com/isdmx/codescore/logger"
	"github.com/isdmx/codescore/mcpserver"
	"github.com/isdmx/codescore/sandbox"
	"github.com/isdmx/codescore/store"
)

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Sandbox executor for the configured interpreter
			sandbox.NewExecutor,

			// Evaluation store based on config
			store.New,

			// Evaluation service
			evaluator.New,

			// Transports
			httpapi.New,
			mcpserver.New,
		),

		fx.Invoke(registerStoreLifecycle, registerTransports),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}

func registerStoreLifecycle(lc fx.Lifecycle, st store.Store, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Info("closing evaluation store")
			return st.Close()
		},
	})
}

// registerTransports starts the transport selected by server.transport.
// stdio serves MCP alone and shuts the app down when the client hangs up;
// http serves the REST API and the MCP streamable HTTP endpoint side by side.
func registerTransports(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	rest *httpapi.Server,
	mcp *mcpserver.MCPServer,
) {
	switch cfg.Server.Transport {
	case config.TransportStdio:
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					if err := mcp.ServeStdio(); err != nil {
						log.Error("MCP stdio server stopped", zap.Error(err))
						_ = shutdowner.Shutdown(fx.ExitCode(1))
						return
					}
					_ = shutdowner.Shutdown()
				}()
				return nil
			},
		})
	case config.TransportHTTP:
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				if err := rest.Start(); err != nil {
					return err
				}
				go func() {
					if err := mcp.ServeHTTP(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error("MCP HTTP server stopped", zap.Error(err))
						_ = shutdowner.Shutdown(fx.ExitCode(1))
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				if err := mcp.Shutdown(ctx); err != nil {
					log.Warn("MCP HTTP shutdown failed", zap.Error(err))
				}
				return rest.Stop(ctx)
			},
		})
	default:
		// config.validate rejects anything else
		panic("unsupported transport: " + cfg.Server.Transport)
	}
}
