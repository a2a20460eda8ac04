package webapp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/corewire/respond"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const readHeaderTimeout = 5 * time.Second

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler respond.HandlerFunc[context.Context]
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Mux        *respond.ServeMux
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
}

// NewMux creates the ServeMux all routes are registered on, reporting
// pipeline events through the zap logger.
func NewMux(logger *zap.Logger) *respond.ServeMux {
	return respond.NewServeMuxWith(NewRespondLogger(logger), http.NewServeMux())
}

// NewServer creates an HTTP server with all middleware and routing configured.
func NewServer(params ServerParams, cfg ServerConfig) *http.Server {
	healthPath := params.Env.healthCheckPath()

	params.Mux.Use(withRequestID())
	params.Mux.Use(withTracing(params.TracerProv, params.Env.serviceName(), healthPath))
	params.Mux.Use(withAccessLog(params.Logger, healthPath))
	if blob := params.Env.defaultHeaders(); blob != "" {
		params.Mux.Use(withDefaultHeaders(blob))
	}

	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	params.Mux.HandleFunc("GET "+healthPath, healthHandler)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           params.Mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting server", zap.String("addr", server.Addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

func defaultHealthHandler(_ context.Context, w *respond.Response, _ *http.Request) error {
	return w.FlushHeaders()
}
