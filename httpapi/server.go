// Package httpapi serves the evaluation service over REST.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/isdmx/codescore/config"
	"github.com/isdmx/codescore/evaluator"
	"github.com/isdmx/codescore/scoring"
)

// No write timeout: an evaluation may run for the whole sandbox timeout.
const readHeaderTimeout = 10 * time.Second

// Service is the part of the evaluator the REST surface needs
type Service interface {
	Evaluate(ctx context.Context, sub evaluator.Submission) (evaluator.Evaluation, error)
	Get(ctx context.Context, id string) (scoring.Report, error)
}

// Server is the REST front end
type Server struct {
	logger  *zap.Logger
	service Service
	engine  *gin.Engine
	http    *http.Server
	now     func() time.Time
}

// New builds the router and the HTTP server listening on server.http_port
func New(cfg *config.Config, logger *zap.Logger, service *evaluator.Service) *Server {
	return NewServer(logger, service, fmt.Sprintf(":%d", cfg.Server.HTTPPort))
}

// NewServer builds a Server for any Service implementation
func NewServer(logger *zap.Logger, service Service, addr string) *Server {
	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		logger:  logger,
		service: service,
		now:     time.Now,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), AccessLog(logger))
	engine.POST("/evaluate", s.handleEvaluate)
	engine.GET("/evaluation/:id", s.handleGetEvaluation)
	engine.GET("/health", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine = engine

	s.http = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listener and serves in the background. Bind errors are
// returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	s.logger.Info("starting REST API", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("REST API stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop drains in-flight requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping REST API")
	return s.http.Shutdown(ctx)
}
