// Package diag exposes a read-only HTTP surface for store managers and
// monitoring tools: liveness, the data-integrity report, and a handful of
// runtime gauges. It never accepts a write — every mutation happens
// through a terminal's own session, never over this port.
package diag

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/viewtouch/posk/internal/persistence"
)

// Metrics is a snapshot of the counters diagnostics reports; the caller
// (the runtime's own owning goroutine) fills it in on each request rather
// than this package polling shared state itself.
type Metrics struct {
	ConnectedTerminals int
	OpenChecks         int
	DirtyChecks        int
	PrinterChannels    int
}

// Server serves the diagnostics HTTP API over echo.
type Server struct {
	echo *echo.Echo

	integrityReport func() persistence.IntegrityReport
	metrics         func() Metrics
}

// New builds a Server. guard may be nil in development, in which case
// every route is open; production wiring always supplies one.
func New(guard *BearerGuard, integrityReport func() persistence.IntegrityReport, metrics func() Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Recover())
	e.Use(requestLogMiddleware())

	s := &Server{echo: e, integrityReport: integrityReport, metrics: metrics}

	e.GET("/health", s.handleHealth)

	protected := e.Group("")
	if guard != nil {
		protected.Use(guard.Require())
	}
	protected.GET("/integrity", s.handleIntegrity)
	protected.GET("/metrics", s.handleMetrics)

	return s
}

// Start runs the diagnostics server until ctx is cancelled, then shuts it
// down with a bounded grace period.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("diagnostics server starting")
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIntegrity(c echo.Context) error {
	return c.JSON(http.StatusOK, s.integrityReport())
}

func (s *Server) handleMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.metrics())
}

func requestLogMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")
			return nil
		}
	}
}
