package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"printshop/internal/config"
	"printshop/internal/handler"
	"printshop/internal/metrics"
	"printshop/internal/middleware"
	"printshop/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

// /api/v1 配下にルートをぶら下げるもの。ボディ上限もルート側で付ける
type RouteRegistrar interface {
	RegisterRoutes(g *echo.Group, cfg config.Config)
}

// DBなどの疎通確認（nilなら常にok）
type HealthChecker func(ctx context.Context) error

type Deps struct {
	Metrics  *metrics.Metrics
	Health   HealthChecker
	Handlers []RouteRegistrar
}

// New はechoを組み立てる。起動はしない。
func New(cfg config.Config, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = !cfg.IsProduction()
	e.Validator = validator.New()
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics(deps.Metrics))

	e.GET("/healthz", healthz(deps.Health))
	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}

	api := e.Group("/api/v1")
	for _, h := range deps.Handlers {
		h.RegisterRoutes(api, cfg)
	}
	return e
}

func healthz(check HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if check != nil {
			if err := check(c.Request().Context()); err != nil {
				log.Error().Err(err).Msg("health check failed")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Run はctxがキャンセルされるまで待ち受け、その後graceful shutdownする。
func Run(ctx context.Context, e *echo.Echo, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
