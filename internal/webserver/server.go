package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/haider-deku/3d-marketplace/internal/app"
)

// AdminServer serves the marketplace REST API
type AdminServer struct {
	root   *echo.Echo
	appCtx app.AppContext
}

func NewAdminServer(appCtx app.AppContext) *AdminServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(requestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(withAppContext(appCtx))

	api := e.Group("/api")
	for _, r := range registered() {
		if r.root {
			e.Add(r.method, r.path, r.handler, r.middleware...)
			continue
		}
		api.Add(r.method, r.path, r.handler, r.middleware...)
	}

	return &AdminServer{root: e, appCtx: appCtx}
}

// Echo exposes the router, mainly for tests
func (s *AdminServer) Echo() *echo.Echo {
	return s.root
}

// Start blocks serving HTTP until Shutdown is called
func (s *AdminServer) Start() error {
	cfg := s.appCtx.Config().Web
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.root.Server.ReadTimeout = time.Duration(cfg.ReadTimeout) * time.Second
	s.root.Server.WriteTimeout = time.Duration(cfg.WriteTimeout) * time.Second
	zap.S().Infof("Marketplace API listening on %s", addr)
	if err := s.root.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}
