package server

import (
	"context"
	"net/http"

	"bookclub-membership/internal/handler"
	authmw "bookclub-membership/internal/middleware"
	"bookclub-membership/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// headers sent by the hosted-backend js client on every call
var corsAllowHeaders = []string{
	"authorization",
	"x-client-info",
	"apikey",
	"content-type",
	"idempotency-key",
}

type Server struct {
	echo              *echo.Echo
	membershipHandler *handler.MembershipHandler
}

func NewServer(membershipService service.MembershipService, logger *zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				event = logger.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: corsAllowHeaders,
	}))

	s := &Server{
		echo:              e,
		membershipHandler: handler.NewMembershipHandler(membershipService, logger),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.GET("/plans", s.membershipHandler.ListPlans)

	// -------- membership checkout --------
	bearer := authmw.BearerAuth()
	api.POST("/checkout", s.membershipHandler.Checkout, bearer)
	api.POST("/verify-payment", s.membershipHandler.VerifyPayment, bearer)
	api.GET("/membership", s.membershipHandler.GetMembership, bearer)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
