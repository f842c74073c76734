// Package server exposes the wizard and a relayer proxy as a JSON API for a
// browser front-end.
package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/storacha/sandbox/pkg/server/middleware"
)

var logger = logging.Logger("server/http")

type Server struct {
	e *echo.Echo
}

func NewServer(api *API) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())
	e.Use(middleware.LogMiddleware(logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.HTTPErrorHandler = middleware.HandleError

	RegisterEchoRoutes(e, api)

	return &Server{e: e}
}

// Handler returns the server as a plain http.Handler.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.e.Start(addr)
	}()
	// e.Start blocks, so wait up to one second for the listener to show up
	return waitForServerStart(s.e, errCh, time.Second)
}

// Addr is the address the server listens on once started.
func (s *Server) Addr() string {
	if addr := s.e.ListenerAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func waitForServerStart(e *echo.Echo, errChan <-chan error, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			var addr net.Addr
			addr = e.ListenerAddr()
			if addr != nil && strings.Contains(addr.String(), ":") {
				return nil
			}
		case err := <-errChan:
			return err
		}
	}
}
