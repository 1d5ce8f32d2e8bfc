package web

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

// ShutdownTimeout bounds draining in-flight requests on stop.
const ShutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

func NewHTTPServer(a string, app *fiber.App, l logging.Logger) *HTTPServer {
	return &HTTPServer{address: a, app: app, logger: l.With("module", "http_server")}
}

// Run serves until ctx is cancelled, then shuts the app down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	shutdownErr := s.app.ShutdownWithContext(sctx)

	// Listener may not have been handed to fasthttp yet when shutdown ran.
	_ = ln.Close()

	if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return shutdownErr
}
