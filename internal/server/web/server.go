// Package web serves the browser-facing HTTP interface: templates for
// every screen and the JSON endpoints the page scripts call.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pagekeeper/internal/logging"
	"github.com/dmitrijs2005/pagekeeper/internal/server/session"
)

const shutdownTimeout = 10 * time.Second

// Options carries the settings the handlers need from the server config.
type Options struct {
	Address              string
	TicketSecret         []byte
	SessionIdleTimeout   time.Duration
	InviteTicketValidity time.Duration
}

type HTTPServer struct {
	address        string
	logger         logging.Logger
	svc            Services
	sessions       *session.Manager
	renderer       *PageRenderer
	ticketSecret   []byte
	ticketValidity time.Duration
	idleTimeout    time.Duration
	now            func() time.Time
}

func NewHTTPServer(o Options, l logging.Logger, sm *session.Manager, svc Services) (*HTTPServer, error) {
	renderer, err := NewPageRenderer(templateFS, pageTemplates)
	if err != nil {
		return nil, err
	}
	return &HTTPServer{
		address:        o.Address,
		logger:         l.With("module", "http_server"),
		svc:            svc,
		sessions:       sm,
		renderer:       renderer,
		ticketSecret:   o.TicketSecret,
		ticketValidity: o.InviteTicketValidity,
		idleTimeout:    o.SessionIdleTimeout,
		now:            time.Now,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
