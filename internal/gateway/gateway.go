// Package gateway is the HTTP front door in webhook mode. It exposes the
// health endpoint and mounts the Slack Events API receiver.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultShutdownTimeout = 10 * time.Second

// ConversationCounter reports how many conversations are live. Implemented
// by the Slack demultiplexer.
type ConversationCounter interface {
	Len() int
}

// Gateway serves the HTTP endpoints.
type Gateway struct {
	addr          string
	logger        *slog.Logger
	events        http.Handler
	conversations ConversationCounter
	server        *http.Server
	startedAt     time.Time
}

// New builds a Gateway listening on addr. events handles POST /slack/events;
// conversations feeds the health report and may be nil.
func New(addr string, events http.Handler, conversations ConversationCounter, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		addr:          addr,
		logger:        logger,
		events:        events,
		conversations: conversations,
	}
}

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", g.handleHealth())
	r.Post("/slack/events", g.events.ServeHTTP)

	return r
}

// Start binds the listener and serves in the background.
func (g *Gateway) Start() error {
	g.startedAt = time.Now()

	g.server = &http.Server{
		Addr:         g.addr,
		Handler:      g.buildRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.addr)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.addr)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
