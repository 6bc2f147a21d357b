package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// ShutdownHandler manages graceful shutdown on SIGINT or SIGTERM.
type ShutdownHandler struct {
	server  *Server
	ctx     context.Context
	cancel  context.CancelFunc
	signals chan os.Signal
}

// NewShutdownHandler creates a handler that listens for termination signals.
// The provided context is used as the parent for shutdown operations.
func NewShutdownHandler(ctx context.Context, server *Server) *ShutdownHandler {
	shutdownCtx, cancel := context.WithCancel(ctx)
	h := &ShutdownHandler{
		server:  server,
		ctx:     shutdownCtx,
		cancel:  cancel,
		signals: make(chan os.Signal, 1),
	}
	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)
	return h
}

// Wait blocks until a termination signal is received or the parent context
// ends, then shuts the server down within its configured timeout.
func (h *ShutdownHandler) Wait() error {
	defer signal.Stop(h.signals)

	select {
	case sig := <-h.signals:
		logrus.WithFields(logrus.Fields{
			"function": "ShutdownHandler.Wait",
			"signal":   sig.String(),
		}).Info("Shutdown signal received")
	case <-h.ctx.Done():
	}
	h.cancel()

	timeout := h.server.ShutdownTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return h.server.Shutdown(shutdownCtx)
}

// Context returns the shutdown context that is cancelled when shutdown begins.
func (h *ShutdownHandler) Context() context.Context {
	return h.ctx
}
