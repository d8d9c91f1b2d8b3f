// Package mux serves HTTP and gRPC on a single port
package mux

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/soheilhy/cmux"

	"jobscout/internal/config"
	"jobscout/internal/grpc/server"
	"jobscout/internal/logging"
)

// Multiplexer routes connections to the gRPC or HTTP server by protocol
type Multiplexer struct {
	logger logging.Logger

	grpcServer *server.Server
	httpServer *http.Server

	mux      cmux.CMux
	listener net.Listener

	wg sync.WaitGroup
}

// NewMultiplexer creates a multiplexer. grpcServer may be nil to serve
// HTTP only.
func NewMultiplexer(cfg *config.Config, grpcServer *server.Server, httpHandler http.Handler, logger logging.Logger) *Multiplexer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Multiplexer{
		logger:     logger.WithField("component", "mux"),
		grpcServer: grpcServer,
		httpServer: &http.Server{
			Handler:           httpHandler,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
	}
}

// Start listens on address and begins serving in the background
func (m *Multiplexer) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return m.Serve(listener)
}

// Serve begins serving on an existing listener in the background
func (m *Multiplexer) Serve(listener net.Listener) error {
	m.listener = listener
	m.mux = cmux.New(listener)
	address := listener.Addr().String()

	if m.grpcServer != nil {
		grpcListener := m.mux.Match(cmux.HTTP2HeaderField("content-type", "application/grpc"))
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.grpcServer.Serve(grpcListener); err != nil && !isClosed(err) {
				m.logger.WithError(err).Error("gRPC server failed", map[string]interface{}{})
			}
		}()
	}

	httpListener := m.mux.Match(cmux.HTTP1Fast())
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.logger.Info("Starting HTTP server", map[string]interface{}{"address": address})
		if err := m.httpServer.Serve(httpListener); err != nil && !isClosed(err) {
			m.logger.WithError(err).Error("HTTP server failed", map[string]interface{}{})
		}
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.mux.Serve(); err != nil && !isClosed(err) {
			m.logger.WithError(err).Error("Multiplexer failed", map[string]interface{}{})
		}
	}()

	m.logger.Info("Multiplexer started successfully", map[string]interface{}{
		"address": address,
		"grpc":    m.grpcServer != nil,
	})
	return nil
}

// Stop shuts both servers down, waiting until ctx expires
func (m *Multiplexer) Stop(ctx context.Context) error {
	m.logger.Info("Stopping multiplexer...", map[string]interface{}{})

	if err := m.httpServer.Shutdown(ctx); err != nil {
		m.logger.WithError(err).Error("HTTP server shutdown failed", map[string]interface{}{})
	}
	if m.grpcServer != nil {
		m.grpcServer.Stop(ctx)
	}
	if m.mux != nil {
		m.mux.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Multiplexer stopped gracefully", map[string]interface{}{})
		return nil
	case <-ctx.Done():
		m.logger.Warn("Multiplexer shutdown timed out", map[string]interface{}{})
		return ctx.Err()
	}
}

// Address is the bound address, or "" before Start
func (m *Multiplexer) Address() string {
	if m.listener != nil {
		return m.listener.Addr().String()
	}
	return ""
}

func isClosed(err error) bool {
	return errors.Is(err, http.ErrServerClosed) ||
		errors.Is(err, cmux.ErrListenerClosed) ||
		errors.Is(err, cmux.ErrServerClosed) ||
		errors.Is(err, net.ErrClosed)
}
