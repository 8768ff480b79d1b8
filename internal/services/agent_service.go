package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// AgentHTTPService runs the control agent's HTTP listener.
type AgentHTTPService struct {
	addr            string
	handler         http.Handler
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	logger          zerolog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

// NewAgentHTTPService initializes the service; nothing is bound until Start.
func NewAgentHTTPService(addr string, handler http.Handler, readTimeout, writeTimeout, shutdownTimeout time.Duration, logger zerolog.Logger) *AgentHTTPService {
	return &AgentHTTPService{
		addr:            addr,
		handler:         handler,
		readTimeout:     readTimeout,
		writeTimeout:    writeTimeout,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Start binds the listener synchronously and serves in the background.
func (s *AgentHTTPService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		s.logger.Warn().Msg("AgentHTTPService is already running")
		return errors.New("agent http service is already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.logger.Error().Err(err).Str("addr", s.addr).Msg("Failed to bind agent listener")
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.readTimeout,
		ReadTimeout:       s.readTimeout,
		WriteTimeout:      s.writeTimeout,
	}

	s.wg.Add(1)
	go func(server *http.Server) {
		defer s.wg.Done()
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Agent HTTP server stopped unexpectedly")
		}
	}(s.server)

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("AgentHTTPService started successfully")
	return nil
}

// Stop drains in-flight requests up to the shutdown timeout.
func (s *AgentHTTPService) Stop() error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		s.logger.Warn().Msg("AgentHTTPService is not running")
		return errors.New("agent http service is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	s.wg.Wait()
	if err != nil {
		s.logger.Error().Err(err).Msg("Agent HTTP server did not shut down cleanly")
		return err
	}

	s.logger.Info().Msg("AgentHTTPService stopped successfully")
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *AgentHTTPService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
