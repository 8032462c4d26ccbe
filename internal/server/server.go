// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package server exposes the address lookup over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wneessen/addressgw/internal/config"
	"github.com/wneessen/addressgw/internal/geocode"
	"github.com/wneessen/addressgw/internal/logger"
	"github.com/wneessen/addressgw/internal/stats"
)

// Resolver turns a validated coordinate into a lookup response
type Resolver interface {
	Resolve(ctx context.Context, coord geocode.Coordinate) geocode.Response
	Authorities() []string
}

type Server struct {
	conf      *config.Config
	logger    *logger.Logger
	resolver  Resolver
	validator geocode.Validator
	stats     *stats.Stats
	engine    *gin.Engine
}

// New returns a Server with all routes registered. st may be nil, in which case the stats
// endpoint is not available.
func New(conf *config.Config, log *logger.Logger, resolver Resolver, validator geocode.Validator,
	st *stats.Stats,
) *Server {
	server := &Server{
		conf:      conf,
		logger:    log,
		resolver:  resolver,
		validator: validator,
		stats:     st,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(log))
	if len(conf.Server.CORSOrigins) > 0 {
		engine.Use(CORS(conf.Server.CORSOrigins))
	}
	server.engine = engine
	server.routes()

	return server
}

func (s *Server) routes() {
	s.engine.GET("/addresses", s.addresses)
	s.engine.GET("/health", s.health)
	if s.stats != nil {
		s.engine.GET("/stats", s.authorityStats)
	}
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP requests on the configured address until ctx is canceled, then shuts the
// server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.conf.Server.Address,
		Handler:      s.engine,
		ReadTimeout:  s.conf.Server.ReadTimeout,
		WriteTimeout: s.conf.Server.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", slog.String("address", srv.Addr),
			slog.Any("authorities", s.resolver.Authorities()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("failed to run HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.conf.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
