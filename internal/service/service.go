// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the configured authorities, the resolver and the HTTP server
// together.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/wneessen/addressgw/internal/config"
	"github.com/wneessen/addressgw/internal/geocode"
	"github.com/wneessen/addressgw/internal/http"
	"github.com/wneessen/addressgw/internal/logger"
	"github.com/wneessen/addressgw/internal/server"
	"github.com/wneessen/addressgw/internal/stats"
)

type Service struct {
	config    *config.Config
	logger    *logger.Logger
	resolver  *geocode.Resolver
	validator geocode.Validator
	stats     *stats.Stats
	reporter  *stats.Reporter
	server    *server.Server

	SignalSrc signalSource
}

// Option configures a Service
type Option func(*options)

type options struct {
	httpClient   *http.Client
	resolverOpts []geocode.ResolverOption
}

// WithHTTPClient sets the HTTP client used for the authority requests
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithResolverOptions passes additional options to the resolver
func WithResolverOptions(opts ...geocode.ResolverOption) Option {
	return func(o *options) {
		o.resolverOpts = append(o.resolverOpts, opts...)
	}
}

func New(conf *config.Config, log *logger.Logger, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = http.New(log)
	}

	lang := conf.LanguageTag()
	authorities, err := selectAuthorities(conf, log, lang)
	if err != nil {
		return nil, err
	}

	st := stats.New()
	locator := geocode.NewLocator(o.httpClient, log, conf.Geocoder.Timeout)
	resolverOpts := append([]geocode.ResolverOption{geocode.WithRecorder(st)}, o.resolverOpts...)
	resolver := geocode.NewResolver(locator, authorities, log, resolverOpts...)
	validator := geocode.NewValidator(conf.Geocoder.MinPrecision)

	service := &Service{
		config:    conf,
		logger:    log,
		resolver:  resolver,
		validator: validator,
		stats:     st,
		server:    server.New(conf, log, resolver, validator, st),
		SignalSrc: stdLibSignalSource{},
	}
	log.Debug("geocoding authorities configured", slog.Any("authorities", resolver.Authorities()),
		slog.String("language", lang.String()), slog.String("mode", conf.Mode))
	return service, nil
}

// Authorities returns the names of the enabled authorities
func (s *Service) Authorities() []string {
	return s.resolver.Authorities()
}

// Run starts the periodic stats report and serves HTTP requests until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if !s.config.Stats.Disable {
		reporter, err := stats.NewReporter(ctx, s.stats, s.logger, s.config.Stats.Interval)
		if err != nil {
			return err
		}
		s.reporter = reporter
		s.reporter.Start()
	}

	if len(reportSignals) > 0 {
		sigChan := make(chan os.Signal, 1)
		s.SignalSrc.Notify(sigChan, reportSignals...)
		go func() {
			defer s.SignalSrc.Stop(sigChan)
			s.HandleSignals(ctx, sigChan)
		}()
	}

	err := s.server.Run(ctx)
	if s.reporter != nil {
		if shutdownErr := s.reporter.Shutdown(); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to shut down stats reporter: %w", shutdownErr))
		}
	}
	return err
}

// Lookup validates the raw "lat,lng" input and resolves it. Invalid input results in an
// ERROR response together with the validation error.
func (s *Service) Lookup(ctx context.Context, raw string) (geocode.Response, error) {
	coord, err := s.validator.Parse(raw)
	if err != nil {
		var inputErr *geocode.InputError
		if errors.As(err, &inputErr) {
			return geocode.ErrorResponse(inputErr.Message), err
		}
		return geocode.ErrorResponse(server.MsgInvalidLatLng), err
	}
	return s.resolver.Resolve(ctx, coord), nil
}
