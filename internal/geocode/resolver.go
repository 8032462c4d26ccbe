// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/wneessen/addressgw/internal/logger"
)

// AddressLocator looks up the addresses for a coordinate at a single authority.
type AddressLocator interface {
	Locate(ctx context.Context, authority Authority, coord Coordinate) ([]string, error)
}

// Recorder receives the outcome of every authority attempt. err is nil on success.
type Recorder interface {
	Record(authority string, took time.Duration, results int, err error)
}

// Resolver tries a set of authorities in random order until one of them answers.
type Resolver struct {
	authorities []Authority
	locator     AddressLocator
	logger      *logger.Logger
	recorder    Recorder

	randLock sync.Mutex
	rand     *rand.Rand
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithRand sets the random source used to order the authorities. Use a seeded source for
// a reproducible order.
func WithRand(r *rand.Rand) ResolverOption {
	return func(res *Resolver) {
		if r != nil {
			res.rand = r
		}
	}
}

// WithRecorder sets a Recorder that is notified about every authority attempt
func WithRecorder(rec Recorder) ResolverOption {
	return func(res *Resolver) {
		res.recorder = rec
	}
}

// NewResolver returns a Resolver for the given authorities. The authority list is copied and
// never modified afterwards.
func NewResolver(locator AddressLocator, authorities []Authority, log *logger.Logger, opts ...ResolverOption) *Resolver {
	resolver := &Resolver{
		authorities: append([]Authority(nil), authorities...),
		locator:     locator,
		logger:      log,
		rand:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// Authorities returns the names of the configured authorities in configuration order
func (r *Resolver) Authorities() []string {
	names := make([]string, 0, len(r.authorities))
	for _, authority := range r.authorities {
		names = append(names, authority.Name())
	}
	return names
}

// Resolve queries the authorities one after another in random order and returns the first
// successful result, which may be an empty list. If no authority answers, a FAIL response
// is returned.
func (r *Resolver) Resolve(ctx context.Context, coord Coordinate) Response {
	log := r.logger.WithContext(ctx)
	for _, authority := range r.shuffled() {
		start := time.Now()
		addresses, err := r.locator.Locate(ctx, authority, coord)
		r.record(authority.Name(), time.Since(start), len(addresses), err)
		if err != nil {
			log.Warn("authority request error, using backup", slog.String("authority", authority.Name()),
				logger.Err(err))
			continue
		}
		log.Debug("authority answered", slog.String("authority", authority.Name()),
			slog.Int("results", len(addresses)))
		return OKResponse(addresses)
	}

	log.Error("no valid response from any authority", slog.String("latlng", coord.String()),
		slog.Int("authorities", len(r.authorities)))
	return FailResponse()
}

// shuffled returns a randomly ordered copy of the authority list
func (r *Resolver) shuffled() []Authority {
	order := append([]Authority(nil), r.authorities...)
	r.randLock.Lock()
	defer r.randLock.Unlock()
	r.rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

func (r *Resolver) record(name string, took time.Duration, results int, err error) {
	if r.recorder == nil {
		return
	}
	r.recorder.Record(name, took, results, err)
}
