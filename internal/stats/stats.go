// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package stats keeps per-authority lookup counters.
package stats

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/addressgw/internal/geocode"
)

// AuthorityStats is a point in time view of the counters of a single authority
type AuthorityStats struct {
	Authority    string            `json:"authority"`
	Attempts     uint64            `json:"attempts"`
	Successes    uint64            `json:"successes"`
	Failures     uint64            `json:"failures"`
	FailureKinds map[string]uint64 `json:"failure_kinds,omitempty"`
	EmptyResults uint64            `json:"empty_results"`
	AvgLatency   time.Duration     `json:"avg_latency_ns"`
	LastError    string            `json:"last_error,omitempty"`
	LastSuccess  time.Time         `json:"last_success,omitzero"`
	LastFailure  time.Time         `json:"last_failure,omitzero"`
}

type counter struct {
	attempts     uint64
	successes    uint64
	failures     uint64
	emptyResults uint64
	failureKinds map[string]uint64
	totalLatency time.Duration
	lastError    string
	lastSuccess  time.Time
	lastFailure  time.Time
}

// Stats collects the outcome of authority lookups. It is safe for concurrent use.
type Stats struct {
	mu       sync.RWMutex
	counters map[string]*counter
	now      func() time.Time
}

// New returns an empty Stats
func New() *Stats {
	return &Stats{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// Record implements geocode.Recorder
func (s *Stats) Record(authority string, took time.Duration, results int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[authority]
	if !ok {
		c = &counter{failureKinds: make(map[string]uint64)}
		s.counters[authority] = c
	}
	c.attempts++
	c.totalLatency += took
	if err != nil {
		c.failures++
		c.lastError = err.Error()
		c.lastFailure = s.now()
		kind := geocode.KindUnknown
		var upErr *geocode.UpstreamError
		if errors.As(err, &upErr) {
			kind = upErr.Kind
		}
		c.failureKinds[kind.String()]++
		return
	}
	c.successes++
	c.lastSuccess = s.now()
	if results == 0 {
		c.emptyResults++
	}
}

// Snapshot returns the current counters sorted by authority name
func (s *Stats) Snapshot() []AuthorityStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]AuthorityStats, 0, len(s.counters))
	for name, c := range s.counters {
		entry := AuthorityStats{
			Authority:    name,
			Attempts:     c.attempts,
			Successes:    c.successes,
			Failures:     c.failures,
			EmptyResults: c.emptyResults,
			LastError:    c.lastError,
			LastSuccess:  c.lastSuccess,
			LastFailure:  c.lastFailure,
		}
		if c.attempts > 0 {
			entry.AvgLatency = c.totalLatency / time.Duration(c.attempts)
		}
		if len(c.failureKinds) > 0 {
			entry.FailureKinds = make(map[string]uint64, len(c.failureKinds))
			for k, v := range c.failureKinds {
				entry.FailureKinds[k] = v
			}
		}
		snapshot = append(snapshot, entry)
	}
	slices.SortFunc(snapshot, func(a, b AuthorityStats) int {
		return strings.Compare(a.Authority, b.Authority)
	})
	return snapshot
}
