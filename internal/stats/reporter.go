// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/wneessen/addressgw/internal/logger"
)

const reportJobName = "authority_stats_report_job"

// Reporter periodically writes the authority counters to the log.
type Reporter struct {
	stats     *Stats
	logger    *logger.Logger
	scheduler gocron.Scheduler
}

// NewReporter returns a Reporter that logs stats every interval once started
func NewReporter(ctx context.Context, stats *Stats, log *logger.Logger, interval time.Duration) (*Reporter, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	reporter := &Reporter{
		stats:     stats,
		logger:    log,
		scheduler: scheduler,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(reporter.Report),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(reportJobName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", reportJobName, err)
	}
	return reporter, nil
}

// Start starts the scheduler
func (r *Reporter) Start() {
	r.scheduler.Start()
}

// Shutdown stops the scheduler and waits for a running report to finish
func (r *Reporter) Shutdown() error {
	return r.scheduler.Shutdown()
}

// Report logs one line per authority
func (r *Reporter) Report(ctx context.Context) {
	snapshot := r.stats.Snapshot()
	if len(snapshot) == 0 {
		r.logger.Debug("no authority lookups recorded yet")
		return
	}
	for _, entry := range snapshot {
		if ctx.Err() != nil {
			return
		}
		r.logger.Info("authority stats",
			slog.String("authority", entry.Authority),
			slog.Uint64("attempts", entry.Attempts),
			slog.Uint64("successes", entry.Successes),
			slog.Uint64("failures", entry.Failures),
			slog.Uint64("empty_results", entry.EmptyResults),
			slog.Duration("avg_latency", entry.AvgLatency),
			slog.String("last_error", entry.LastError),
		)
	}
}
