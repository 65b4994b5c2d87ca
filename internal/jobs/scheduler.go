package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs named jobs on cron specs in a fixed time zone.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func NewScheduler(loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	adapter := cronLogger{logger: logger.With("component", "cron")}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)
	return &Scheduler{cron: c, logger: logger}
}

// Add registers job under the standard five-field spec. Jobs receive ctx from
// Start.
func (s *Scheduler) Add(ctx context.Context, name, spec string, job func(context.Context) error) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("jobs: invalid spec %q for %s: %w", spec, name, err)
	}

	logger := s.logger.With("job", name)
	s.cron.Schedule(schedule, cron.FuncJob(func() {
		started := time.Now()
		if err := job(ctx); err != nil {
			logger.ErrorContext(ctx, "job failed", "error", err, "duration", time.Since(started))
			return
		}
		logger.DebugContext(ctx, "job finished", "duration", time.Since(started))
	}))
	logger.InfoContext(ctx, "job scheduled", "spec", spec)
	return nil
}

// Start runs the scheduler until ctx is cancelled. The returned channel is
// closed once running jobs have finished.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		close(done)
	}()
	return done
}

// Next reports the next activation of every registered job.
func (s *Scheduler) Next() []time.Time {
	entries := s.cron.Entries()
	next := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		next = append(next, entry.Next)
	}
	return next
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
