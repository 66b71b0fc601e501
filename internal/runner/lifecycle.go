// Package runner runs a program's long-lived jobs under one context with
// signal handling and ordered cleanup.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is a unit of work that runs until it finishes or ctx is cancelled.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface.
type JobFunc func(ctx context.Context) error

// Run calls f.
func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// Lifecycle runs jobs concurrently. The first failing job cancels the rest;
// cleanups run in reverse registration order once every job has returned.
type Lifecycle struct {
	logger   *zap.Logger
	mu       sync.Mutex
	jobs     []namedJob
	cleanups []namedCleanup
}

type namedJob struct {
	name string
	job  Job
}

type namedCleanup struct {
	name string
	fn   func()
}

// NewLifecycle creates a new Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named job.
//
// Precondition: name must be non-empty; job must be non-nil.
func (l *Lifecycle) Add(name string, job Job) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jobs = append(l.jobs, namedJob{name: name, job: job})
}

// OnStop registers fn to run after all jobs have returned.
func (l *Lifecycle) OnStop(name string, fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanups = append(l.cleanups, namedCleanup{name: name, fn: fn})
}

// Run starts every job and blocks until all of them return. SIGINT and
// SIGTERM cancel the jobs' context.
//
// Postcondition: returns the first job error other than context cancellation;
// all cleanups have run.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.mu.Lock()
	jobs := append([]namedJob(nil), l.jobs...)
	l.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, nj := range jobs {
		g.Go(func() error {
			l.logger.Info("starting job", zap.String("job", nj.name))
			jobStart := time.Now()
			err := nj.job.Run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("job failed",
					zap.String("job", nj.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(jobStart)),
				)
				return fmt.Errorf("job %s: %w", nj.name, err)
			}
			l.logger.Info("job finished",
				zap.String("job", nj.name),
				zap.Duration("elapsed", time.Since(jobStart)),
			)
			return nil
		})
	}
	l.logger.Info("all jobs started", zap.Int("count", len(jobs)))

	err := g.Wait()
	if ctx.Err() != nil && err == nil {
		l.logger.Info("interrupted, shutting down")
	}
	l.shutdown()

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return err
}

func (l *Lifecycle) shutdown() {
	l.mu.Lock()
	cleanups := append([]namedCleanup(nil), l.cleanups...)
	l.mu.Unlock()

	shutdownStart := time.Now()
	for i := len(cleanups) - 1; i >= 0; i-- {
		nc := cleanups[i]
		l.logger.Info("stopping", zap.String("resource", nc.name))
		nc.fn()
	}
	l.logger.Info("all resources released", zap.Duration("shutdown_elapsed", time.Since(shutdownStart)))
}
