// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package jobs provides the scheduler collaborator for deferred work.

Index maintenance and bulk jobs run off the request path: the caller
observes success as soon as the primary-store write lands, and the
submitted job converges the derived state out of band. Execution is
at-least-once (one retry on failure), never exactly-once, so submitted
functions must be idempotent.
*/
package jobs

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// retryDelay spaces the single retry attempt of a failed job.
const retryDelay = 500 * time.Millisecond

// Runner executes submitted jobs on background goroutines.
//
// Jobs receive the runner's base context, which is cancelled at shutdown;
// long jobs should check it at batch boundaries. Wait drains all running
// jobs for a graceful stop.
type Runner struct {
	base   context.Context
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewRunner creates a Runner bound to the application lifetime context.
func NewRunner(base context.Context, logger *slog.Logger) *Runner {
	return &Runner{base: base, logger: logger}
}

// Submit schedules fn for asynchronous execution. A failed run is retried
// once; a panic is recovered and logged so one bad job cannot take the
// process down.
func (runner *Runner) Submit(name string, fn func(ctx context.Context) error) {
	runner.wg.Add(1)

	go func() {
		defer runner.wg.Done()
		defer func() {
			if cause := recover(); cause != nil {
				stackTrace := make([]byte, 2048)
				length := runtime.Stack(stackTrace, false)

				runner.logger.Error("job_panicked",
					slog.String("job", name),
					slog.Any("cause", cause),
					slog.String("stack", string(stackTrace[:length])),
				)
			}
		}()

		startTime := time.Now()

		err := fn(runner.base)
		if err != nil {
			runner.logger.Warn("job_failed_retrying",
				slog.String("job", name),
				slog.Any("error", err),
			)

			select {
			case <-time.After(retryDelay):
			case <-runner.base.Done():
				return
			}

			err = fn(runner.base)
		}

		if err != nil {
			runner.logger.Error("job_failed",
				slog.String("job", name),
				slog.Any("error", err),
			)
			return
		}

		runner.logger.Info("job_finished",
			slog.String("job", name),
			slog.Int64("duration_ms", time.Since(startTime).Milliseconds()),
		)
	}()
}

// Wait blocks until every submitted job has finished.
func (runner *Runner) Wait() {
	runner.wg.Wait()
}
