// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/config"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/logging"
	"github.com/AndreKoraleski/YT-G-Sheets-Orchestrator/internal/schema"
)

// heartbeater and counterIncrementer narrow *registry.Registry to what
// this package needs, so tests can stub it.
type heartbeater interface {
	SendHeartbeat(ctx context.Context) error
	IncrementTasks(ctx context.Context) error
	IncrementSources(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// leaseHolder narrows *election.Election.
type leaseHolder interface {
	Acquire(ctx context.Context) (bool, error)
	Held() bool
	Release(ctx context.Context) error
}

// Orchestrator drives the claim/settle/fan-out protocol and the main
// loop described in spec §4.5.
type Orchestrator struct {
	gw            sheetGateway
	cfg           config.OrchestratorConfig
	workerID      string
	registry      heartbeater
	election      leaseHolder
	renewInterval time.Duration
	extractor     Extractor
	callback      Callback

	shutdownOnce sync.Once
	lastLeaseTry time.Time
}

// New constructs an Orchestrator. callback is the default used by Run;
// ProcessNextTask also accepts an explicit callback for embedding use
// (spec §6, "Programmatic surface"). renewInterval paces how often an
// already-held lease is re-confirmed (spec §4.5.4 step 1, "renew the
// lease every 60s"); a held lease is not re-acquired on every idle loop
// tick, only once renewInterval has elapsed since the last attempt. Zero
// falls back to renewing on every idle tick.
func New(gw sheetGateway, cfg config.OrchestratorConfig, workerID string, reg heartbeater, el leaseHolder, extractor Extractor, callback Callback) *Orchestrator {
	return newOrchestrator(gw, cfg, workerID, reg, el, 0, extractor, callback)
}

// NewWithRenewInterval is New plus an explicit lease renewal cadence, for
// callers that want spec §4.5.4's 60s renewal period instead of renewing
// on every idle main-loop tick.
func NewWithRenewInterval(gw sheetGateway, cfg config.OrchestratorConfig, workerID string, reg heartbeater, el leaseHolder, renewInterval time.Duration, extractor Extractor, callback Callback) *Orchestrator {
	return newOrchestrator(gw, cfg, workerID, reg, el, renewInterval, extractor, callback)
}

func newOrchestrator(gw sheetGateway, cfg config.OrchestratorConfig, workerID string, reg heartbeater, el leaseHolder, renewInterval time.Duration, extractor Extractor, callback Callback) *Orchestrator {
	return &Orchestrator{
		gw:            gw,
		cfg:           cfg,
		workerID:      workerID,
		registry:      reg,
		election:      el,
		renewInterval: renewInterval,
		extractor:     extractor,
		callback:      callback,
	}
}

// SendHeartbeat refreshes this worker's liveness row.
func (o *Orchestrator) SendHeartbeat(ctx context.Context) error {
	if o.registry == nil {
		return nil
	}
	return o.registry.SendHeartbeat(ctx)
}

// ProcessNextTask performs one loop iteration of the task path: claim one
// Task, run callback against its url, settle DONE or FAILED. It reports
// true iff a task was claimed and processed.
func (o *Orchestrator) ProcessNextTask(ctx context.Context, callback Callback) (bool, error) {
	row, index, ok, err := claim(ctx, o.gw, schema.TasksPendingSheet, schema.TasksHeader, o.workerID, o.cfg.ClaimTTL, o.cfg.ClaimReadBackBase, taskClaimAdapter)
	if err != nil {
		return false, fmt.Errorf("claim task: %w", err)
	}
	if !ok {
		return false, nil
	}

	task, err := schema.DecodeTask(row)
	if err != nil {
		return true, fmt.Errorf("decode claimed task: %w", err)
	}

	cbErr := callback(ctx, task.URL)
	task.CompletedAt = time.Now().UTC()

	if cbErr == nil {
		task.Status = schema.StatusDone
		if err := settle(ctx, o.gw, schema.TasksPendingSheet, index, schema.TasksHistorySheet, task.Encode()); err != nil {
			return true, err
		}
	} else {
		task.Status = schema.StatusFailed
		destRow := append(task.Encode(), cbErr.Error())
		if err := settle(ctx, o.gw, schema.TasksPendingSheet, index, schema.TasksDLQSheet, destRow); err != nil {
			return true, err
		}
	}

	if o.registry != nil {
		if err := o.registry.IncrementTasks(ctx); err != nil {
			logging.Warn().Err(err).Msg("failed to increment tasks_processed counter")
		}
	}
	return true, nil
}

// Run executes the main loop (spec §4.5.5) until ctx is cancelled, then
// performs graceful Shutdown.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return o.Shutdown(context.Background())
		}

		if err := o.SendHeartbeat(ctx); err != nil {
			logging.Warn().Err(err).Msg("heartbeat failed")
		}

		didTask, err := o.ProcessNextTask(ctx, o.callback)
		if err != nil {
			logging.Warn().Err(err).Msg("task processing iteration failed")
		}
		if didTask {
			continue
		}

		if o.election != nil && o.dueForLeaseAttempt() {
			o.lastLeaseTry = time.Now()
			held, err := o.election.Acquire(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("lease acquisition failed")
			}
			if held {
				didSource, err := o.processOneSource(ctx)
				if err != nil {
					logging.Warn().Err(err).Msg("source processing iteration failed")
				}
				if didSource {
					continue
				}
			}
		}

		if err := o.sleep(ctx, o.cfg.PollInterval); err != nil {
			return o.Shutdown(context.Background())
		}
	}
}

// dueForLeaseAttempt reports whether enough time has passed since the
// last Acquire/Renew call to try again: immediately if we don't
// currently hold the lease (so a freed lease is picked up promptly), or
// once renewInterval has elapsed if we do.
func (o *Orchestrator) dueForLeaseAttempt() bool {
	if o.renewInterval <= 0 || !o.election.Held() {
		return true
	}
	return time.Since(o.lastLeaseTry) >= o.renewInterval
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Shutdown is spec §5's graceful-cancellation sequence: mark the worker
// INACTIVE and release the leader lease if held. It is idempotent.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	var err error
	o.shutdownOnce.Do(func() {
		var errs []error
		if o.election != nil && o.election.Held() {
			if e := o.election.Release(ctx); e != nil {
				errs = append(errs, fmt.Errorf("release lease: %w", e))
			}
		}
		if o.registry != nil {
			if e := o.registry.Shutdown(ctx); e != nil {
				errs = append(errs, fmt.Errorf("mark worker inactive: %w", e))
			}
		}
		err = errors.Join(errs...)
	})
	return err
}
