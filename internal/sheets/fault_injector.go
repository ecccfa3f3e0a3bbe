// SPDX-License-Identifier: AGPL-3.0-or-later

package sheets

import (
	"context"
	"sync/atomic"
)

// FaultInjector wraps a Backend and lets tests force a configured number
// of failures before calls start succeeding, to exercise the Gateway's
// retry and circuit-breaker behavior without a real flaky network.
type FaultInjector struct {
	Backend

	transientRemaining atomic.Int32
	permanentRemaining atomic.Int32
	calls              atomic.Int64
}

// NewFaultInjector wraps backend with no faults queued.
func NewFaultInjector(backend Backend) *FaultInjector {
	return &FaultInjector{Backend: backend}
}

// FailTransientNext makes the next n calls through this injector fail
// with a TransientError before falling through to the wrapped backend.
func (f *FaultInjector) FailTransientNext(n int32) {
	f.transientRemaining.Store(n)
}

// FailPermanentNext makes the next n calls through this injector fail
// with a PermanentError before falling through to the wrapped backend.
func (f *FaultInjector) FailPermanentNext(n int32) {
	f.permanentRemaining.Store(n)
}

// Calls returns the total number of operations attempted through this
// injector, including ones that were made to fail.
func (f *FaultInjector) Calls() int64 {
	return f.calls.Load()
}

func (f *FaultInjector) maybeFail(op string) error {
	f.calls.Add(1)
	if f.permanentRemaining.Load() > 0 {
		f.permanentRemaining.Add(-1)
		return NewPermanentError("injected", errInjectedFailure(op))
	}
	if f.transientRemaining.Load() > 0 {
		f.transientRemaining.Add(-1)
		return NewTransientError(op, errInjectedFailure(op))
	}
	return nil
}

type injectedFailure string

func (e injectedFailure) Error() string { return string(e) }

func errInjectedFailure(op string) error {
	return injectedFailure("injected failure for " + op)
}

func (f *FaultInjector) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	if err := f.maybeFail("read_all"); err != nil {
		return nil, err
	}
	return f.Backend.ReadAll(ctx, sheet)
}

func (f *FaultInjector) Append(ctx context.Context, sheet string, row []string) error {
	if err := f.maybeFail("append"); err != nil {
		return err
	}
	return f.Backend.Append(ctx, sheet, row)
}

func (f *FaultInjector) UpdateRow(ctx context.Context, sheet string, index int, row []string) error {
	if err := f.maybeFail("update_row"); err != nil {
		return err
	}
	return f.Backend.UpdateRow(ctx, sheet, index, row)
}

func (f *FaultInjector) DeleteRow(ctx context.Context, sheet string, index int) error {
	if err := f.maybeFail("delete_row"); err != nil {
		return err
	}
	return f.Backend.DeleteRow(ctx, sheet, index)
}

func (f *FaultInjector) WriteHeader(ctx context.Context, sheet string, header []string) error {
	if err := f.maybeFail("write_header"); err != nil {
		return err
	}
	return f.Backend.WriteHeader(ctx, sheet, header)
}
