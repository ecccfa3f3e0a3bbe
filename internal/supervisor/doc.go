// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package supervisor provides process supervision for the worker using suture v4.

A worker process runs three long-running services under one root supervisor:

	RootSupervisor ("worker")
	├── WorkerLoopService            (process_next_task / process_next_source, lease renewal)
	├── HeartbeatService             (periodic send_heartbeat)
	└── ActiveWorkerRefreshService   (periodic active-worker-count sample into the rate cache)

This is intentionally flat. There is no failure domain worth isolating
between them beyond what suture already gives every supervised service:
independent restart on crash, with exponential backoff on repeated failure.
A crash restarting the heartbeat timer does not stop the worker loop from
continuing to claim and settle tasks, and vice versa.

# Restart behavior

Services are restarted automatically on error return, with failures decayed
exponentially over FailureDecay seconds and a backoff applied once
FailureThreshold is exceeded within that window. Defaults match suture's own
production defaults (DefaultTreeConfig).

# Shutdown

Canceling the context passed to Serve/ServeBackground triggers orderly
shutdown of all services, bounded by ShutdownTimeout. UnstoppedServiceReport
surfaces anything that didn't stop in time, for cmd/worker's signal handler
to log before forcing exit.

# Logging

Supervisor lifecycle events (start, stop, failure, backoff) are routed
through the slog adapter in internal/logging via sutureslog.Handler, so they
land in the same structured log stream as everything else the worker logs.
*/
package supervisor
