// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratecache is a small embedded-Badger cache of the active
// worker count used to size Gateway rate-limit jitter (spec §4.1). It
// exists so that sizing jitter never requires a spreadsheet read of its
// own: cmd/worker samples the registry's active_workers() once at startup
// and then on every ActiveWorkerRefresh tick, and this package durably remembers
// the last sample across process restarts so the very first Gateway call
// after startup isn't forced to assume a lone worker.
package ratecache
