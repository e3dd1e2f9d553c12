// Package posctx replaces the global MasterSystem/MasterControl/
// DataPersistenceManager singletons with a single explicit Runtime struct
// threaded through every mutating call (spec §9, "Singletons → explicit
// context"). Nothing in this package is a singleton: callers build exactly
// one Runtime in cmd/posctl and pass it (or the slice of fields a given
// call actually needs) down.
package posctx

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/viewtouch/posk/internal/checkmodel"
	"github.com/viewtouch/posk/internal/serial"
	"github.com/viewtouch/posk/internal/settings"
	"github.com/viewtouch/posk/internal/termlink"
)

// Runtime is the process-wide collection of live, mutable state a
// terminal's request handler needs: the check list, the serial allocator,
// settings, and the signal hub. It owns no goroutines itself; those are
// started and stopped by cmd/posctl.
type Runtime struct {
	mu sync.RWMutex

	Checks   *checkmodel.CheckList
	Serials  *serial.Allocator
	Settings *settings.Settings
	Hub      *termlink.Hub

	Log zerolog.Logger

	DataDir     string
	ArchivePath string
}

// New builds a Runtime. checks/serials/set/hub must already be
// constructed (typically from a prior Load); New does not perform I/O.
func New(checks *checkmodel.CheckList, serials *serial.Allocator, set *settings.Settings, hub *termlink.Hub, log zerolog.Logger, dataDir, archivePath string) *Runtime {
	return &Runtime{
		Checks: checks, Serials: serials, Settings: set, Hub: hub,
		Log: log, DataDir: dataDir, ArchivePath: archivePath,
	}
}

// WithCheck locks out concurrent mutation of the live check list while fn
// runs; fn receives the Runtime back so nested helpers can still reach
// Settings/Hub without taking the lock twice.
func (r *Runtime) WithCheck(fn func(rt *Runtime)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

// RLocked is the read-only counterpart of WithCheck, used by handlers that
// only inspect the live check list (e.g. diagnostics, reporting).
func (r *Runtime) RLocked(fn func(rt *Runtime)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r)
}

// SystemCtx bundles a Runtime with the per-request identity (which
// terminal, which employee) a single call needs; it is created fresh for
// every inbound request rather than held across requests.
type SystemCtx struct {
	context.Context
	RT         *Runtime
	TerminalID string
	EmployeeID int64
}

// NewSystemCtx builds a SystemCtx for one inbound request.
func NewSystemCtx(ctx context.Context, rt *Runtime, terminalID string, employeeID int64) SystemCtx {
	return SystemCtx{Context: ctx, RT: rt, TerminalID: terminalID, EmployeeID: employeeID}
}
