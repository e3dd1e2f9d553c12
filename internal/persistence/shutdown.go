package persistence

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ShutdownController sequences the two shutdown paths the supervisor
// offers. PrepareForShutdown is the clean path a terminal-initiated "exit"
// takes: it forces every open edit mode closed and then deliberately skips
// the validate/save sweep, since recent auto-saves already cover it and a
// hang mid-shutdown is exactly what the supervisor exists to avoid.
// ForceShutdown is the crash/signal path: it additionally runs an
// EmergencySave limited to checks and settings (spec §4.2).
type ShutdownController struct {
	inProgress int32
	exitEdit   func()
	emergencySave func(ctx context.Context) error
	log        zerolog.Logger
}

// NewShutdownController wires exitEdit (forces every terminal's edit mode
// closed, saving first) and emergencySave (checks+settings only).
func NewShutdownController(exitEdit func(), emergencySave func(ctx context.Context) error, log zerolog.Logger) *ShutdownController {
	return &ShutdownController{
		exitEdit:      exitEdit,
		emergencySave: emergencySave,
		log:           log.With().Str("component", "shutdown_controller").Logger(),
	}
}

// InProgress reports whether a shutdown has started, so the auto-save
// ticker and the validator can both skip their own work once this is true.
func (s *ShutdownController) InProgress() bool {
	return atomic.LoadInt32(&s.inProgress) != 0
}

// PrepareForShutdown flips shutdown_in_progress, force-exits any open edit
// mode, and deliberately does not run the validate/save sweep.
func (s *ShutdownController) PrepareForShutdown() {
	if !atomic.CompareAndSwapInt32(&s.inProgress, 0, 1) {
		return
	}
	s.log.Info().Msg("preparing for shutdown")
	if s.exitEdit != nil {
		s.exitEdit()
	}
}

// ForceShutdown runs PrepareForShutdown's sequence and then an
// EmergencySave of checks and settings, logging but never blocking on any
// error it hits: shutdown must never deadlock (spec §7: "never deadlock on
// shutdown").
func (s *ShutdownController) ForceShutdown(ctx context.Context) {
	s.PrepareForShutdown()
	if s.emergencySave == nil {
		return
	}
	if err := s.emergencySave(ctx); err != nil {
		s.log.Error().Err(err).Msg("emergency save failed during force shutdown")
	}
}
