// Package persistence implements the DataPersistenceManager supervisor: a
// background ticker that auto-saves every registered piece of critical
// data, skipping cleanly while a terminal is mid-edit or the process is
// shutting down, plus the CUPS health monitor and the two shutdown modes
// (spec §4.2, §6).
package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SaveResult is what one registered save returns.
type SaveResult int

const (
	SaveSuccess SaveResult = iota
	SaveSkipped            // dirty flag was clear, nothing to do
	SaveFailed
)

// Tuple is one unit of critical data the supervisor keeps durable: a name
// for logging/reporting and a save function returning whether anything
// needed writing (spec §4.2: "registered critical-data tuples").
type Tuple struct {
	Name string
	Save func(ctx context.Context) (SaveResult, error)
}

// Report summarizes one auto-save pass across every registered Tuple.
type Report struct {
	At       time.Time
	Success  int
	Skipped  int
	Failed   int
	Failures map[string]error
}

// Outcome classifies an entire Report for callers that just need a single
// traffic-light signal (spec §4.2: SUCCESS/PARTIAL/FAILED reducer).
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomePartial
	OutcomeFailed
)

// Outcome reduces r to a single traffic-light verdict: no failure is
// SUCCESS, failures with no success and no skip are FAILED, and any other
// mix containing a failure is PARTIAL.
func (r Report) Outcome() Outcome {
	switch {
	case r.Failed == 0:
		return OutcomeSuccess
	case r.Success == 0 && r.Skipped == 0:
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}

// EditModeFunc reports whether some terminal currently has an edit mode
// open; auto-save skips entirely while true so it never races a half-typed
// settings edit (spec §4.2).
type EditModeFunc func() bool

// Supervisor runs the auto-save ticker over a fixed set of Tuples.
type Supervisor struct {
	tuples   []Tuple
	interval time.Duration
	inEdit   EditModeFunc
	log      zerolog.Logger

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	lastReport Report
}

// New builds a Supervisor over tuples, ticking every interval.
func New(tuples []Tuple, interval time.Duration, inEdit EditModeFunc, log zerolog.Logger) *Supervisor {
	if inEdit == nil {
		inEdit = func() bool { return false }
	}
	return &Supervisor{
		tuples:   tuples,
		interval: interval,
		inEdit:   inEdit,
		log:      log.With().Str("component", "persistence_supervisor").Logger(),
	}
}

// Start launches the background ticker. Safe to call once; a second call
// before Stop is a no-op.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run(ctx)
}

// Stop blocks until the background ticker has exited.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// LastReport returns the most recently completed auto-save Report.
func (s *Supervisor) LastReport() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

func (s *Supervisor) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Supervisor) tick(ctx context.Context) {
	if s.inEdit() {
		s.log.Debug().Msg("auto-save skipped: edit mode open")
		return
	}

	report := Report{At: time.Now(), Failures: map[string]error{}}
	for _, t := range s.tuples {
		result, err := t.Save(ctx)
		switch {
		case err != nil || result == SaveFailed:
			report.Failed++
			if err == nil {
				err = ErrSaveFailed
			}
			report.Failures[t.Name] = err
			s.log.Error().Err(err).Str("tuple", t.Name).Msg("auto-save failed")
		case result == SaveSkipped:
			report.Skipped++
		default:
			report.Success++
		}
	}

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	if report.Outcome() != OutcomeSuccess {
		s.log.Warn().Int("success", report.Success).Int("skipped", report.Skipped).Int("failed", report.Failed).Msg("auto-save pass incomplete")
	}
}
