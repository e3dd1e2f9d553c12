package printer

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/viewtouch/posk/internal/checkmodel"
	"github.com/viewtouch/posk/internal/settings"
)

// Manager owns one Channel per live printer target and resolves which
// target(s) an Order should print to, including the kitchen-video
// dual-delivery rule (spec §4.5).
type Manager struct {
	mu       sync.RWMutex
	channels map[int]*Channel
	dial     func(targetID int) (*Channel, error)
}

// NewManager builds a Manager that lazily dials targets via dial.
func NewManager(dial func(targetID int) (*Channel, error)) *Manager {
	return &Manager{channels: make(map[int]*Channel), dial: dial}
}

// Resolve returns the printer target id(s) order should be sent to, per
// its PrinterID override if set, else the store's family->printer mapping.
// A family with a configured video target (VideoTarget) additionally fans
// out to it when it differs from the primary, so both the printer and the
// video unit see the order. The kitchen notify printer ids get no second
// delivery of their own: they are returned as the single primary target.
func Resolve(order *checkmodel.Order, s *settings.Settings) []int {
	var targets []int

	primary := order.PrinterID
	if primary == checkmodel.PrinterDefault {
		s.RLocked(func(settings *settings.Settings) {
			if order.ItemFamily >= 0 && order.ItemFamily < len(settings.FamilyPrinter) {
				primary = settings.FamilyPrinter[order.ItemFamily]
			}
		})
	}
	if primary == checkmodel.PrinterNone {
		return nil
	}
	targets = append(targets, primary)

	var video int
	s.RLocked(func(settings *settings.Settings) {
		if order.ItemFamily >= 0 && order.ItemFamily < len(settings.VideoTarget) {
			video = settings.VideoTarget[order.ItemFamily]
		}
	})
	if video != 0 && video != primary {
		targets = append(targets, video)
	}
	return targets
}

// Dispatch sends job to targetID, dialing a fresh Channel if none is open
// or the existing one is dead.
func (m *Manager) Dispatch(job *Job) error {
	ch, err := m.channelFor(job.TargetID)
	if err != nil {
		return err
	}
	if err := ch.Send(job); err != nil {
		log.Warn().Int("target", job.TargetID).Err(err).Msg("print job send failed")
		return err
	}
	return nil
}

func (m *Manager) channelFor(targetID int) (*Channel, error) {
	m.mu.RLock()
	ch, ok := m.channels[targetID]
	m.mu.RUnlock()
	if ok && !ch.Dead() {
		return ch, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[targetID]; ok && !ch.Dead() {
		return ch, nil
	}
	fresh, err := m.dial(targetID)
	if err != nil {
		return nil, fmt.Errorf("dial print target %d: %w", targetID, err)
	}
	m.channels[targetID] = fresh
	return fresh, nil
}
