package termlink

import (
	"encoding/json"
	"time"
)

// SignalName enumerates the cross-terminal notifications the hub carries
// (spec §4.4: "signal dispatch").
type SignalName string

const (
	SignalMenuChanged     SignalName = "menu_changed"
	SignalSettingsChanged SignalName = "settings_changed"
	SignalCheckChanged    SignalName = "check_changed"
	SignalUpdate          SignalName = "update" // generic Update(flag, value)
	SignalEndDay          SignalName = "end_day"
	SignalKillDialog      SignalName = "kill_dialog"
)

// Signal is one message broadcast or targeted across the terminal network.
type Signal struct {
	Name      SignalName  `json:"name"`
	Flag      int         `json:"flag,omitempty"`
	Value     interface{} `json:"value,omitempty"`
	Source    string      `json:"source,omitempty"` // terminal id that raised it
	Timestamp time.Time   `json:"timestamp"`
}

// NewSignal builds a Signal stamped with the current time.
func NewSignal(name SignalName, source string) Signal {
	return Signal{Name: name, Source: source, Timestamp: time.Now()}
}

// Update builds the generic Update(flag, value) signal used for
// broadcasting a single changed setting/counter across the network.
func Update(source string, flag int, value interface{}) Signal {
	s := NewSignal(SignalUpdate, source)
	s.Flag = flag
	s.Value = value
	return s
}

// ToJSON serializes the signal.
func (s Signal) ToJSON() ([]byte, error) { return json.Marshal(s) }
