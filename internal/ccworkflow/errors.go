package ccworkflow

import (
	"errors"
	"fmt"

	"github.com/viewtouch/posk/internal/poserr"
)

var (
	// ErrRateLimited is returned when a terminal has exceeded its
	// authorization-attempt budget (spec §4.6).
	ErrRateLimited = fmt.Errorf("%w: authorization attempts rate limited", poserr.ErrState)

	// ErrDeclined is returned when the backend explicitly declines a
	// request; DeclineText on the returned AuthResult carries the reason.
	ErrDeclined = fmt.Errorf("%w: card declined", poserr.ErrState)

	// ErrBackendUnreachable wraps a transport-level failure talking to
	// the configured card backend.
	ErrBackendUnreachable = poserr.ErrIO
)

// Is reports whether err matches a known ccworkflow sentinel.
func Is(err, target error) bool { return errors.Is(err, target) }
