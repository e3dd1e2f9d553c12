package persistence

import (
	"errors"
	"fmt"

	"github.com/viewtouch/posk/internal/poserr"
)

// ErrSaveFailed is the default error recorded for a Tuple whose Save
// returned SaveFailed without an explicit error.
var ErrSaveFailed = fmt.Errorf("%w: tuple save failed", poserr.ErrIO)

// ErrCupsUnhealthy is returned by the CUPS monitor when the health-check
// command exits nonzero or times out.
var ErrCupsUnhealthy = fmt.Errorf("%w: cups health check failed", poserr.ErrIntegrity)

// Is reports whether err matches a known persistence sentinel.
func Is(err, target error) bool { return errors.Is(err, target) }
