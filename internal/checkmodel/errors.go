package checkmodel

import (
	"errors"
	"fmt"

	"github.com/viewtouch/posk/internal/poserr"
)

var (
	// ErrWrongState is returned for an operation not permitted in the
	// current state (e.g. adding to a closed SubCheck).
	ErrWrongState = fmt.Errorf("%w: wrong state", poserr.ErrState)

	// ErrNothingToSplit is returned by split_by_seat when only one seat
	// is present on the SubCheck.
	ErrNothingToSplit = fmt.Errorf("%w: nothing to split", poserr.ErrState)

	// ErrNotFound is returned when an Order or SubCheck reference does
	// not exist on the Check.
	ErrNotFound = fmt.Errorf("%w: not found", poserr.ErrState)

	// ErrPermission is returned when an operation (e.g. voiding a closed
	// SubCheck) requires manager authority the caller lacks.
	ErrPermission = poserr.ErrPermission
)

// Is reports whether err matches a known checkmodel sentinel, unwrapping
// as errors.Is would.
func Is(err, target error) bool { return errors.Is(err, target) }
