// Package poserr defines the error taxonomy shared by every runtime
// subsystem: persistence, settings, the check model, terminals, and the
// credit-card workflow all return one of these kinds, wrapped with
// fmt.Errorf("...: %w", ...) so callers can errors.Is/errors.As against the
// sentinel while still getting a human-readable message.
package poserr

import "errors"

// Kind sentinels. Wrap these with %w rather than returning them bare so the
// message carries context ("closing an empty check").
var (
	// ErrIO covers file or socket failure, recoverable by retry or by
	// routing to emergency-save.
	ErrIO = errors.New("io error")

	// ErrProtocol covers a malformed version, an out-of-range enumerated
	// value, or a backend response violating its schema.
	ErrProtocol = errors.New("protocol error")

	// ErrState covers an operation not permitted in the current state.
	ErrState = errors.New("invalid state")

	// ErrAuth covers a credit-card backend decline or timeout.
	ErrAuth = errors.New("authorization error")

	// ErrPermission covers an employee lacking the required role.
	ErrPermission = errors.New("permission denied")

	// ErrIntegrity covers a validator detecting data below its ratio
	// threshold.
	ErrIntegrity = errors.New("integrity error")

	// ErrFatal is unrecoverable; the control process should enter
	// ForceShutdown.
	ErrFatal = errors.New("fatal error")
)

// Is reports whether err carries one of the Kind sentinels above.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
