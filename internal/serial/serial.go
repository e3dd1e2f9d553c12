// Package serial implements the monotone 31-bit serial number allocator
// assigned to every new Check and Drawer (spec §3). It is never reused
// within a data directory, so the counter's high-water mark is itself
// persisted by the caller (System) across restarts.
package serial

import (
	"fmt"
	"sync"

	"github.com/viewtouch/posk/internal/poserr"
)

// Max is the largest value a SerialNumber may take (31 bits, so it is
// always representable as a positive signed 32-bit integer on disk).
const Max = 1<<31 - 1

// Number is a SerialNumber: unique, monotone, always > 0 once allocated.
type Number int32

// Allocator hands out monotonically increasing Numbers starting above a
// restored high-water mark. Safe for concurrent use: terminals on
// different event loops may request a new check/drawer serial at once.
type Allocator struct {
	mu   sync.Mutex
	last Number
}

// NewAllocator restores an Allocator from the last value persisted in
// System (0 if starting fresh).
func NewAllocator(last Number) *Allocator {
	return &Allocator{last: last}
}

// Next returns the next serial number, strictly greater than any value
// previously returned by this Allocator or passed to NewAllocator.
func (a *Allocator) Next() (Number, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.last >= Max {
		return 0, fmt.Errorf("%w: serial number space exhausted", poserr.ErrFatal)
	}
	a.last++
	return a.last, nil
}

// Last reports the high-water mark, for persisting into System.
func (a *Allocator) Last() Number {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Restore resets the high-water mark, e.g. after loading System from disk.
// It refuses to move the mark backwards, since that would risk reissuing a
// serial number already in use.
func (a *Allocator) Restore(n Number) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > a.last {
		a.last = n
	}
}
