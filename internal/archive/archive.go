// Package archive implements the EndDay pipeline: it moves a completed
// business day's checks, drawers, and exception logs out of the live
// collections into an immutable, versioned Archive bundle on disk (spec
// §4.6).
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/viewtouch/posk/internal/checkmodel"
	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/persist"
	"github.com/viewtouch/posk/internal/poserr"
	"github.com/viewtouch/posk/internal/serial"
	"github.com/viewtouch/posk/internal/timeinfo"
)

// Stage is eod_processing's position in the EndDay state machine.
type Stage int

const (
	StageBegin Stage = iota
	StageSAF
	StageSettle
	StageFinal
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageBegin:
		return "begin"
	case StageSAF:
		return "saf"
	case StageSettle:
		return "settle"
	case StageFinal:
		return "final"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Archive is an immutable bundle of one completed business day.
type Archive struct {
	StartTime timeinfo.TimeInfo
	Checks    []*checkmodel.Check
	Drawers   []*checkmodel.Drawer
	LastSerial serial.Number

	exceptions []string
}

// AddException appends one free-text exception entry (e.g. a batch
// settlement failure or a void that needed a manager override).
func (a *Archive) AddException(msg string) {
	a.exceptions = append(a.exceptions, msg)
}

// Exceptions returns the accumulated exception log, in append order.
func (a *Archive) Exceptions() []string { return a.exceptions }

// dirName is the conventional archive directory name: the start time in
// the same ISO-ish layout the original C++ used for its archive paths.
func dirName(start timeinfo.TimeInfo) string {
	return start.Time().Format("2006-01-02T15-04-05")
}

// Dir returns the archive's directory path under archivePath.
func (a *Archive) Dir(archivePath string) string {
	return filepath.Join(archivePath, dirName(a.StartTime))
}

// CheckEndDayError reports why EndDay's preconditions are not satisfied.
type CheckEndDayError struct {
	Reasons []string
}

func (e *CheckEndDayError) Error() string {
	return fmt.Sprintf("end of day blocked: %v", e.Reasons)
}

// CheckEndDay verifies the preconditions EndDay requires: no open check
// carries an outstanding balance, and every drawer is pulled or balanced
// (spec §4.6 step 1; the CUPS-health precondition is the caller's
// responsibility since it depends on the live printer manager).
func CheckEndDay(checks []*checkmodel.Check, drawers []*checkmodel.Drawer) error {
	var reasons []string

	for _, c := range checks {
		for _, sub := range c.SubChecks {
			if sub.Status != checkmodel.SubCheckVoided && sub.Totals.Balance != 0 {
				reasons = append(reasons, fmt.Sprintf("check %d subcheck %d has outstanding balance", c.SerialNumber, sub.Number))
			}
		}
	}

	for _, d := range drawers {
		if d.Status != checkmodel.DrawerPulled && d.Status != checkmodel.DrawerBalanced {
			reasons = append(reasons, fmt.Sprintf("drawer %d is not pulled or balanced", d.SerialNumber))
		}
	}

	if len(reasons) > 0 {
		return &CheckEndDayError{Reasons: reasons}
	}
	return nil
}

// Build assembles a new Archive from the live collections. It does not
// write anything to disk and does not clear the caller's slices; the
// caller clears live state only after Persist succeeds (spec §4.6 step 4:
// "on success clear the live collections").
func Build(checks []*checkmodel.Check, drawers []*checkmodel.Drawer, lastSerial serial.Number, now timeinfo.TimeInfo) *Archive {
	return &Archive{
		StartTime:  now,
		Checks:     checks,
		Drawers:    drawers,
		LastSerial: lastSerial,
	}
}

// CurrentArchiveVersion is the on-disk archive manifest format version.
const CurrentArchiveVersion int32 = 1

// Persist writes the archive bundle under archivePath/<start_time>/,
// laid out checks/, drawers/, exceptions/, per spec §6. Each check is
// written with checkmodel.Save rooted at checks/ (so it lands in
// checks/current/check_<serial>.dat), letting a later reload use the exact
// same decoder as the live system.
func Persist(a *Archive, archivePath string) error {
	dir := a.Dir(archivePath)
	for _, sub := range []string{filepath.Join("checks", "current"), "drawers", "exceptions"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("%w: create archive directory %s: %v", poserr.ErrIO, sub, err)
		}
	}

	for _, c := range a.Checks {
		if err := checkmodel.Save(c, filepath.Join(dir, "checks")); err != nil {
			return fmt.Errorf("archive check %d: %w", c.SerialNumber, err)
		}
	}

	if err := persist.AtomicWrite(filepath.Join(dir, "drawers", "drawers.dat"), CurrentArchiveVersion, func(f *persist.OutputDataFile) error {
		writeDrawers(f, a.Drawers)
		return f.Err()
	}); err != nil {
		return err
	}

	if err := persist.AtomicWrite(filepath.Join(dir, "exceptions", "exceptions.dat"), CurrentArchiveVersion, func(f *persist.OutputDataFile) error {
		f.WriteInt32(int32(len(a.exceptions)))
		for _, msg := range a.exceptions {
			f.WriteStr(msg)
		}
		return f.Err()
	}); err != nil {
		return err
	}

	return nil
}

// Load reconstructs a previously persisted Archive from archivePath's
// directory for start.
func Load(archivePath string, start timeinfo.TimeInfo) (*Archive, error) {
	dir := filepath.Join(archivePath, dirName(start))
	a := &Archive{StartTime: start}

	entries, err := os.ReadDir(filepath.Join(dir, "checks", "current"))
	if err != nil {
		return nil, fmt.Errorf("%w: list archived checks: %v", poserr.ErrIO, err)
	}
	for _, entry := range entries {
		var n int64
		if _, err := fmt.Sscanf(entry.Name(), "check_%d.dat", &n); err != nil {
			continue
		}
		c, err := checkmodel.Load(filepath.Join(dir, "checks"), serial.Number(n))
		if err != nil {
			return nil, fmt.Errorf("load archived check %d: %w", n, err)
		}
		a.Checks = append(a.Checks, c)
	}

	if err := persist.ReadVersioned(filepath.Join(dir, "drawers", "drawers.dat"), func(f *persist.InputDataFile) error {
		a.Drawers = readDrawers(f)
		return f.Err()
	}); err != nil {
		return nil, err
	}

	if err := persist.ReadVersioned(filepath.Join(dir, "exceptions", "exceptions.dat"), func(f *persist.InputDataFile) error {
		n := f.ReadInt32()
		for i := int32(0); i < n; i++ {
			a.exceptions = append(a.exceptions, f.ReadStr())
		}
		return f.Err()
	}); err != nil {
		return nil, err
	}

	return a, nil
}

func writeDrawers(f *persist.OutputDataFile, drawers []*checkmodel.Drawer) {
	f.WriteInt32(int32(len(drawers)))
	for _, d := range drawers {
		f.WriteInt32(int32(d.SerialNumber))
		f.WriteInt64(d.EmployeeID)
		f.WriteInt32(int32(d.Status))
		f.WriteInt64(int64(d.StartingFloat))
		f.WriteInt64(int64(d.AppliedCash))
		f.WriteInt64(int64(d.ExpectedCash))
		f.WriteInt64(int64(d.CountedCash))
		f.WriteInt64(d.TimeOpened.Time().Unix())
		f.WriteInt64(d.TimePulled.Time().Unix())
	}
}

func readDrawers(f *persist.InputDataFile) []*checkmodel.Drawer {
	n := f.ReadInt32()
	drawers := make([]*checkmodel.Drawer, 0, n)
	for i := int32(0); i < n; i++ {
		d := &checkmodel.Drawer{
			SerialNumber:  serial.Number(f.ReadInt32()),
			EmployeeID:    f.ReadInt64(),
			Status:        checkmodel.DrawerStatus(f.ReadInt32()),
			StartingFloat: money.Money(f.ReadInt64()),
			AppliedCash:   money.Money(f.ReadInt64()),
			ExpectedCash:  money.Money(f.ReadInt64()),
			CountedCash:   money.Money(f.ReadInt64()),
		}
		d.TimeOpened = timeinfo.New(time.Unix(f.ReadInt64(), 0))
		d.TimePulled = timeinfo.New(time.Unix(f.ReadInt64(), 0))
		drawers = append(drawers, d)
	}
	return drawers
}
