package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/viewtouch/posk/internal/checkmodel"
	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/serial"
	"github.com/viewtouch/posk/internal/settings"
	"github.com/viewtouch/posk/internal/timeinfo"
)

func newClosedCheck(t *testing.T, alloc *serial.Allocator, total int64) *checkmodel.Check {
	t.Helper()
	list := checkmodel.NewCheckList()
	check, err := checkmodel.NewCheck(list, alloc, settings.CustomerDineIn, "Table 1", 2)
	require.NoError(t, err)
	check.SubChecks[0].Totals.Balance = 0
	check.SubChecks[0].Totals.TotalCost = money.Money(total)
	check.SubChecks[0].Status = checkmodel.SubCheckClosed
	return check
}

func TestCheckEndDayRejectsOutstandingBalance(t *testing.T) {
	alloc := serial.NewAllocator(0)
	check := newClosedCheck(t, alloc, 1000)
	check.SubChecks[0].Totals.Balance = 500

	err := CheckEndDay([]*checkmodel.Check{check}, nil)
	require.Error(t, err)
}

func TestCheckEndDayRejectsUnpulledDrawer(t *testing.T) {
	drawer := &checkmodel.Drawer{SerialNumber: 1, Status: checkmodel.DrawerOpen}
	err := CheckEndDay(nil, []*checkmodel.Drawer{drawer})
	require.Error(t, err)
}

func TestCheckEndDayPassesWhenSettled(t *testing.T) {
	alloc := serial.NewAllocator(0)
	check := newClosedCheck(t, alloc, 1000)
	drawer := &checkmodel.Drawer{SerialNumber: 1, Status: checkmodel.DrawerBalanced}

	err := CheckEndDay([]*checkmodel.Check{check}, []*checkmodel.Drawer{drawer})
	require.NoError(t, err)
}

func TestPersistAndLoadArchiveRoundTrips(t *testing.T) {
	dir := t.TempDir()
	alloc := serial.NewAllocator(0)
	check := newClosedCheck(t, alloc, 2500)
	drawer := &checkmodel.Drawer{SerialNumber: 1, Status: checkmodel.DrawerBalanced, ExpectedCash: 2500, CountedCash: 2500}

	start := timeinfo.New(time.Date(2026, 7, 30, 4, 0, 0, 0, time.UTC))
	a := Build([]*checkmodel.Check{check}, []*checkmodel.Drawer{drawer}, alloc.Last(), start)
	a.AddException("drawer 1 short by 0 at pull")

	require.NoError(t, Persist(a, dir))

	loaded, err := Load(dir, start)
	require.NoError(t, err)
	require.Len(t, loaded.Checks, 1)
	require.Equal(t, check.SerialNumber, loaded.Checks[0].SerialNumber)
	require.Equal(t, check.SubChecks[0].Totals.TotalCost, loaded.Checks[0].SubChecks[0].Totals.TotalCost)
	require.Len(t, loaded.Drawers, 1)
	require.Equal(t, drawer.ExpectedCash, loaded.Drawers[0].ExpectedCash)
	require.Equal(t, []string{"drawer 1 short by 0 at pull"}, loaded.Exceptions())
}
