package checkmodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/serial"
	"github.com/viewtouch/posk/internal/settings"
)

func newTestSettings() *settings.Settings {
	s := settings.New()
	s.Tax.Food = money.FltToPercent(0.0825)
	return s
}

func TestNewDineInCheckOneItemTwoTaxes(t *testing.T) {
	s := newTestSettings()
	s.Tax.GST = money.FltToPercent(0.05)

	list := NewCheckList()
	alloc := serial.NewAllocator(0)
	check, err := NewCheck(list, alloc, settings.CustomerDineIn, "Table 4", 2)
	require.NoError(t, err)

	sub := check.SubChecks[0]
	require.NoError(t, AddOrder(check, sub, &Order{
		ItemName: "Burger", ItemType: ItemNormal, TaxCategory: TaxCategoryFood,
		Count: 1, ItemCost: 1299,
	}))

	FigureTotals(check, sub, s)

	require.Equal(t, money.Money(1299), sub.Totals.Subtotal)
	require.Equal(t, money.Money(107), sub.Totals.TaxFood)
	require.Equal(t, money.Money(65), sub.Totals.TaxGST)
	require.Equal(t, money.Money(1299+107+65), sub.Totals.TotalCost)
	require.Equal(t, sub.Totals.TotalCost, sub.Totals.Balance)
}

func TestTakeoutExemptsFoodTax(t *testing.T) {
	s := newTestSettings()
	s.TaxTakeoutFood = false // exemption active: takeout food is not taxed

	list := NewCheckList()
	alloc := serial.NewAllocator(0)
	check, err := NewCheck(list, alloc, settings.CustomerTakeout, "To Go", 1)
	require.NoError(t, err)

	sub := check.SubChecks[0]
	require.NoError(t, AddOrder(check, sub, &Order{
		ItemName: "Burger", ItemType: ItemNormal, TaxCategory: TaxCategoryFood,
		Count: 1, ItemCost: 1000,
	}))

	FigureTotals(check, sub, s)
	require.Equal(t, money.Zero, sub.Totals.TaxFood)
	require.Equal(t, money.Money(1000), sub.Totals.TotalCost)
}

func TestSplitBySeatThenMergeOpenRoundTrips(t *testing.T) {
	list := NewCheckList()
	alloc := serial.NewAllocator(0)
	check, err := NewCheck(list, alloc, settings.CustomerDineIn, "Table 9", 2)
	require.NoError(t, err)

	sub := check.SubChecks[0]
	require.NoError(t, AddOrder(check, sub, &Order{ItemName: "Soup", Count: 1, ItemCost: 500, Seat: 1}))
	require.NoError(t, AddOrder(check, sub, &Order{ItemName: "Steak", Count: 1, ItemCost: 700, Seat: 2}))

	require.NoError(t, SplitBySeat(check))
	require.Len(t, check.SubChecks, 2)

	s := newTestSettings()
	var total money.Money
	for _, sc := range check.SubChecks {
		FigureTotals(check, sc, s)
		total = total.Add(sc.Totals.Subtotal)
	}
	require.Equal(t, money.Money(1200), total)

	require.NoError(t, MergeOpen(check))
	require.Len(t, check.SubChecks, 1)

	merged := check.SubChecks[0]
	require.Len(t, merged.Orders, 2)
	names := []string{merged.Orders[0].ItemName, merged.Orders[1].ItemName}
	require.Contains(t, names, "Soup")
	require.Contains(t, names, "Steak")
}

func TestMergeOpenPrefersLowestSubCheckNumber(t *testing.T) {
	check := &Check{SerialNumber: 1}
	check.SubChecks = []*SubCheck{
		{Number: 3, Status: SubCheckOpen, Orders: []*Order{{OrderID: 1, ItemName: "A"}}},
		{Number: 1, Status: SubCheckOpen, Orders: []*Order{{OrderID: 2, ItemName: "B"}}},
		{Number: 2, Status: SubCheckOpen, Orders: []*Order{{OrderID: 3, ItemName: "C"}}},
	}

	require.NoError(t, MergeOpen(check))
	require.Len(t, check.SubChecks, 1)
	require.Equal(t, 1, check.SubChecks[0].Number)
	require.Len(t, check.SubChecks[0].Orders, 3)
}

func TestDiscountReducesTaxableBaseAndBalance(t *testing.T) {
	s := newTestSettings()

	list := NewCheckList()
	alloc := serial.NewAllocator(0)
	check, err := NewCheck(list, alloc, settings.CustomerDineIn, "Table 1", 1)
	require.NoError(t, err)

	sub := check.SubChecks[0]
	require.NoError(t, AddOrder(check, sub, &Order{
		ItemName: "Burger", TaxCategory: TaxCategoryFood, Count: 1, ItemCost: 1000,
	}))
	sub.Payments = append(sub.Payments, &Payment{
		TenderType: TenderDiscount, Value: -500, Valid: true,
	})

	FigureTotals(check, sub, s)
	require.Equal(t, money.Money(1000), sub.Totals.Subtotal)
	require.Equal(t, money.Money(41), sub.Totals.TaxFood) // 8.25% of 500
	require.Equal(t, money.Money(541), sub.Totals.TotalCost)
	require.Equal(t, money.Money(541), sub.Totals.Balance)
}

func TestSettleRequiresZeroBalance(t *testing.T) {
	sub := &SubCheck{Status: SubCheckOpen, Totals: Totals{Balance: 500}}
	err := Settle(sub, nil)
	require.ErrorIs(t, err, ErrWrongState)

	sub.Totals.Balance = 0
	var notified []string
	sub.Orders = []*Order{{OrderID: 1, ItemName: "Soup"}}
	require.NoError(t, Settle(sub, func(o *Order) { notified = append(notified, o.ItemName) }))
	require.Equal(t, SubCheckClosed, sub.Status)
	require.Equal(t, []string{"Soup"}, notified)
}

func TestVoidClosedRequiresManager(t *testing.T) {
	sub := &SubCheck{Status: SubCheckClosed}
	require.ErrorIs(t, Void(sub, false), ErrPermission)
	require.NoError(t, Void(sub, true))
	require.Equal(t, SubCheckVoided, sub.Status)
}

func TestRemoveCountSplitsOffDetachedOrder(t *testing.T) {
	list := NewCheckList()
	alloc := serial.NewAllocator(0)
	check, err := NewCheck(list, alloc, settings.CustomerDineIn, "Table 2", 1)
	require.NoError(t, err)

	sub := check.SubChecks[0]
	require.NoError(t, AddOrder(check, sub, &Order{ItemName: "Fries", Count: 3, ItemCost: 200}))

	detached, err := RemoveCount(check, sub, sub.Orders[0], 1)
	require.NoError(t, err)
	require.Equal(t, 1, detached.Count)
	require.Equal(t, 2, sub.Orders[0].Count)
	require.NotEqual(t, sub.Orders[0].OrderID, detached.OrderID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "current"), 0o755))

	list := NewCheckList()
	alloc := serial.NewAllocator(0)
	check, err := NewCheck(list, alloc, settings.CustomerDineIn, "Table 7", 3)
	require.NoError(t, err)

	sub := check.SubChecks[0]
	require.NoError(t, AddOrder(check, sub, &Order{
		ItemName: "Salad", TaxCategory: TaxCategoryFood, Count: 2, ItemCost: 450, Seat: 1,
	}))
	FigureTotals(check, sub, newTestSettings())
	require.NoError(t, Save(check, dir))
	require.False(t, check.Dirty)

	loaded, err := Load(dir, check.SerialNumber)
	require.NoError(t, err)
	require.Equal(t, check.SerialNumber, loaded.SerialNumber)
	require.Equal(t, check.Label, loaded.Label)
	require.Len(t, loaded.SubChecks, 1)
	require.Len(t, loaded.SubChecks[0].Orders, 1)
	require.Equal(t, "Salad", loaded.SubChecks[0].Orders[0].ItemName)
	require.Equal(t, sub.Totals, loaded.SubChecks[0].Totals)
}
