package settings

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/persist"
	"github.com/viewtouch/posk/internal/timeinfo"
)

func TestMediaFirstID(t *testing.T) {
	require.Equal(t, 3, MediaFirstID([]int{1, 2, 4}, 1))
	require.Equal(t, 5, MediaFirstID([]int{1, 2, 4}, 4))
	require.Equal(t, 1, MediaFirstID(nil, 1))
}

func TestDListReassignsDuplicateID(t *testing.T) {
	d := NewDList[*DiscountInfo]()
	d.Add(&DiscountInfo{ID: 5, Name: "first"})
	d.Add(&DiscountInfo{ID: 5, Name: "second"})

	items := d.Items()
	require.Len(t, items, 2)
	require.NotEqual(t, items[0].MediaID(), items[1].MediaID())
}

func TestCouponAppliesTimeExclusiveEnd(t *testing.T) {
	start := timeinfo.New(time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC))
	end := timeinfo.New(time.Date(2026, 7, 31, 11, 0, 0, 0, time.UTC))
	c := &CouponInfo{StartTime: start, EndTime: end}

	require.True(t, c.AppliesTime(timeinfo.New(time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC))))
	require.True(t, c.AppliesTime(timeinfo.New(time.Date(2026, 7, 31, 10, 59, 0, 0, time.UTC))))
	require.False(t, c.AppliesTime(timeinfo.New(time.Date(2026, 7, 31, 11, 0, 0, 0, time.UTC))))
}

func TestSettingsSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		SettingsDat: filepath.Join(dir, "settings.dat"),
		MediaDat:    filepath.Join(dir, "media.dat"),
		ConfDir:     dir,
	}

	s := New()
	s.StoreName = "Test Diner"
	s.Tax.Food = money.FltToPercent(0.0825)
	s.TaxTakeoutFood = true
	s.FamilyPrinter = []int{0, 1, 2}
	s.Discounts.Add(&DiscountInfo{ID: 1, Active: true, Name: "Local 10%", Percent: money.FltToPercent(0.10), ByAmount: false})
	s.CreditCards.Add(&CreditCardInfo{ID: GlobalMediaID + 1, Active: true, Name: "Visa", CardType: 1})

	require.NoError(t, Save(s, paths))

	loaded, err := Load(paths)
	require.NoError(t, err)
	require.Equal(t, "Test Diner", loaded.StoreName)
	require.Equal(t, s.Tax.Food, loaded.Tax.Food)
	require.True(t, loaded.TaxTakeoutFood)
	require.Equal(t, []int{0, 1, 2}, loaded.FamilyPrinter)

	_, ok := loaded.Discounts.Find(1)
	require.True(t, ok)
	_, ok = loaded.CreditCards.Find(GlobalMediaID + 1)
	require.True(t, ok)
}

func TestSettingsLoadMissingFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		SettingsDat: filepath.Join(dir, "nope.dat"),
		MediaDat:    filepath.Join(dir, "nope-media.dat"),
		ConfDir:     dir,
	}

	s, err := Load(paths)
	require.NoError(t, err)
	require.Equal(t, 30, s.AutoSaveInterval)
}

func TestINIOverlayWinsOverDat(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		SettingsDat: filepath.Join(dir, "settings.dat"),
		MediaDat:    filepath.Join(dir, "media.dat"),
		ConfDir:     dir,
	}

	s := New()
	s.Tax.GST = money.FltToPercent(0.05)
	require.NoError(t, Save(s, paths))

	// Hand-edit the ini overlay after save, as an operator would.
	kv, err := persist.LoadKeyValueFile(paths.taxINI())
	require.NoError(t, err)
	kv.Set("Sales Tax Canada", "GST", "6.5000")
	require.NoError(t, kv.Save(paths.taxINI()))

	loaded, err := Load(paths)
	require.NoError(t, err)
	require.InDelta(t, 0.065, money.PercentToFlt(loaded.Tax.GST), 0.0001)
}
