package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/persist"
)

// Paths bundles the on-disk locations Settings reads and writes, mirroring
// spec §6: a binary settings.dat, a global media.dat, and three sectioned
// .ini overlays under <viewtouch>/dat/conf/.
type Paths struct {
	SettingsDat string
	MediaDat    string
	ConfDir     string // holds tax.ini, fees.ini, fastfood.ini
}

func (p Paths) taxINI() string      { return filepath.Join(p.ConfDir, "tax.ini") }
func (p Paths) feesINI() string     { return filepath.Join(p.ConfDir, "fees.ini") }
func (p Paths) fastfoodINI() string { return filepath.Join(p.ConfDir, "fastfood.ini") }

// Load reads settings.dat (if present), overlays the .ini files on top
// (.ini wins on read, per spec §6), and loads media.dat's global rows into
// the returned Settings. A missing settings.dat is not an error: Load
// returns defaults overlaid by whatever .ini files exist.
func Load(p Paths) (*Settings, error) {
	s := New()

	if err := loadDat(s, p.SettingsDat); err != nil && !isNotExist(err) {
		return nil, err
	}
	if err := loadMediaDat(s, p.MediaDat); err != nil && !isNotExist(err) {
		return nil, err
	}
	if err := overlayINI(s, p); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes settings.dat, media.dat (global rows only), and all three
// .ini overlays, so that on read, .ini values continue to win (spec §6:
// "both are written on save").
func Save(s *Settings, p Paths) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := persist.AtomicWrite(p.SettingsDat, CurrentVersion, func(o *persist.OutputDataFile) error {
		writeDatFields(o, s)
		return o.Err()
	}); err != nil {
		return err
	}

	if err := saveMediaDat(s, p.MediaDat); err != nil {
		return err
	}
	return saveINI(s, p)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func loadDat(s *Settings, path string) error {
	return persist.ReadVersioned(path, func(in *persist.InputDataFile) error {
		readDatFields(in, s)
		return in.Err()
	})
}

// writeDatFields and readDatFields must stay in lockstep: every field
// written here must be read in the same order below, with new fields
// appended behind a version gate (spec §6).
func writeDatFields(o *persist.OutputDataFile, s *Settings) {
	o.WriteStr(s.StoreName)

	o.WriteInt64(int64(s.Tax.Food))
	o.WriteInt64(int64(s.Tax.Alcohol))
	o.WriteInt64(int64(s.Tax.Room))
	o.WriteInt64(int64(s.Tax.Merchandise))
	o.WriteInt64(int64(s.Tax.GST))
	o.WriteInt64(int64(s.Tax.PST))
	o.WriteInt64(int64(s.Tax.HST))
	o.WriteInt64(int64(s.Tax.QST))
	o.WriteInt64(int64(s.Tax.VAT))
	o.WriteInt8(boolToInt8(s.TaxTakeoutFood))
	o.WriteInt8(boolToInt8(s.TaxInclusive))
	o.WriteInt8(int8(s.PriceRounding))

	// double_mult is written as Flt from VersionDoubleMultFlt on; since
	// CurrentVersion >= VersionDoubleMultFlt always holds for a file we
	// write ourselves, we always emit the float form.
	o.WriteFlt(s.DoubleMult)

	o.WriteInt32(int32(s.AutoSaveInterval))
	o.WriteInt32(int32(s.SystemCallTimeout))
	o.WriteInt32(int32(s.ScreenBlankTime))
	o.WriteInt32(int32(s.StartPageTimeout))

	o.WriteInt8(int8(s.PasswordMode))
	o.WriteInt8(boolToInt8(s.UseEntireCCNum))
	o.WriteInt8(boolToInt8(s.AllowCCPreauth))
	o.WriteInt8(boolToInt8(s.AutoAuthorize))
	o.WriteInt8(boolToInt8(s.AutoCompleteCC))
	o.WriteInt32(int32(s.CCConnectTimeout))

	o.WriteInt8(boolToInt8(s.FinalAuthReceipt))
	o.WriteInt8(boolToInt8(s.VoidReceipt))
	o.WriteInt8(boolToInt8(s.CashReceipt))

	o.WriteInt32(int32(len(s.FamilyPrinter)))
	for _, v := range s.FamilyPrinter {
		o.WriteInt32(int32(v))
	}
	o.WriteInt32(int32(len(s.VideoTarget)))
	for _, v := range s.VideoTarget {
		o.WriteInt32(int32(v))
	}

	o.WriteInt32(int32(s.WageWeekStart))

	// version >= VersionArchiveKeepInactiveMedia
	o.WriteInt8(boolToInt8(s.ArchiveKeepInactiveMedia))
	// version >= VersionCupsMonitor
	o.WriteInt32(int32(s.CupsCheckInterval))

	// Local-scope media rows travel with settings.dat; global rows live
	// in media.dat (spec §3).
	writeLocalDList(o, s.Discounts, WriteDiscount)
	writeLocalDList(o, s.Coupons, WriteCoupon)
	writeLocalDList(o, s.CreditCards, WriteCreditCard)
	writeLocalDList(o, s.Comps, WriteComp)
	writeLocalDList(o, s.Meals, WriteMeal)
}

func readDatFields(in *persist.InputDataFile, s *Settings) {
	s.StoreName = in.ReadStr()

	s.Tax.Food = money.Percent(in.ReadInt64())
	s.Tax.Alcohol = money.Percent(in.ReadInt64())
	s.Tax.Room = money.Percent(in.ReadInt64())
	s.Tax.Merchandise = money.Percent(in.ReadInt64())
	s.Tax.GST = money.Percent(in.ReadInt64())
	s.Tax.PST = money.Percent(in.ReadInt64())
	s.Tax.HST = money.Percent(in.ReadInt64())
	s.Tax.QST = money.Percent(in.ReadInt64())
	s.Tax.VAT = money.Percent(in.ReadInt64())
	s.TaxTakeoutFood = int8ToBool(in.ReadInt8())
	s.TaxInclusive = int8ToBool(in.ReadInt8())
	s.PriceRounding = money.RoundingMode(in.ReadInt8())

	if in.AtLeast(VersionDoubleMultFlt) {
		s.DoubleMult = in.ReadFlt()
	} else {
		s.DoubleMult = float64(in.ReadInt32())
	}

	s.AutoSaveInterval = int(in.ReadInt32())
	s.SystemCallTimeout = int(in.ReadInt32())
	s.ScreenBlankTime = int(in.ReadInt32())
	s.StartPageTimeout = int(in.ReadInt32())

	s.PasswordMode = PasswordMode(in.ReadInt8())
	s.UseEntireCCNum = int8ToBool(in.ReadInt8())
	s.AllowCCPreauth = int8ToBool(in.ReadInt8())
	s.AutoAuthorize = int8ToBool(in.ReadInt8())
	s.AutoCompleteCC = int8ToBool(in.ReadInt8())
	s.CCConnectTimeout = int(in.ReadInt32())

	s.FinalAuthReceipt = int8ToBool(in.ReadInt8())
	s.VoidReceipt = int8ToBool(in.ReadInt8())
	s.CashReceipt = int8ToBool(in.ReadInt8())

	n := int(in.ReadInt32())
	s.FamilyPrinter = make([]int, n)
	for i := range s.FamilyPrinter {
		s.FamilyPrinter[i] = int(in.ReadInt32())
	}
	n = int(in.ReadInt32())
	s.VideoTarget = make([]int, n)
	for i := range s.VideoTarget {
		s.VideoTarget[i] = int(in.ReadInt32())
	}

	s.WageWeekStart = int(in.ReadInt32())

	if in.AtLeast(VersionArchiveKeepInactiveMedia) {
		s.ArchiveKeepInactiveMedia = int8ToBool(in.ReadInt8())
	}
	if in.AtLeast(VersionCupsMonitor) {
		s.CupsCheckInterval = int(in.ReadInt32())
	} else {
		s.CupsCheckInterval = 60
	}

	readLocalDList(in, s.Discounts, ReadDiscount)
	readLocalDList(in, s.Coupons, ReadCoupon)
	readLocalDList(in, s.CreditCards, ReadCreditCard)
	readLocalDList(in, s.Comps, ReadComp)
	readLocalDList(in, s.Meals, ReadMeal)
}

func writeLocalDList[T Identified](o *persist.OutputDataFile, d *DList[T], write func(*persist.OutputDataFile, T)) {
	local := make([]T, 0, len(d.Items()))
	for _, it := range d.Items() {
		if ScopeOf(it.MediaID()) == ScopeLocal {
			local = append(local, it)
		}
	}
	o.WriteInt32(int32(len(local)))
	for _, it := range local {
		write(o, it)
	}
}

func readLocalDList[T Identified](in *persist.InputDataFile, d *DList[T], read func(*persist.InputDataFile) T) {
	n := int(in.ReadInt32())
	for i := 0; i < n; i++ {
		d.Add(read(in))
	}
}

func loadMediaDat(s *Settings, path string) error {
	return persist.ReadVersioned(path, func(in *persist.InputDataFile) error {
		n := int(in.ReadInt32())
		for i := 0; i < n; i++ {
			s.Discounts.Add(ReadDiscount(in))
		}
		n = int(in.ReadInt32())
		for i := 0; i < n; i++ {
			s.Coupons.Add(ReadCoupon(in))
		}
		n = int(in.ReadInt32())
		for i := 0; i < n; i++ {
			s.CreditCards.Add(ReadCreditCard(in))
		}
		n = int(in.ReadInt32())
		for i := 0; i < n; i++ {
			s.Comps.Add(ReadComp(in))
		}
		n = int(in.ReadInt32())
		for i := 0; i < n; i++ {
			s.Meals.Add(ReadMeal(in))
		}
		return in.Err()
	})
}

func saveMediaDat(s *Settings, path string) error {
	return persist.AtomicWrite(path, CurrentVersion, func(o *persist.OutputDataFile) error {
		writeGlobalDList(o, s.Discounts, WriteDiscount)
		writeGlobalDList(o, s.Coupons, WriteCoupon)
		writeGlobalDList(o, s.CreditCards, WriteCreditCard)
		writeGlobalDList(o, s.Comps, WriteComp)
		writeGlobalDList(o, s.Meals, WriteMeal)
		return o.Err()
	})
}

func writeGlobalDList[T Identified](o *persist.OutputDataFile, d *DList[T], write func(*persist.OutputDataFile, T)) {
	global := make([]T, 0, len(d.Items()))
	for _, it := range d.Items() {
		if ScopeOf(it.MediaID()) == ScopeGlobal {
			global = append(global, it)
		}
	}
	o.WriteInt32(int32(len(global)))
	for _, it := range global {
		write(o, it)
	}
}

// --- INI overlay ------------------------------------------------------------

func overlayINI(s *Settings, p Paths) error {
	if kv, err := persist.LoadKeyValueFile(p.taxINI()); err == nil {
		applyTaxINI(s, kv)
	}
	if kv, err := persist.LoadKeyValueFile(p.feesINI()); err == nil {
		applyFeesINI(s, kv)
	}
	if kv, err := persist.LoadKeyValueFile(p.fastfoodINI()); err == nil {
		applyFastfoodINI(s, kv)
	}
	return nil
}

func applyTaxINI(s *Settings, kv *persist.KeyValueFile) {
	setPercent(kv, "Sales Tax Canada", "GST", &s.Tax.GST)
	setPercent(kv, "Sales Tax Canada", "PST", &s.Tax.PST)
	setPercent(kv, "Sales Tax Canada", "HST", &s.Tax.HST)
	setPercent(kv, "Sales Tax Canada", "QST", &s.Tax.QST)
	setPercent(kv, "Sales Tax Canada", "VAT", &s.Tax.VAT)
	setPercent(kv, "Sales Tax US", "Food", &s.Tax.Food)
	setPercent(kv, "Sales Tax US", "Alcohol", &s.Tax.Alcohol)
	setPercent(kv, "Sales Tax US", "Room", &s.Tax.Room)
	setPercent(kv, "Sales Tax US", "Merchandise", &s.Tax.Merchandise)
}

func applyFeesINI(s *Settings, kv *persist.KeyValueFile) {
	if v, ok := kv.Get("Fees", "CCConnectTimeout"); ok {
		fmt.Sscanf(v, "%d", &s.CCConnectTimeout)
	}
}

func applyFastfoodINI(s *Settings, kv *persist.KeyValueFile) {
	if v, ok := kv.Get("FastFood", "TaxTakeoutFood"); ok {
		s.TaxTakeoutFood = v == "1" || v == "true"
	}
}

func setPercent(kv *persist.KeyValueFile, section, key string, dst *money.Percent) {
	v, ok := kv.Get(section, key)
	if !ok {
		return
	}
	var f float64
	if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
		*dst = money.FltToPercent(f / 100.0)
	}
}

func saveINI(s *Settings, p Paths) error {
	tax := persist.NewKeyValueFile()
	tax.Set("Sales Tax Canada", "GST", pctStr(s.Tax.GST))
	tax.Set("Sales Tax Canada", "PST", pctStr(s.Tax.PST))
	tax.Set("Sales Tax Canada", "HST", pctStr(s.Tax.HST))
	tax.Set("Sales Tax Canada", "QST", pctStr(s.Tax.QST))
	tax.Set("Sales Tax Canada", "VAT", pctStr(s.Tax.VAT))
	tax.Set("Sales Tax US", "Food", pctStr(s.Tax.Food))
	tax.Set("Sales Tax US", "Alcohol", pctStr(s.Tax.Alcohol))
	tax.Set("Sales Tax US", "Room", pctStr(s.Tax.Room))
	tax.Set("Sales Tax US", "Merchandise", pctStr(s.Tax.Merchandise))
	if err := tax.Save(p.taxINI()); err != nil {
		return err
	}

	fees := persist.NewKeyValueFile()
	fees.Set("Fees", "CCConnectTimeout", fmt.Sprintf("%d", s.CCConnectTimeout))
	if err := fees.Save(p.feesINI()); err != nil {
		return err
	}

	fastfood := persist.NewKeyValueFile()
	fastfood.Set("FastFood", "TaxTakeoutFood", boolStr(s.TaxTakeoutFood))
	return fastfood.Save(p.fastfoodINI())
}

func pctStr(p money.Percent) string {
	return fmt.Sprintf("%.4f", money.PercentToFlt(p)*100.0)
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
