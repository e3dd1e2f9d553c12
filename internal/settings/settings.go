// Package settings implements the process-wide configuration singleton:
// tax tables, terminal/printer inventories, period definitions, and the
// media catalogues (discounts, coupons, comps, credit cards, employee
// meals). It is hot-reloaded from a binary .dat file with a .ini overlay
// on top (spec §3, §6).
package settings

import (
	"sync"

	"github.com/viewtouch/posk/internal/money"
)

// CurrentVersion is the on-disk settings.dat format version this build
// writes. Readers of older files must supply sensible defaults for fields
// added after the version that introduced them (spec §6).
const CurrentVersion int32 = 106

// Version gates for fields added after the base format. Named so Load's
// version checks read as intent, not magic numbers.
const (
	// VersionDoubleMultFlt is when double_mult switched from int to Flt.
	VersionDoubleMultFlt int32 = 104
	// VersionArchiveKeepInactiveMedia introduced the alt-media snapshot
	// pruning toggle used by archive creation.
	VersionArchiveKeepInactiveMedia int32 = 105
	// VersionCupsMonitor introduced the CUPS health-monitor intervals.
	VersionCupsMonitor int32 = 106
)

// GlobalMediaID is the threshold above which a media row's id is
// considered global (shared across stores) rather than local to this
// store. Local ids are always < GlobalMediaID.
const GlobalMediaID = 10000

// CustomerType enumerates spec §3's customer_type values.
type CustomerType int

const (
	CustomerDineIn CustomerType = iota
	CustomerTakeout
	CustomerFastFood
	CustomerCallIn
	CustomerToGo
	CustomerSelfOrder
	CustomerTraining
)

// IsTakeoutClass reports whether ct is one of the takeout-like customer
// types that the takeout-food tax exemption (spec §4.1 figure_totals)
// applies to.
func (ct CustomerType) IsTakeoutClass() bool {
	switch ct {
	case CustomerTakeout, CustomerFastFood, CustomerCallIn, CustomerToGo, CustomerSelfOrder:
		return true
	default:
		return false
	}
}

// PasswordMode controls when Terminal login requires a password.
type PasswordMode int

const (
	PasswordModeNever PasswordMode = iota
	PasswordModeManagersOnly
	PasswordModeAlways
)

// TaxTable holds every tax bucket's rate, each a Percent (spec §3).
type TaxTable struct {
	Food        money.Percent
	Alcohol     money.Percent
	Room        money.Percent
	Merchandise money.Percent
	GST         money.Percent
	PST         money.Percent
	HST         money.Percent
	QST         money.Percent
	VAT         money.Percent
}

// Settings is the process-wide configuration singleton. Mutated only from
// the main loop (spec §5); readers elsewhere must go through RLocked (and
// writers through Locked).
type Settings struct {
	mu sync.RWMutex

	StoreName string

	Tax           TaxTable
	TaxTakeoutFood bool
	TaxInclusive   bool
	PriceRounding  money.RoundingMode

	// DoubleMult scales a printed double-size character; stored as an int
	// before VersionDoubleMultFlt and as a float64 (Flt) from that version
	// on. We always keep the float64 representation in memory.
	DoubleMult float64

	AutoSaveInterval  int // seconds
	CupsCheckInterval int // seconds
	SystemCallTimeout int // seconds
	ScreenBlankTime   int // seconds
	StartPageTimeout  int // seconds

	PasswordMode    PasswordMode
	UseEntireCCNum  bool
	AllowCCPreauth  bool
	AutoAuthorize   bool
	AutoCompleteCC  bool
	CCConnectTimeout int // seconds

	FinalAuthReceipt bool
	VoidReceipt      bool
	CashReceipt      bool

	// FamilyPrinter and VideoTarget are parallel arrays keyed by item
	// family, enforced equal-length by the unified target editor (spec
	// §4.5). Index 0 is unused (family ids are 1-based in the original).
	FamilyPrinter []int
	VideoTarget   []int

	WageWeekStart int // minutes since Sunday midnight

	ArchiveKeepInactiveMedia bool

	Discounts    *DList[*DiscountInfo]
	Coupons      *DList[*CouponInfo]
	CreditCards  *DList[*CreditCardInfo]
	Comps        *DList[*CompInfo]
	Meals        *DList[*MealInfo]
}

// New returns a Settings populated with the defaults a fresh install would
// have before any settings.dat/.ini is found.
func New() *Settings {
	return &Settings{
		StoreName: "",
		Tax: TaxTable{
			Food: money.FltToPercent(0),
		},
		PriceRounding:     money.RoundNearest,
		DoubleMult:        2.0,
		AutoSaveInterval:  30,
		CupsCheckInterval: 60,
		SystemCallTimeout: 5,
		ScreenBlankTime:   600,
		StartPageTimeout:  120,
		PasswordMode:      PasswordModeManagersOnly,
		CCConnectTimeout:  30,
		FamilyPrinter:     make([]int, 1),
		VideoTarget:       make([]int, 1),
		WageWeekStart:     0,
		Discounts:         NewDList[*DiscountInfo](),
		Coupons:           NewDList[*CouponInfo](),
		CreditCards:       NewDList[*CreditCardInfo](),
		Comps:             NewDList[*CompInfo](),
		Meals:             NewDList[*MealInfo](),
	}
}

// RLocked runs fn with the settings read-locked, for the "readers from
// other tasks take a read lock" rule in spec §5.
func (s *Settings) RLocked(fn func(*Settings)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s)
}

// Locked runs fn with the settings write-locked; only the main loop
// (settings editor) should call this.
func (s *Settings) Locked(fn func(*Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}
