package settings

import (
	"time"

	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/persist"
	"github.com/viewtouch/posk/internal/timeinfo"
)

// Scope distinguishes a media row local to this store from one shared
// globally across stores (spec §3).
type Scope int

const (
	ScopeLocal Scope = iota
	ScopeGlobal
)

// ScopeOf classifies an id per the GlobalMediaID threshold.
func ScopeOf(id int) Scope {
	if id >= GlobalMediaID {
		return ScopeGlobal
	}
	return ScopeLocal
}

// Identified is implemented by every media catalogue row; DList uses it for
// id-uniqueness checks and MediaFirstID.
type Identified interface {
	MediaID() int
	SetMediaID(int)
	IsActive() bool
}

// DList is an owned, ordered list of media catalogue rows, replacing the
// source's intrusive linked list (spec §9: "owned vectors + indices").
type DList[T Identified] struct {
	items []T
}

// NewDList returns an empty DList.
func NewDList[T Identified]() *DList[T] {
	return &DList[T]{}
}

// Items returns the ordered list of rows. Callers must not mutate the
// backing array's length out from under the DList; use Add/Remove.
func (d *DList[T]) Items() []T { return d.items }

// Add appends item, reassigning its id if it collides with an existing
// row's id in the same scope (spec §3: "duplicates detected on load are
// reassigned").
func (d *DList[T]) Add(item T) {
	if d.idInUse(item.MediaID()) {
		item.SetMediaID(MediaFirstID(d.ids(), item.MediaID()))
	}
	d.items = append(d.items, item)
}

// Remove deletes the row with the given id, if present.
func (d *DList[T]) Remove(id int) bool {
	for i, it := range d.items {
		if it.MediaID() == id {
			d.items = append(d.items[:i], d.items[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the row with the given id, or the zero value and false.
func (d *DList[T]) Find(id int) (T, bool) {
	for _, it := range d.items {
		if it.MediaID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (d *DList[T]) idInUse(id int) bool {
	for _, it := range d.items {
		if it.MediaID() == id {
			return true
		}
	}
	return false
}

func (d *DList[T]) ids() []int {
	ids := make([]int, 0, len(d.items))
	for _, it := range d.items {
		ids = append(ids, it.MediaID())
	}
	return ids
}

// ActiveOrdered returns the rows in their stored order; with pruneInactive
// set, inactive rows are left out. The archive package does not call it.
func (d *DList[T]) ActiveOrdered(pruneInactive bool) []T {
	if !pruneInactive {
		out := make([]T, len(d.items))
		copy(out, d.items)
		return out
	}
	out := make([]T, 0, len(d.items))
	for _, it := range d.items {
		if it.IsActive() {
			out = append(out, it)
		}
	}
	return out
}

// MediaFirstID returns the smallest integer >= base not present in ids
// (spec §8 boundary behaviour).
func MediaFirstID(ids []int, base int) int {
	used := make(map[int]bool, len(ids))
	for _, id := range ids {
		used[id] = true
	}
	for candidate := base; ; candidate++ {
		if !used[candidate] {
			return candidate
		}
	}
}

// --- Media row types -------------------------------------------------------

// DiscountInfo is a per-order or per-subcheck discount rule.
type DiscountInfo struct {
	ID       int
	Scope    Scope
	Active   bool
	Name     string
	Percent  money.Percent
	Amount   money.Money
	ByAmount bool // true: flat Amount; false: Percent of the taxable base
}

func (d *DiscountInfo) MediaID() int      { return d.ID }
func (d *DiscountInfo) SetMediaID(id int) { d.ID = id }
func (d *DiscountInfo) IsActive() bool    { return d.Active }

// CouponInfo is a time-bounded coupon rule. AppliesTime resolves the Open
// Question in spec §9 by treating EndTime as exclusive (see SPEC_FULL.md).
type CouponInfo struct {
	ID        int
	Scope     Scope
	Active    bool
	Name      string
	Amount    money.Money
	StartTime timeinfo.TimeInfo
	EndTime   timeinfo.TimeInfo
}

func (c *CouponInfo) MediaID() int      { return c.ID }
func (c *CouponInfo) SetMediaID(id int) { c.ID = id }
func (c *CouponInfo) IsActive() bool    { return c.Active }

// AppliesTime reports whether t falls within [StartTime, EndTime) at
// minute resolution.
func (c *CouponInfo) AppliesTime(t timeinfo.TimeInfo) bool {
	tm := t.Floor(timeinfo.UnitMinute)
	start := c.StartTime.Floor(timeinfo.UnitMinute)
	end := c.EndTime.Floor(timeinfo.UnitMinute)
	return !tm.Before(start) && tm.Before(end)
}

// CreditCardInfo describes one accepted card type.
type CreditCardInfo struct {
	ID       int
	Scope    Scope
	Active   bool
	Name     string
	CardType int
}

func (c *CreditCardInfo) MediaID() int      { return c.ID }
func (c *CreditCardInfo) SetMediaID(id int) { c.ID = id }
func (c *CreditCardInfo) IsActive() bool    { return c.Active }

// CompInfo is a complimentary-item rule (manager comp).
type CompInfo struct {
	ID             int
	Scope          Scope
	Active         bool
	Name           string
	RequireManager bool
}

func (c *CompInfo) MediaID() int      { return c.ID }
func (c *CompInfo) SetMediaID(id int) { c.ID = id }
func (c *CompInfo) IsActive() bool    { return c.Active }

// MealInfo is an employee-meal rule.
type MealInfo struct {
	ID         int
	Scope      Scope
	Active     bool
	Name       string
	MaxPerShift int
}

func (m *MealInfo) MediaID() int      { return m.ID }
func (m *MealInfo) SetMediaID(id int) { m.ID = id }
func (m *MealInfo) IsActive() bool    { return m.Active }

// WriteDiscount/ReadDiscount etc. implement versioned per-row persistence,
// appended to media.dat by the Settings Save/Load pipeline (io.go). Each
// follows the same shape: fixed fields first, version-gated fields last.

func WriteDiscount(o *persist.OutputDataFile, d *DiscountInfo) {
	o.WriteInt32(int32(d.ID))
	o.WriteInt8(boolToInt8(d.Active))
	o.WriteStr(d.Name)
	o.WriteInt64(int64(d.Percent))
	o.WriteInt64(int64(d.Amount))
	o.WriteInt8(boolToInt8(d.ByAmount))
}

func ReadDiscount(in *persist.InputDataFile) *DiscountInfo {
	d := &DiscountInfo{}
	d.ID = int(in.ReadInt32())
	d.Scope = ScopeOf(d.ID)
	d.Active = int8ToBool(in.ReadInt8())
	d.Name = in.ReadStr()
	d.Percent = money.Percent(in.ReadInt64())
	d.Amount = money.Money(in.ReadInt64())
	d.ByAmount = int8ToBool(in.ReadInt8())
	return d
}

func WriteCoupon(o *persist.OutputDataFile, c *CouponInfo) {
	o.WriteInt32(int32(c.ID))
	o.WriteInt8(boolToInt8(c.Active))
	o.WriteStr(c.Name)
	o.WriteInt64(int64(c.Amount))
	o.WriteInt64(c.StartTime.Time().Unix())
	o.WriteInt64(c.EndTime.Time().Unix())
}

func ReadCoupon(in *persist.InputDataFile) *CouponInfo {
	c := &CouponInfo{}
	c.ID = int(in.ReadInt32())
	c.Scope = ScopeOf(c.ID)
	c.Active = int8ToBool(in.ReadInt8())
	c.Name = in.ReadStr()
	c.Amount = money.Money(in.ReadInt64())
	c.StartTime = timeinfo.New(unixTime(in.ReadInt64()))
	c.EndTime = timeinfo.New(unixTime(in.ReadInt64()))
	return c
}

func WriteCreditCard(o *persist.OutputDataFile, c *CreditCardInfo) {
	o.WriteInt32(int32(c.ID))
	o.WriteInt8(boolToInt8(c.Active))
	o.WriteStr(c.Name)
	o.WriteInt32(int32(c.CardType))
}

func ReadCreditCard(in *persist.InputDataFile) *CreditCardInfo {
	c := &CreditCardInfo{}
	c.ID = int(in.ReadInt32())
	c.Scope = ScopeOf(c.ID)
	c.Active = int8ToBool(in.ReadInt8())
	c.Name = in.ReadStr()
	c.CardType = int(in.ReadInt32())
	return c
}

func WriteComp(o *persist.OutputDataFile, c *CompInfo) {
	o.WriteInt32(int32(c.ID))
	o.WriteInt8(boolToInt8(c.Active))
	o.WriteStr(c.Name)
	o.WriteInt8(boolToInt8(c.RequireManager))
}

func ReadComp(in *persist.InputDataFile) *CompInfo {
	c := &CompInfo{}
	c.ID = int(in.ReadInt32())
	c.Scope = ScopeOf(c.ID)
	c.Active = int8ToBool(in.ReadInt8())
	c.Name = in.ReadStr()
	c.RequireManager = int8ToBool(in.ReadInt8())
	return c
}

func WriteMeal(o *persist.OutputDataFile, m *MealInfo) {
	o.WriteInt32(int32(m.ID))
	o.WriteInt8(boolToInt8(m.Active))
	o.WriteStr(m.Name)
	o.WriteInt32(int32(m.MaxPerShift))
}

func ReadMeal(in *persist.InputDataFile) *MealInfo {
	m := &MealInfo{}
	m.ID = int(in.ReadInt32())
	m.Scope = ScopeOf(m.ID)
	m.Active = int8ToBool(in.ReadInt8())
	m.Name = in.ReadStr()
	m.MaxPerShift = int(in.ReadInt32())
	return m
}

func boolToInt8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

func int8ToBool(v int8) bool { return v != 0 }

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
