package checkmodel

import (
	"fmt"
	"math"

	"github.com/viewtouch/posk/internal/serial"
	"github.com/viewtouch/posk/internal/timeinfo"
)

// CheckList owns the live set of open Checks, replacing the source's
// intrusive linked list with an owning container keyed by stable ids
// (spec §9: "owned vectors + indices").
type CheckList struct {
	byID map[serial.Number]*Check
	ids  []serial.Number // insertion order, for stable iteration
}

// NewCheckList returns an empty CheckList.
func NewCheckList() *CheckList {
	return &CheckList{byID: map[serial.Number]*Check{}}
}

// Len reports how many checks are live.
func (l *CheckList) Len() int { return len(l.ids) }

// Find returns the Check with the given serial number, if still live.
func (l *CheckList) Find(serialNumber serial.Number) (*Check, bool) {
	c, ok := l.byID[serialNumber]
	return c, ok
}

// All returns the live checks in insertion order. Callers must not mutate
// the returned slice's backing array.
func (l *CheckList) All() []*Check {
	out := make([]*Check, 0, len(l.ids))
	for _, id := range l.ids {
		out = append(out, l.byID[id])
	}
	return out
}

func (l *CheckList) insert(c *Check) {
	l.byID[c.SerialNumber] = c
	l.ids = append(l.ids, c.SerialNumber)
}

// Remove takes a Check out of the live list (used when it migrates into an
// Archive at EndDay, spec §3 Check lifecycle).
func (l *CheckList) Remove(serialNumber serial.Number) {
	if _, ok := l.byID[serialNumber]; !ok {
		return
	}
	delete(l.byID, serialNumber)
	for i, id := range l.ids {
		if id == serialNumber {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			break
		}
	}
}

// NewCheck assigns a fresh serial number, inserts the Check into list, and
// creates one empty SubCheck (spec §4.1: new_check).
func NewCheck(list *CheckList, alloc *serial.Allocator, kind CustomerType, label string, guests int) (*Check, error) {
	n, err := alloc.Next()
	if err != nil {
		return nil, err
	}

	c := &Check{
		SerialNumber: n,
		Filename:     fmt.Sprintf("check_%d.dat", n),
		Label:        label,
		CustomerType: kind,
		Guests:       guests,
		TimeOpen:     timeinfo.Now(),
		CurrentSub:   0,
		Dirty:        true,
	}
	c.SubChecks = append(c.SubChecks, &SubCheck{Number: 1, Status: SubCheckOpen})
	list.insert(c)
	return c, nil
}

// AddOrder appends order to sub's order list, linking it to the current
// parent order if it is a modifier (spec §4.1: add_order).
func AddOrder(check *Check, sub *SubCheck, order *Order) error {
	if sub.Status != SubCheckOpen {
		return fmt.Errorf("%w: add_order on %s subcheck", ErrWrongState, sub.Status)
	}
	if order.OrderID == 0 {
		order.OrderID = check.NextOrderID()
	}
	if order.ItemType == ItemModifier && order.ParentID == 0 {
		if len(sub.Orders) == 0 {
			return fmt.Errorf("%w: modifier with no parent order", ErrWrongState)
		}
		order.ParentID = lastNonModifier(sub.Orders).OrderID
	}
	sub.Orders = append(sub.Orders, order)
	sub.touch()
	check.Dirty = true
	return nil
}

func lastNonModifier(orders []*Order) *Order {
	for i := len(orders) - 1; i >= 0; i-- {
		if !orders[i].IsModifier() {
			return orders[i]
		}
	}
	return orders[len(orders)-1]
}

// childrenOf returns the modifier Orders attached to parent, in order.
func childrenOf(orders []*Order, parentID int64) []*Order {
	var kids []*Order
	for _, o := range orders {
		if o.ParentID == parentID {
			kids = append(kids, o)
		}
	}
	return kids
}

// RemoveOne detaches a single whole Order (and its modifier children) from
// sub, returning it so the caller can re-add it elsewhere, preserving
// identity (spec §4.1: remove_one).
func RemoveOne(check *Check, sub *SubCheck, order *Order) (*Order, error) {
	idx := indexOf(sub.Orders, order)
	if idx < 0 {
		return nil, ErrNotFound
	}
	removeIDs := map[int64]bool{order.OrderID: true}
	for _, k := range childrenOf(sub.Orders, order.OrderID) {
		removeIDs[k.OrderID] = true
	}

	sub.Orders = filterOut(sub.Orders, removeIDs)
	sub.touch()
	check.Dirty = true
	return order, nil
}

// RemoveCount detaches n units from a counted Order, splitting it: the
// returned Order carries count n, the remainder (and any modifier children)
// stays on sub with the reduced count (spec §4.1: remove_count). For a
// weighted item the returned Order takes weight*n/count, truncated to 0.01,
// and the source keeps the rest of the weight.
func RemoveCount(check *Check, sub *SubCheck, order *Order, n int) (*Order, error) {
	idx := indexOf(sub.Orders, order)
	if idx < 0 {
		return nil, ErrNotFound
	}
	if n <= 0 || n > order.Count {
		return nil, fmt.Errorf("%w: remove_count out of range", ErrWrongState)
	}

	if n == order.Count {
		return RemoveOne(check, sub, order)
	}

	detached := *order
	detached.OrderID = check.NextOrderID()
	detached.Count = n
	if order.ItemType == ItemWeighted {
		moved := math.Trunc(order.Weight*float64(n)/float64(order.Count)*100) / 100
		detached.Weight = moved
		order.Weight -= moved
	}
	order.Count -= n

	sub.touch()
	check.Dirty = true
	return &detached, nil
}

func indexOf(orders []*Order, order *Order) int {
	for i, o := range orders {
		if o == order || o.OrderID == order.OrderID {
			return i
		}
	}
	return -1
}

func filterOut(orders []*Order, ids map[int64]bool) []*Order {
	out := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if !ids[o.OrderID] {
			out = append(out, o)
		}
	}
	return out
}

// SplitBySeat partitions every Order on the (implicitly single, currently
// open) SubCheck into per-seat SubChecks, keeping modifiers with their
// parent (spec §4.1: split_by_seat). It operates on the Check's currently
// open SubChecks taken together; idempotent; fails with ErrNothingToSplit
// if only one seat is present.
func SplitBySeat(check *Check) error {
	seats := map[int][]*Order{}
	var order []int

	for _, sub := range check.SubChecks {
		if sub.Status != SubCheckOpen {
			continue
		}
		for _, o := range sub.Orders {
			seat := o.Seat
			if o.IsModifier() {
				seat = seatOfParent(sub.Orders, o)
			}
			if _, ok := seats[seat]; !ok {
				order = append(order, seat)
			}
			seats[seat] = append(seats[seat], o)
		}
	}

	if len(order) <= 1 {
		return ErrNothingToSplit
	}

	var kept []*SubCheck
	for _, sub := range check.SubChecks {
		if sub.Status == SubCheckOpen {
			continue
		}
		kept = append(kept, sub)
	}

	number := 1
	for _, seat := range order {
		kept = append(kept, &SubCheck{
			Number: number,
			Status: SubCheckOpen,
			Orders: seats[seat],
		})
		number++
	}
	check.SubChecks = kept
	check.CurrentSub = 0
	check.Dirty = true
	return nil
}

func seatOfParent(orders []*Order, modifier *Order) int {
	for _, o := range orders {
		if o.OrderID == modifier.ParentID {
			return o.Seat
		}
	}
	return modifier.Seat
}

// MergeOpen concatenates all open SubChecks into the lowest-numbered one,
// preserving each SubCheck's Order insertion order, and deletes the
// emptied SubChecks (spec §4.1: merge_open).
func MergeOpen(check *Check) error {
	var openIdx []int
	for i, sub := range check.SubChecks {
		if sub.Status == SubCheckOpen {
			openIdx = append(openIdx, i)
		}
	}
	if len(openIdx) <= 1 {
		return nil
	}

	lowestIdx := openIdx[0]
	for _, i := range openIdx[1:] {
		if check.SubChecks[i].Number < check.SubChecks[lowestIdx].Number {
			lowestIdx = i
		}
	}
	lowest := check.SubChecks[lowestIdx]

	var others []int
	for _, i := range openIdx {
		if i != lowestIdx {
			others = append(others, i)
		}
	}
	for _, i := range others {
		lowest.Orders = append(lowest.Orders, check.SubChecks[i].Orders...)
	}
	lowest.touch()

	var kept []*SubCheck
	removeSet := map[int]bool{}
	for _, i := range others {
		removeSet[check.SubChecks[i].Number] = true
	}
	for _, sub := range check.SubChecks {
		if removeSet[sub.Number] {
			continue
		}
		kept = append(kept, sub)
	}
	check.SubChecks = kept
	check.Dirty = true
	return nil
}

// MoveOrdersBySeat moves every Order whose Seat == seat from src to dst,
// carrying modifiers with their parent (spec §4.1: move_orders_by_seat).
func MoveOrdersBySeat(src, dst *SubCheck, seat int) {
	var moving, staying []*Order
	movingIDs := map[int64]bool{}

	for _, o := range src.Orders {
		if !o.IsModifier() && o.Seat == seat {
			moving = append(moving, o)
			movingIDs[o.OrderID] = true
		}
	}
	for _, o := range src.Orders {
		if o.IsModifier() && movingIDs[o.ParentID] {
			moving = append(moving, o)
			continue
		}
		if movingIDs[o.OrderID] {
			continue
		}
		staying = append(staying, o)
	}

	src.Orders = staying
	dst.Orders = append(dst.Orders, moving...)
	src.touch()
	dst.touch()
}

// Settle transitions an open SubCheck with a zero balance to closed (spec
// §4.1: settle). notifyKitchen is invoked once per Order not yet marked
// OrderSent, so callers can forward an "order-sent" event to subscribed
// kitchen-video terminals.
func Settle(sub *SubCheck, notifyKitchen func(*Order)) error {
	if sub.Status != SubCheckOpen {
		return fmt.Errorf("%w: settle on %s subcheck", ErrWrongState, sub.Status)
	}
	if sub.Totals.Balance != 0 {
		return fmt.Errorf("%w: settle with nonzero balance", ErrWrongState)
	}

	for _, o := range sub.Orders {
		if !o.Status.Has(OrderSent) {
			if notifyKitchen != nil {
				notifyKitchen(o)
			}
			o.Status |= OrderSent
		}
	}

	sub.Status = SubCheckClosed
	sub.TimeClosed = timeinfo.Now()
	sub.touch()
	return nil
}

// Void transitions sub to voided. Voiding an already-closed SubCheck
// requires isManager (spec §4.1 state machine).
func Void(sub *SubCheck, isManager bool) error {
	if sub.Status == SubCheckClosed && !isManager {
		return fmt.Errorf("%w: void closed subcheck requires manager", ErrPermission)
	}
	sub.Status = SubCheckVoided
	sub.touch()
	return nil
}
