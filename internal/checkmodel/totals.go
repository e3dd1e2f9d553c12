package checkmodel

import (
	"github.com/viewtouch/posk/internal/money"
	"github.com/viewtouch/posk/internal/settings"
)

// discountTender reports whether t is one of the "applied against total_cost
// before tax" tender kinds (spec §4.1 figure_totals steps 2-3), as opposed to
// a tender that pays off an already-computed balance.
func discountTender(t TenderType) bool {
	switch t {
	case TenderCoupon, TenderComp, TenderDiscount, TenderEmployeeMeal:
		return true
	default:
		return false
	}
}

// FigureTotals recomputes sub.Totals from its Orders and Payments in the
// fixed order spec §4.1 requires: raw subtotal, per-order and subcheck-level
// discounts, per-bucket tax against the post-discount taxable base (honoring
// the takeout-food exemption), price rounding on the grand total, and
// finally the balance against valid tender payments (spec §4.1: figure_totals).
func FigureTotals(check *Check, sub *SubCheck, s *settings.Settings) {
	var t Totals

	var rawSubtotal money.Money
	var foodBase, alcoholBase, merchBase, roomBase money.Money

	for _, o := range sub.Orders {
		if o.Status.Has(OrderVoided) {
			continue
		}
		line := o.LineSubtotal()
		rawSubtotal = rawSubtotal.Add(line)

		switch o.TaxCategory {
		case TaxCategoryAlcohol:
			alcoholBase = alcoholBase.Add(line)
		case TaxCategoryMerchandise:
			merchBase = merchBase.Add(line)
		case TaxCategoryRoom:
			roomBase = roomBase.Add(line)
		default:
			foodBase = foodBase.Add(line)
		}
	}
	t.Subtotal = rawSubtotal

	// Steps 2-3: per-order comps/discounts/coupons and subcheck-level
	// discounts are all recorded as discount-tender Payments with a
	// negative Value; net them together against the raw subtotal.
	var discountTotal money.Money
	for _, p := range sub.Payments {
		if p.Valid && discountTender(p.TenderType) {
			discountTotal = discountTotal.Add(p.Value)
		}
	}

	taxableTotal := rawSubtotal.Add(discountTotal)
	if taxableTotal < 0 {
		taxableTotal = 0
	}

	// Allocate the discount proportionally across the tax-category bases
	// so that a subcheck-level discount reduces each bucket's taxable
	// amount in proportion to its share of the raw subtotal.
	foodBase, alcoholBase, merchBase, roomBase = prorate(
		rawSubtotal, taxableTotal, foodBase, alcoholBase, merchBase, roomBase)

	var isTakeout bool
	s.RLocked(func(settings *settings.Settings) {
		isTakeout = check.CustomerType.IsTakeoutClass() && !settings.TaxTakeoutFood
	})
	if isTakeout {
		foodBase = 0
	}

	var rates settings.TaxTable
	s.RLocked(func(settings *settings.Settings) { rates = settings.Tax })

	t.TaxFood = money.RoundHalfAwayFromZero(foodBase, rates.Food)
	t.TaxAlcohol = money.RoundHalfAwayFromZero(alcoholBase, rates.Alcohol)
	t.MerchandiseTax = money.RoundHalfAwayFromZero(merchBase, rates.Merchandise)
	t.RoomTax = money.RoundHalfAwayFromZero(roomBase, rates.Room)

	generalBase := foodBase.Add(alcoholBase).Add(merchBase).Add(roomBase)
	t.TaxGST = money.RoundHalfAwayFromZero(generalBase, rates.GST)
	t.TaxPST = money.RoundHalfAwayFromZero(generalBase, rates.PST)
	t.TaxHST = money.RoundHalfAwayFromZero(generalBase, rates.HST)
	t.TaxQST = money.RoundHalfAwayFromZero(generalBase, rates.QST)
	t.TaxVAT = money.RoundHalfAwayFromZero(generalBase, rates.VAT)

	totalTax := t.TaxFood.Add(t.TaxAlcohol).Add(t.MerchandiseTax).Add(t.RoomTax).
		Add(t.TaxGST).Add(t.TaxPST).Add(t.TaxHST).Add(t.TaxQST).Add(t.TaxVAT)

	var taxInclusive bool
	s.RLocked(func(settings *settings.Settings) { taxInclusive = settings.TaxInclusive })

	grand := taxableTotal.Add(totalTax)
	if taxInclusive {
		// Tax is already embedded in the menu price: back it out of the
		// taxable base rather than adding it on top.
		grand = taxableTotal
	}
	// Every input above is already whole cents, so the grand total is used
	// as is. The per-bucket tax amounts above always round half away from
	// zero; PriceRounding is not consulted.
	t.TotalCost = grand

	var tipTotal, tenderTotal money.Money
	for _, p := range sub.Payments {
		if !p.Valid {
			continue
		}
		if p.TenderType == TenderTip || p.TenderType == TenderChargedTip || p.TenderType == TenderPaidTip {
			tipTotal = tipTotal.Add(p.Value)
			continue
		}
		if !discountTender(p.TenderType) {
			tenderTotal = tenderTotal.Add(p.Value)
		}
	}
	t.TotalTip = tipTotal
	t.Balance = t.TotalCost.Sub(tenderTotal)

	sub.Totals = t
}

// prorate scales each category base by taxable/raw so a discount applied to
// the whole subtotal reduces every tax bucket proportionally. When raw is
// zero (nothing ordered) or no discount applies (raw == taxable) the bases
// pass through unchanged; a full discount scales every base to zero.
func prorate(raw, taxable, food, alcohol, merch, room money.Money) (money.Money, money.Money, money.Money, money.Money) {
	if raw == 0 || raw == taxable {
		return food, alcohol, merch, room
	}
	scale := func(base money.Money) money.Money {
		return money.Money(int64(base) * int64(taxable) / int64(raw))
	}
	return scale(food), scale(alcohol), scale(merch), scale(room)
}
