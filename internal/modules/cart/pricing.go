package cart

import (
	"sort"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	cent    = decimal.New(1, -2)
)

func round2(v decimal.Decimal) decimal.Decimal { return v.Round(2) }

// Gross is quantity × unit price.
func Gross(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	return round2(unitPrice.Mul(decimal.NewFromInt(int64(qty))))
}

// PercentOf returns pct% of base.
func PercentOf(base, pct decimal.Decimal) decimal.Decimal {
	return round2(base.Mul(pct).Div(hundred))
}

// PercentFor returns which percentage of base part is. Zero base yields zero.
func PercentFor(base, part decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return round2(part.Mul(hundred).Div(base))
}

// Subtotal sums the line totals.
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Total)
	}
	return sum
}

// Total is subtotal minus the overall discount.
func Total(subtotal, overallDiscount decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(overallDiscount)
}

// Change is what is handed back for cash payments; any other method gets zero.
func Change(method PaymentMethod, tendered, total decimal.Decimal) decimal.Decimal {
	if method != PaymentCash || tendered.LessThan(total) {
		return decimal.Zero
	}
	return tendered.Sub(total)
}

// recompute applies the line invariants: the discount kind the operator chose is
// the source of truth, the other representation is derived, and the amount never
// exceeds the gross value.
func recompute(it *Item) {
	gross := Gross(it.Quantity, it.UnitPrice)
	switch it.DiscountKind {
	case DiscountPercentage:
		it.DiscountAmount = PercentOf(gross, it.DiscountPercent)
	case DiscountAmount:
		if it.DiscountAmount.GreaterThan(gross) {
			it.DiscountAmount = gross
		}
		it.DiscountPercent = PercentFor(gross, it.DiscountAmount)
	default:
		it.DiscountAmount = decimal.Zero
		it.DiscountPercent = decimal.Zero
	}
	it.Total = gross.Sub(it.DiscountAmount)
}

// apportion splits target over the lines in proportion to their totals using
// the largest remainder method: every share is truncated to cents and the
// leftover cents go one at a time to the lines with the largest dropped
// fraction. A share never exceeds its line's total. target must not exceed
// subtotal.
func apportion(target, subtotal decimal.Decimal, items []*Item) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(items))
	fractions := make([]decimal.Decimal, len(items))
	leftover := target
	for i, it := range items {
		exact := target.Mul(it.Total).Div(subtotal)
		shares[i] = exact.Truncate(2)
		fractions[i] = exact.Sub(shares[i])
		leftover = leftover.Sub(shares[i])
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fractions[order[a]].GreaterThan(fractions[order[b]])
	})

	for leftover.IsPositive() {
		progressed := false
		for _, i := range order {
			if !leftover.IsPositive() {
				break
			}
			if shares[i].Add(cent).GreaterThan(items[i].Total) {
				continue
			}
			shares[i] = shares[i].Add(cent)
			leftover = leftover.Sub(cent)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return shares
}
