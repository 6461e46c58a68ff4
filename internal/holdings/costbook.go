package holdings

import (
	"github.com/shopspring/decimal"
)

// CostBook tracks one security position under the average-cost method: all
// units share a single blended purchase price instead of per-lot FIFO/LIFO
// tracking. This is a deliberate simplification; realized lot accounting is
// out of scope.
type CostBook struct {
	Quantity  decimal.Decimal
	AvgPrice  decimal.Decimal
	BookValue decimal.Decimal
}

// ApplyBuy adds qty units purchased at price to the book.
func (b *CostBook) ApplyBuy(qty, price decimal.Decimal) {
	b.BookValue = b.BookValue.Add(qty.Mul(price))
	b.Quantity = b.Quantity.Add(qty)
	b.recalc()
}

// ApplySell removes qty units from the book, scaling the book value down
// proportionally so the average cost of the remaining units is preserved.
// Selling more than is held clamps the position to zero rather than going
// negative.
func (b *CostBook) ApplySell(qty decimal.Decimal) {
	remaining := b.Quantity.Sub(qty)
	if remaining.IsPositive() {
		b.BookValue = b.BookValue.Mul(remaining).Div(remaining.Add(qty))
		b.Quantity = remaining
	} else {
		b.Quantity = decimal.Zero
		b.BookValue = decimal.Zero
	}
	b.recalc()
}

// UnwindBuy reverses a previously applied buy of qty units at price.
func (b *CostBook) UnwindBuy(qty, price decimal.Decimal) {
	b.Quantity = decimal.Max(decimal.Zero, b.Quantity.Sub(qty))
	b.BookValue = decimal.Max(decimal.Zero, b.BookValue.Sub(qty.Mul(price)))
	if b.Quantity.IsZero() {
		b.BookValue = decimal.Zero
	}
	b.recalc()
}

// UnwindSell reverses a previously applied sell of qty units. When the sell
// had fully liquidated the position the original book value is gone and is
// rebuilt from the sell's own price; that approximation is the documented
// cost of seeding historical replay from current holdings.
func (b *CostBook) UnwindSell(qty, price decimal.Decimal) {
	restored := b.Quantity.Add(qty)
	if b.Quantity.IsPositive() {
		b.BookValue = b.BookValue.Mul(restored).Div(b.Quantity)
	} else {
		b.BookValue = qty.Mul(price)
	}
	b.Quantity = restored
	b.recalc()
}

func (b *CostBook) recalc() {
	if b.Quantity.IsPositive() {
		b.AvgPrice = b.BookValue.Div(b.Quantity)
	} else {
		b.AvgPrice = decimal.Zero
	}
}
