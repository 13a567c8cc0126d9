package model

import "github.com/shopspring/decimal"

// CalcTotals は明細から注文合計を再計算する。
// tax = subtotal × rate をセント単位に切り捨て（truncate）。
// truncate(subtotal × (1+rate)) == subtotal + tax が常に成り立つ。
func CalcTotals(lines []OrderLine, taxRate decimal.Decimal) (subtotal, tax, total int64) {
	for _, l := range lines {
		subtotal += l.SubtotalCents()
	}

	tax = decimal.NewFromInt(subtotal).Mul(taxRate).Truncate(0).IntPart()
	total = subtotal + tax
	return subtotal, tax, total
}

// Cents はセントint64を2桁小数のdecimalへ（3785 → 37.85）。
func Cents(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}
