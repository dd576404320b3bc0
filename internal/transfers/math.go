package transfers

import "github.com/shopspring/decimal"

// FeeAmountCents computes the platform fee for an order total as
// round(total * feePercent / 100), rounding half away from zero so a
// 2.5-cent fee becomes 3.
func FeeAmountCents(totalCents int, feePercent float64) int {
	if totalCents <= 0 || feePercent <= 0 {
		return 0
	}
	fee := decimal.NewFromInt(int64(totalCents)).
		Mul(decimal.NewFromFloat(feePercent)).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return int(fee.IntPart())
}

// ReversalAmountCents computes the proportional share of a transfer to
// claw back for a partial refund: round(transfer * refunded / total).
func ReversalAmountCents(transferCents, refundedCents, totalCents int) int {
	if transferCents <= 0 || refundedCents <= 0 || totalCents <= 0 {
		return 0
	}
	if refundedCents >= totalCents {
		return transferCents
	}
	amount := decimal.NewFromInt(int64(transferCents)).
		Mul(decimal.NewFromInt(int64(refundedCents))).
		Div(decimal.NewFromInt(int64(totalCents))).
		Round(0)
	return int(amount.IntPart())
}
