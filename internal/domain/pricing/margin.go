package pricing

import (
	"github.com/shopspring/decimal"
)

// Margin holds the platform's derived commercials for one order. Both values
// are derived from the buyer and supplier prices and never independently
// authored; callers persist them atomically with the price change that
// triggered the recomputation.
type Margin struct {
	Amount     decimal.Decimal // buyer price minus supplier price
	Percentage decimal.Decimal // Amount / buyer price * 100
}

// Undefined returns the zero margin used while no supplier price is set.
func Undefined() Margin {
	return Margin{Amount: decimal.Zero, Percentage: decimal.Zero}
}

// Recompute derives the margin from the buyer and supplier prices.
// Returns the undefined margin when supplierPrice is nil. Both results are
// rounded to 2 decimal places with banker's rounding. Negative margins are
// legal and meaningful: they signal a loss-making assignment that must be
// surfaced, not hidden.
func Recompute(buyerPrice decimal.Decimal, supplierPrice *decimal.Decimal) Margin {
	if supplierPrice == nil {
		return Undefined()
	}

	amount := buyerPrice.Sub(*supplierPrice).RoundBank(2)

	percentage := decimal.Zero
	if !buyerPrice.IsZero() {
		percentage = amount.Div(buyerPrice).Mul(decimal.NewFromInt(100)).RoundBank(2)
	}

	return Margin{Amount: amount, Percentage: percentage}
}

// QuoteEstimate is the output of the external AI pricing service, consumed
// once at quote time. The heuristic itself is not part of this service.
type QuoteEstimate struct {
	TotalPrice            decimal.Decimal
	EstimatedDeliveryDays int
}
